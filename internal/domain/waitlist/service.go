// Package waitlist implements the pre-launch email waitlist named in §3's
// key pattern table and the public waitlist/subscribe route (§6), gated by
// C4's per-IP rate limit rather than authentication.
package waitlist

import (
	"context"
	"strings"
	"time"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/store"
)

// Service writes idempotent waitlist rows.
type Service struct {
	Store store.Store
	Now   func() time.Time
}

func New(s store.Store) *Service {
	return &Service{Store: s, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}

	return time.Now()
}

// Subscribe writes (or re-writes, harmlessly) a waitlist row for email.
func (s *Service) Subscribe(ctx context.Context, email string) error {
	lower := strings.ToLower(strings.TrimSpace(email))

	item := store.Item{
		"pk": store.WaitlistPK(lower), "sk": store.WaitlistSK(lower), "type": "Waitlist",
		"email": lower, "createdAt": s.now().UnixMilli(),
	}

	return s.Store.Put(ctx, item, nil)
}
