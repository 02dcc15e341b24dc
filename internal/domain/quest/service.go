package quest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/store"
)

// Service implements C7 against the shared store.
type Service struct {
	Store  store.Store
	Logger logging.Logger
	Now    func() time.Time
}

func New(s store.Store, logger logging.Logger) *Service {
	return &Service{Store: s, Logger: logger, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}

	return time.Now()
}

func toItem(q *Quest) store.Item {
	ts := q.CreatedAt.UnixMilli()

	return store.Item{
		"pk": store.UserPK(q.UserID), "sk": store.QuestSK(q.ID),
		"type": "Quest", "id": q.ID, "userId": q.UserID, "guildId": q.GuildID,
		"title": q.Title, "kind": q.Kind, "status": q.Status,
		"targetCount": q.TargetCount, "currentCount": q.CurrentCount,
		"version":   q.Version,
		"createdAt": ts, "updatedAt": q.UpdatedAt.UnixMilli(),
		"gsi1pk": store.UserPK(q.UserID), "gsi1sk": store.QuestEntityGSI1SK(ts),
	}
}

func fromItem(it store.Item) *Quest {
	return &Quest{
		ID:           asString(it["id"]),
		UserID:       asString(it["userId"]),
		GuildID:      asString(it["guildId"]),
		Title:        asString(it["title"]),
		Kind:         asString(it["kind"]),
		Status:       asString(it["status"]),
		TargetCount:  int(toInt64(it["targetCount"])),
		CurrentCount: int(toInt64(it["currentCount"])),
		Version:      toInt64(it["version"]),
		CreatedAt:    msToTime(it["createdAt"]),
		UpdatedAt:    msToTime(it["updatedAt"]),
	}
}

func asString(v any) string { s, _ := v.(string); return s }

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func msToTime(v any) time.Time {
	ms := toInt64(v)
	if ms == 0 {
		return time.Time{}
	}

	return time.UnixMilli(ms)
}

// CreateQuest writes a draft quest with version 1.
func (s *Service) CreateQuest(ctx context.Context, userID, title, kind string, targetCount int) (*Quest, error) {
	if title == "" {
		return nil, apperr.ValidationError{Code: "invalid_title", Field: "title", Message: "title is required"}
	}

	if kind != KindLinked && kind != KindQuantitative {
		return nil, apperr.ValidationError{Code: "invalid_kind", Field: "kind", Message: "kind must be linked or quantitative"}
	}

	now := s.now()

	q := &Quest{
		ID: uuid.New().String(), UserID: userID, Title: title, Kind: kind,
		Status: StatusDraft, TargetCount: targetCount, Version: 1,
		CreatedAt: now, UpdatedAt: now,
	}

	if err := s.Store.Put(ctx, toItem(q), nil); err != nil {
		return nil, err
	}

	return q, nil
}

// Get fetches a quest, enforcing the owner-only read rule (§4.7: "read is
// owner-only unless quest is linked to a guild"). isGuildMember lets callers
// supply the guild-membership check without quest depending on guild.
func (s *Service) Get(ctx context.Context, requester, userID, questID string, isGuildMember func(guildID string) bool) (*Quest, error) {
	it, err := s.Store.Get(ctx, store.UserPK(userID), store.QuestSK(questID))
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NewNotFound("Quest", "quest_not_found")
		}

		return nil, err
	}

	q := fromItem(it)

	if requester == q.UserID {
		return q, nil
	}

	if q.GuildID != "" && isGuildMember != nil && isGuildMember(q.GuildID) {
		return q, nil
	}

	return nil, apperr.ForbiddenError{Code: "not_owner", Message: "only the owner or guild members may view this quest"}
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Quest, error) {
	items, _, err := s.Store.Query(ctx, store.QueryInput{PK: store.UserPK(userID), SK: &store.SkCondition{Op: store.SkBeginsWith, Value: "QUEST#"}})
	if err != nil {
		return nil, err
	}

	out := make([]*Quest, 0, len(items))
	for _, it := range items {
		out = append(out, fromItem(it))
	}

	return out, nil
}

// applyTransition performs one optimistic-locked mutation: read current
// version, TransactWrite the updated quest row (conditioned on version) plus
// an audit row, retry once on Conflict by re-reading, else VersionConflict.
func (s *Service) applyTransition(ctx context.Context, userID, questID, actor string, mutate func(q *Quest) error, reason string) (*Quest, error) {
	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		it, err := s.Store.Get(ctx, store.UserPK(userID), store.QuestSK(questID))
		if err != nil {
			if err == store.ErrNotFound {
				return nil, apperr.NewNotFound("Quest", "quest_not_found")
			}

			return nil, err
		}

		q := fromItem(it)

		if actor != q.UserID {
			return nil, apperr.ForbiddenError{Code: "not_owner", Message: "only the owner may mutate this quest"}
		}

		from := q.Status
		prevVersion := q.Version

		if err := mutate(q); err != nil {
			return nil, err
		}

		q.Version = prevVersion + 1
		q.UpdatedAt = s.now()

		updatedItem := toItem(q)

		auditItem := store.Item{
			"pk": store.QuestPK(questID), "sk": store.AuditSK(s.now().UnixMilli(), int(q.Version)),
			"type": "QuestAudit", "questId": questID, "actor": actor,
			"from": from, "to": q.Status, "reason": reason,
			"at": s.now().UnixMilli(),
		}

		ops := []store.WriteOp{
			{
				Kind: store.WriteUpdate, PK: updatedItem.PK(), SK: updatedItem.SK(),
				SetOps: map[string]any{
					"status": q.Status, "currentCount": q.CurrentCount,
					"version": q.Version, "updatedAt": q.UpdatedAt.UnixMilli(),
				},
				Condition: &store.Condition{Field: "version", Value: prevVersion},
			},
			{Kind: store.WritePut, PK: auditItem.PK(), SK: auditItem.SK(), Item: auditItem},
		}

		err = s.Store.TransactWrite(ctx, ops)
		if err == nil {
			return q, nil
		}

		if err != store.ErrConflict {
			return nil, err
		}

		lastErr = err
	}

	return nil, apperr.ConflictError{EntityType: "Quest", Code: "version_conflict", Message: "quest was modified concurrently", Err: lastErr}
}

// Start transitions draft -> active.
func (s *Service) Start(ctx context.Context, userID, questID, actor string) (*Quest, error) {
	return s.applyTransition(ctx, userID, questID, actor, func(q *Quest) error {
		return requireTransition(q, StatusActive)
	}, "start")
}

// Complete transitions active -> completed.
func (s *Service) Complete(ctx context.Context, userID, questID, actor string) (*Quest, error) {
	return s.applyTransition(ctx, userID, questID, actor, func(q *Quest) error {
		return requireTransition(q, StatusCompleted)
	}, "complete")
}

// Fail transitions active -> failed.
func (s *Service) Fail(ctx context.Context, userID, questID, actor string) (*Quest, error) {
	return s.applyTransition(ctx, userID, questID, actor, func(q *Quest) error {
		return requireTransition(q, StatusFailed)
	}, "fail")
}

// Cancel transitions draft|active -> cancelled.
func (s *Service) Cancel(ctx context.Context, userID, questID, actor string) (*Quest, error) {
	return s.applyTransition(ctx, userID, questID, actor, func(q *Quest) error {
		return requireTransition(q, StatusCancelled)
	}, "cancel")
}

func requireTransition(q *Quest, to string) error {
	if !canTransition(q.Status, to) {
		return apperr.ValidationError{Code: "invalid_transition", Message: "transition " + q.Status + " -> " + to + " is not allowed"}
	}

	q.Status = to

	return nil
}

// Increment adds delta to a quantitative quest's current count, rejecting
// any increment that would exceed target_count.
func (s *Service) Increment(ctx context.Context, userID, questID, actor string, delta int) (*Quest, error) {
	return s.applyTransition(ctx, userID, questID, actor, func(q *Quest) error {
		if q.Kind != KindQuantitative {
			return apperr.ValidationError{Code: "not_quantitative", Message: "only quantitative quests support increment"}
		}

		if q.Status != StatusActive && q.Status != StatusDraft {
			return apperr.ValidationError{Code: "invalid_state", Message: "quest must be draft or active to increment"}
		}

		if q.CurrentCount+delta > q.TargetCount {
			return apperr.ValidationError{Code: "exceeds_target", Message: "increment would exceed target_count"}
		}

		q.CurrentCount += delta

		if q.Status == StatusDraft {
			q.Status = StatusActive
		}

		return nil
	}, "increment")
}

// Audit lists a quest's audit trail, oldest first.
func (s *Service) Audit(ctx context.Context, questID string) ([]AuditEntry, error) {
	items, _, err := s.Store.Query(ctx, store.QueryInput{
		PK: store.QuestPK(questID), SK: &store.SkCondition{Op: store.SkBeginsWith, Value: "AUDIT#"}, Forward: true,
	})
	if err != nil {
		return nil, err
	}

	out := make([]AuditEntry, 0, len(items))

	for _, it := range items {
		out = append(out, AuditEntry{
			QuestID: questID,
			Actor:   asString(it["actor"]),
			From:    asString(it["from"]),
			To:      asString(it["to"]),
			Reason:  asString(it["reason"]),
			At:      msToTime(it["at"]),
		})
	}

	return out, nil
}
