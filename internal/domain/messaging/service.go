package messaging

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/store"
)

// GuildMembershipChecker lets messaging gate guild chat without depending on
// the guild package directly.
type GuildMembershipChecker interface {
	IsMember(ctx context.Context, guildID, userID string) bool
}

// Service implements C10. RoomStore backs general room chat (the core
// table); GuildStore backs guild chat, kept on a distinct logical table per
// §3's invariant.
type Service struct {
	RoomStore  store.Store
	GuildStore store.Store
	Hub        *Hub
	Bus        *Bus // optional cross-process fan-out; nil runs single-process
	Membership GuildMembershipChecker
	Logger     logging.Logger
	Now        func() time.Time
}

func New(roomStore, guildStore store.Store, hub *Hub, membership GuildMembershipChecker, logger logging.Logger) *Service {
	return &Service{RoomStore: roomStore, GuildStore: guildStore, Hub: hub, Membership: membership, Logger: logger, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}

	return time.Now()
}

func toItem(m *Message) store.Item {
	if m.GuildID != "" {
		return store.Item{
			"pk": store.GuildChatPK(m.GuildID), "sk": store.MsgSK(m.At.UnixMilli(), m.ID), "type": "GuildMessage",
			"id": m.ID, "guildId": m.GuildID, "senderId": m.SenderID, "text": m.Text, "at": m.At.UnixMilli(),
		}
	}

	return store.Item{
		"pk": store.RoomPK(m.RoomID), "sk": store.MsgSK(m.At.UnixMilli(), m.ID), "type": "RoomMessage",
		"id": m.ID, "roomId": m.RoomID, "senderId": m.SenderID, "text": m.Text, "at": m.At.UnixMilli(),
	}
}

func fromItem(it store.Item, roomID, guildID string) *Message {
	return &Message{
		ID: asString(it["id"]), RoomID: roomID, GuildID: guildID,
		SenderID: asString(it["senderId"]), Text: asString(it["text"]), At: msToTime(it["at"]),
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

// Send persists a message and publishes it to subscribers. roomID xor
// guildID must be set.
func (s *Service) Send(ctx context.Context, roomID, guildID, senderID, text string) (*Message, error) {
	if text == "" {
		return nil, apperr.ValidationError{Code: "empty_message", Field: "text", Message: "message text is required"}
	}

	if guildID != "" && s.Membership != nil && !s.Membership.IsMember(ctx, guildID, senderID) {
		return nil, apperr.ForbiddenError{Code: "not_member", Message: "only guild members may send guild chat"}
	}

	now := s.now()
	id := ulid.Make().String()

	m := &Message{ID: id, RoomID: roomID, GuildID: guildID, SenderID: senderID, Text: text, At: now}

	backingStore := s.RoomStore
	key := store.RoomPK(roomID)

	if guildID != "" {
		backingStore = s.GuildStore
		key = store.GuildChatPK(guildID)
	}

	if err := backingStore.Put(ctx, toItem(m), nil); err != nil {
		return nil, err
	}

	s.Hub.Publish(key, Event{Type: "message", Message: m})

	if s.Bus != nil {
		if err := s.Bus.Publish(key, Event{Type: "message", Message: m}); err != nil && s.Logger != nil {
			s.Logger.Errorf("chat bus publish failed: %v", err)
		}
	}

	return m, nil
}

// History returns up to limit messages, reverse-chronological, with an
// opaque cursor for older pages.
func (s *Service) History(ctx context.Context, roomID, guildID string, limit int, cursor string) ([]*Message, string, error) {
	if limit <= 0 {
		limit = 50
	}

	backingStore := s.RoomStore
	pk := store.RoomPK(roomID)

	if guildID != "" {
		backingStore = s.GuildStore
		pk = store.GuildChatPK(guildID)
	}

	items, next, err := backingStore.Query(ctx, store.QueryInput{
		PK: pk, SK: &store.SkCondition{Op: store.SkBeginsWith, Value: "MSG#"},
		Limit: limit, Forward: false, Cursor: cursor,
	})
	if err != nil {
		return nil, "", err
	}

	out := make([]*Message, 0, len(items))
	for _, it := range items {
		out = append(out, fromItem(it, roomID, guildID))
	}

	return out, next, nil
}

// Subscribe returns a live event channel for roomID xor guildID.
func (s *Service) Subscribe(roomID, guildID string) (<-chan Event, func()) {
	key := store.RoomPK(roomID)
	if guildID != "" {
		key = store.GuildChatPK(guildID)
	}

	return s.Hub.Subscribe(key)
}
