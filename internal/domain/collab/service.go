package collab

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/store"
)

// Service implements C9 against the shared store.
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

func toStrings(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))

	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}

	return out
}

// SendInvite writes an invite row and the invitee's GSI1 projection in one
// transaction, with a 30-day TTL.
func (s *Service) SendInvite(ctx context.Context, resourceType, resourceID, inviterID, inviteeID string) (*Invite, error) {
	now := s.now()

	inv := &Invite{
		ID: uuid.New().String(), ResourceType: resourceType, ResourceID: resourceID,
		InviteeID: inviteeID, InviterID: inviterID, Status: InviteStatusPending,
		CreatedAt: now, ExpiresAt: now.Add(inviteTTL),
	}

	inviteItem := store.Item{
		"pk": store.ResourcePK(resourceType, resourceID), "sk": store.InviteSK(inv.ID), "type": "Invite",
		"id": inv.ID, "resourceType": resourceType, "resourceId": resourceID,
		"inviteeId": inviteeID, "inviterId": inviterID, "status": inv.Status,
		"createdAt": now.UnixMilli(), "expiresAt": inv.ExpiresAt.UnixMilli(),
		"gsi1pk": store.InviteeGSI1PK(inviteeID), "gsi1sk": store.InviteeGSI1SK(inv.Status, now.UnixMilli()),
	}

	if err := s.Store.Put(ctx, inviteItem, nil); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) getInvite(ctx context.Context, resourceType, resourceID, inviteID string) (store.Item, error) {
	it, err := s.Store.Get(ctx, store.ResourcePK(resourceType, resourceID), store.InviteSK(inviteID))
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NewNotFound("Invite", "invite_not_found")
		}

		return nil, err
	}

	return it, nil
}

// AcceptInvite writes a collaborator row and updates invite status in one
// transaction, conditioned on status=pending. A replayed accept on an
// already-accepted invite is idempotent (§ supplemented feature).
func (s *Service) AcceptInvite(ctx context.Context, resourceType, resourceID, inviteID string) (*Collaborator, error) {
	it, err := s.getInvite(ctx, resourceType, resourceID, inviteID)
	if err != nil {
		return nil, err
	}

	status := asString(it["status"])
	expiresAt := msToTime(it["expiresAt"])
	inviteeID := asString(it["inviteeId"])

	if status == InviteStatusAccepted {
		collabIt, err := s.Store.Get(ctx, store.ResourcePK(resourceType, resourceID), store.CollabSK(inviteeID))
		if err == nil {
			return &Collaborator{ResourceType: resourceType, ResourceID: resourceID, UserID: inviteeID, JoinedAt: msToTime(collabIt["joinedAt"])}, nil
		}
	}

	if s.now().After(expiresAt) {
		return nil, apperr.GoneError{Code: "invite_expired", Message: "invite has expired"}
	}

	now := s.now()

	collabItem := store.Item{
		"pk": store.ResourcePK(resourceType, resourceID), "sk": store.CollabSK(inviteeID), "type": "Collaborator",
		"resourceType": resourceType, "resourceId": resourceID, "userId": inviteeID, "joinedAt": now.UnixMilli(),
		"gsi1pk": store.CollabGSI1PK(inviteeID), "gsi1sk": store.CollabGSI1SK(resourceType, now.UnixMilli()),
	}

	ops := []store.WriteOp{
		{
			Kind: store.WriteUpdate, PK: store.ResourcePK(resourceType, resourceID), SK: store.InviteSK(inviteID),
			SetOps:    map[string]any{"status": InviteStatusAccepted},
			Condition: &store.Condition{Field: "status", Value: InviteStatusPending},
		},
		{Kind: store.WritePut, PK: collabItem.PK(), SK: collabItem.SK(), Item: collabItem},
	}

	if err := s.Store.TransactWrite(ctx, ops); err != nil {
		if err == store.ErrConflict {
			return nil, apperr.ConflictError{EntityType: "Invite", Code: "invite_not_pending", Message: "invite is no longer pending"}
		}

		return nil, err
	}

	return &Collaborator{ResourceType: resourceType, ResourceID: resourceID, UserID: inviteeID, JoinedAt: now}, nil
}

// DeclineInvite marks a pending invite declined.
func (s *Service) DeclineInvite(ctx context.Context, resourceType, resourceID, inviteID string) error {
	_, err := s.Store.Update(ctx, store.ResourcePK(resourceType, resourceID), store.InviteSK(inviteID),
		map[string]any{"status": InviteStatusDeclined},
		&store.Condition{Field: "status", Value: InviteStatusPending})
	if err == store.ErrConflict {
		return apperr.ConflictError{EntityType: "Invite", Code: "invite_not_pending", Message: "invite is no longer pending"}
	}

	return err
}

// ListCollaborators lists collaborators on a resource.
func (s *Service) ListCollaborators(ctx context.Context, resourceType, resourceID string) ([]Collaborator, error) {
	items, _, err := s.Store.Query(ctx, store.QueryInput{PK: store.ResourcePK(resourceType, resourceID), SK: &store.SkCondition{Op: store.SkBeginsWith, Value: "COLLAB#"}})
	if err != nil {
		return nil, err
	}

	out := make([]Collaborator, 0, len(items))
	for _, it := range items {
		out = append(out, Collaborator{ResourceType: resourceType, ResourceID: resourceID, UserID: asString(it["userId"]), JoinedAt: msToTime(it["joinedAt"])})
	}

	return out, nil
}

// AddComment writes a comment, extracting @-mentions.
func (s *Service) AddComment(ctx context.Context, resourceType, resourceID, authorID, body string) (*Comment, error) {
	if body == "" || len(body) > maxCommentLength {
		return nil, apperr.ValidationError{Code: "invalid_body", Field: "body", Message: "comment body must be 1-4000 characters"}
	}

	now := s.now()
	mentions := extractMentions(body)

	c := &Comment{ID: uuid.New().String(), ResourceType: resourceType, ResourceID: resourceID, AuthorID: authorID, Body: body, Mentions: mentions, CreatedAt: now, UpdatedAt: now}

	item := store.Item{
		"pk": store.ResourcePK(resourceType, resourceID), "sk": store.CommentSK(now.UnixMilli(), c.ID), "type": "Comment",
		"id": c.ID, "resourceType": resourceType, "resourceId": resourceID, "authorId": authorID, "body": body,
		"mentions": toAnySlice(mentions), "createdAt": now.UnixMilli(), "updatedAt": now.UnixMilli(),
	}

	if err := s.Store.Put(ctx, item, nil); err != nil {
		return nil, err
	}

	return c, nil
}

// ListComments lists a resource's comments, naturally time-ordered.
func (s *Service) ListComments(ctx context.Context, resourceType, resourceID string) ([]Comment, error) {
	items, _, err := s.Store.Query(ctx, store.QueryInput{PK: store.ResourcePK(resourceType, resourceID), SK: &store.SkCondition{Op: store.SkBeginsWith, Value: "COMMENT#"}, Forward: true})
	if err != nil {
		return nil, err
	}

	out := make([]Comment, 0, len(items))
	for _, it := range items {
		out = append(out, Comment{
			ID: asString(it["id"]), ResourceType: resourceType, ResourceID: resourceID,
			AuthorID: asString(it["authorId"]), Body: asString(it["body"]), Mentions: toStrings(it["mentions"]),
			CreatedAt: msToTime(it["createdAt"]), UpdatedAt: msToTime(it["updatedAt"]),
		})
	}

	return out, nil
}

// ToggleReaction implements the add/replace/remove toggle semantics (§4.9):
// same emoji twice removes it; a different emoji replaces the prior one for
// that (commentId, userId) pair.
func (s *Service) ToggleReaction(ctx context.Context, commentID, userID, emoji string) error {
	items, _, err := s.Store.Query(ctx, store.QueryInput{PK: store.ReactionPK(commentID), SK: &store.SkCondition{Op: store.SkBeginsWith, Value: "REACTION#" + userID + "#"}})
	if err != nil {
		return err
	}

	for _, it := range items {
		existingSK := it.SK()
		wantSK := store.ReactionSK(userID, emoji)

		if existingSK == wantSK {
			return s.Store.Delete(ctx, store.ReactionPK(commentID), existingSK, nil)
		}

		if err := s.Store.Delete(ctx, store.ReactionPK(commentID), existingSK, nil); err != nil {
			return err
		}
	}

	item := store.Item{
		"pk": store.ReactionPK(commentID), "sk": store.ReactionSK(userID, emoji), "type": "Reaction",
		"commentId": commentID, "userId": userID, "emoji": emoji,
	}

	return s.Store.Put(ctx, item, nil)
}

// ReactionCounts groups a comment's reactions by emoji.
func (s *Service) ReactionCounts(ctx context.Context, commentID string) (map[string]int, error) {
	items, _, err := s.Store.Query(ctx, store.QueryInput{PK: store.ReactionPK(commentID), SK: &store.SkCondition{Op: store.SkBeginsWith, Value: "REACTION#"}})
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, it := range items {
		counts[asString(it["emoji"])]++
	}

	return counts, nil
}
