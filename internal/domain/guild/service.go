package guild

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/store"
)

// Coefficients weights the on-demand analytics formula (§4.8).
type Coefficients struct {
	Alpha float64
	Beta  float64
	Gamma float64
}

var defaultCoefficients = Coefficients{Alpha: 0.5, Beta: 0.3, Gamma: 0.2}

// CompletedGoalsCounter counts completed goals across a set of members,
// letting guild analytics reach into C6 without a hard package dependency.
type CompletedGoalsCounter interface {
	CountCompletedGoals(ctx context.Context, userIDs []string) (int, error)
}

// Service implements C8 against the shared store.
type Service struct {
	Store        store.Store
	Logger       logging.Logger
	Coefficients Coefficients
	GoalCounter  CompletedGoalsCounter
	Now          func() time.Time
}

func New(s store.Store, logger logging.Logger, counter CompletedGoalsCounter) *Service {
	return &Service{Store: s, Logger: logger, Coefficients: defaultCoefficients, GoalCounter: counter, Now: time.Now}
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

// CreateGuild writes the guild row and a founding owner membership in one
// transaction (§4.8).
func (s *Service) CreateGuild(ctx context.Context, ownerID, name string) (*Guild, error) {
	if name == "" {
		return nil, apperr.ValidationError{Code: "invalid_name", Field: "name", Message: "name is required"}
	}

	now := s.now()
	g := &Guild{ID: uuid.New().String(), Name: name, OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}

	guildItem := store.Item{
		"pk": store.GuildPK(g.ID), "sk": store.GuildSK(g.ID), "type": "Guild",
		"id": g.ID, "name": g.Name, "ownerId": g.OwnerID,
		"createdAt": now.UnixMilli(), "updatedAt": now.UnixMilli(),
		"gsi1pk": store.GuildIndexGSI1PK(), "gsi1sk": store.GuildPK(g.ID),
	}

	memberItem := store.Item{
		"pk": store.GuildPK(g.ID), "sk": store.MemberSK(ownerID), "type": "GuildMembership",
		"guildId": g.ID, "userId": ownerID, "role": RoleOwner, "joinedAt": now.UnixMilli(),
		"gsi1pk": store.InviteeGSI1PK(ownerID), "gsi1sk": store.GuildMembershipGSI1SK(now.UnixMilli()),
	}

	ops := []store.WriteOp{
		{Kind: store.WritePut, PK: guildItem.PK(), SK: guildItem.SK(), Item: guildItem},
		{Kind: store.WritePut, PK: memberItem.PK(), SK: memberItem.SK(), Item: memberItem},
	}

	if err := s.Store.TransactWrite(ctx, ops); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) Get(ctx context.Context, guildID string) (*Guild, error) {
	it, err := s.Store.Get(ctx, store.GuildPK(guildID), store.GuildSK(guildID))
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NewNotFound("Guild", "guild_not_found")
		}

		return nil, err
	}

	return &Guild{
		ID: asString(it["id"]), Name: asString(it["name"]), OwnerID: asString(it["ownerId"]),
		CreatedAt: msToTime(it["createdAt"]), UpdatedAt: msToTime(it["updatedAt"]),
	}, nil
}

// IsMember reports whether userID belongs to guildID.
func (s *Service) IsMember(ctx context.Context, guildID, userID string) bool {
	it, err := s.Store.Get(ctx, store.GuildPK(guildID), store.MemberSK(userID))

	return err == nil && it != nil
}

// Join adds a membership row and emits a join activity.
func (s *Service) Join(ctx context.Context, guildID, userID string) error {
	now := s.now()

	memberItem := store.Item{
		"pk": store.GuildPK(guildID), "sk": store.MemberSK(userID), "type": "GuildMembership",
		"guildId": guildID, "userId": userID, "role": RoleMember, "joinedAt": now.UnixMilli(),
		"gsi1pk": store.InviteeGSI1PK(userID), "gsi1sk": store.GuildMembershipGSI1SK(now.UnixMilli()),
	}

	if err := s.Store.Put(ctx, memberItem, &store.Condition{Field: "pk", MustNotExist: true}); err != nil {
		if err == store.ErrConflict {
			return apperr.ConflictError{EntityType: "GuildMembership", Code: "already_member", Message: "already a member"}
		}

		return err
	}

	return s.emitActivity(ctx, guildID, "member_joined", userID, userID)
}

// Leave removes a membership row and emits a leave activity.
func (s *Service) Leave(ctx context.Context, guildID, userID string) error {
	if err := s.Store.Delete(ctx, store.GuildPK(guildID), store.MemberSK(userID), nil); err != nil {
		return err
	}

	return s.emitActivity(ctx, guildID, "member_left", userID, userID)
}

func (s *Service) emitActivity(ctx context.Context, guildID, kind, actorID, detail string) error {
	now := s.now()
	id := uuid.New().String()

	item := store.Item{
		"pk": store.GuildPK(guildID), "sk": store.GuildActivitySK(now.UnixMilli(), id), "type": "GuildActivity",
		"guildId": guildID, "id": id, "kind": kind, "actorId": actorID, "detail": detail, "at": now.UnixMilli(),
	}

	return s.Store.Put(ctx, item, nil)
}

// AddGuildQuest creates a guild-scoped quest.
func (s *Service) AddGuildQuest(ctx context.Context, guildID, title, kind string, targetCount int) (*GuildQuest, error) {
	now := s.now()
	q := &GuildQuest{GuildID: guildID, QuestID: uuid.New().String(), Title: title, Kind: kind, TargetCount: targetCount, CreatedAt: now}

	item := store.Item{
		"pk": store.GuildPK(guildID), "sk": store.GuildQuestSK(q.QuestID), "type": "GuildQuest",
		"guildId": guildID, "questId": q.QuestID, "title": title, "kind": kind,
		"targetCount": targetCount, "createdAt": now.UnixMilli(),
	}

	if err := s.Store.Put(ctx, item, nil); err != nil {
		return nil, err
	}

	return q, nil
}

// CompleteGuildQuest records one member's contribution, enforcing
// completion_count <= target_count for quantitative quests.
func (s *Service) CompleteGuildQuest(ctx context.Context, guildID, questID, userID string, contribution int) error {
	qIt, err := s.Store.Get(ctx, store.GuildPK(guildID), store.GuildQuestSK(questID))
	if err != nil {
		if err == store.ErrNotFound {
			return apperr.NewNotFound("GuildQuest", "guild_quest_not_found")
		}

		return err
	}

	kind := asString(qIt["kind"])
	target := int(toInt64(qIt["targetCount"]))

	if kind == GuildQuestQuantitative {
		items, _, err := s.Store.Query(ctx, store.QueryInput{PK: store.GuildPK(guildID), SK: &store.SkCondition{Op: store.SkBeginsWith, Value: "COMPLETION#" + questID}})
		if err != nil {
			return err
		}

		total := contribution
		for _, it := range items {
			total += int(toInt64(it["contribution"]))
		}

		if total > target {
			return apperr.ValidationError{Code: "exceeds_target", Message: "completion_count would exceed target_count"}
		}
	}

	now := s.now()

	item := store.Item{
		"pk": store.GuildPK(guildID), "sk": store.GuildCompletionSK(questID, userID), "type": "GuildQuestCompletion",
		"guildId": guildID, "questId": questID, "userId": userID, "contribution": contribution, "updatedAt": now.UnixMilli(),
	}

	if err := s.Store.Put(ctx, item, nil); err != nil {
		return err
	}

	return s.emitActivity(ctx, guildID, "quest_completed", userID, questID)
}

// ListActivities returns the most recent activity feed entries, default limit 50.
func (s *Service) ListActivities(ctx context.Context, guildID string, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 50
	}

	items, _, err := s.Store.Query(ctx, store.QueryInput{
		PK: store.GuildPK(guildID), SK: &store.SkCondition{Op: store.SkBeginsWith, Value: "ACTIVITY#"},
		Limit: limit, Forward: false,
	})
	if err != nil {
		return nil, err
	}

	out := make([]Activity, 0, len(items))
	for _, it := range items {
		out = append(out, Activity{
			GuildID: guildID, ID: asString(it["id"]), Kind: asString(it["kind"]),
			ActorID: asString(it["actorId"]), Detail: asString(it["detail"]), At: msToTime(it["at"]),
		})
	}

	return out, nil
}

func (s *Service) members(ctx context.Context, guildID string) ([]string, error) {
	items, _, err := s.Store.Query(ctx, store.QueryInput{PK: store.GuildPK(guildID), SK: &store.SkCondition{Op: store.SkBeginsWith, Value: "MEMBER#"}})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, asString(it["userId"]))
	}

	return out, nil
}

// GetAnalytics computes the weighted member-activity rate on demand.
func (s *Service) GetAnalytics(ctx context.Context, guildID string, windowDays int) (*Analytics, error) {
	if windowDays <= 0 {
		windowDays = 30
	}

	memberIDs, err := s.members(ctx, guildID)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().AddDate(0, 0, -windowDays)

	items, _, err := s.Store.Query(ctx, store.QueryInput{PK: store.GuildPK(guildID), SK: &store.SkCondition{Op: store.SkBeginsWith, Value: "ACTIVITY#"}})
	if err != nil {
		return nil, err
	}

	activeSet := map[string]bool{}
	recent := 0

	for _, it := range items {
		at := msToTime(it["at"])
		if at.Before(cutoff) {
			continue
		}

		recent++
		activeSet[asString(it["actorId"])] = true
	}

	completedGoals := 0

	if s.GoalCounter != nil && len(memberIDs) > 0 {
		completedGoals, err = s.GoalCounter.CountCompletedGoals(ctx, memberIDs)
		if err != nil {
			return nil, err
		}
	}

	total := len(memberIDs)
	if total == 0 {
		total = 1
	}

	score := s.Coefficients.Alpha*float64(len(activeSet))/float64(total) +
		s.Coefficients.Beta*float64(recent)/float64(windowDays) +
		s.Coefficients.Gamma*float64(completedGoals)/float64(total)

	return &Analytics{
		GuildID: guildID, ActiveMembers: len(activeSet), TotalMembers: len(memberIDs),
		RecentActivities: recent, WindowDays: windowDays, CompletedGoalsByMembers: completedGoals,
		Score: score,
	}, nil
}
