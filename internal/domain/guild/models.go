// Package guild implements C8: guild CRUD, membership, per-member guild
// quests, the activity feed, and on-demand analytics.
package guild

import "time"

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

const (
	GuildQuestQuantitative = "quantitative"
	GuildQuestPercentual   = "percentual"
)

// Guild is the domain representation of a guild row.
type Guild struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Membership is one guild member row.
type Membership struct {
	GuildID  string
	UserID   string
	Role     string
	JoinedAt time.Time
}

// GuildQuest is a guild-scoped quest; percentual/quantitative aggregation
// happens over per-member Completion rows.
type GuildQuest struct {
	GuildID     string
	QuestID     string
	Title       string
	Kind        string
	TargetCount int
	CreatedAt   time.Time
}

// Completion is one member's contribution toward a GuildQuest.
type Completion struct {
	GuildID      string
	QuestID      string
	UserID       string
	Contribution int // raw count for quantitative, percent [0,100] for percentual
	UpdatedAt    time.Time
}

// Activity is one feed entry (join, leave, quest completion, ...).
type Activity struct {
	GuildID string
	ID      string
	Kind    string
	ActorID string
	Detail  string
	At      time.Time
}

// Analytics is the on-demand weighted member-activity aggregate (§4.8).
type Analytics struct {
	GuildID               string
	ActiveMembers         int
	TotalMembers          int
	RecentActivities      int
	WindowDays            int
	CompletedGoalsByMembers int
	Score                 float64
}
