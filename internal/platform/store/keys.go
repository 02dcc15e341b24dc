package store

import "fmt"

// Keys centralizes every PK/SK/GSI builder in the repository. Per §4.2,
// service code builds full keys only through these functions so the key
// patterns in spec §3 stay reproducible byte-for-byte; services still pass
// literal prefixes such as "GOAL#" or "CREDIT#" to begins_with queries.

func UserPK(id string) string      { return fmt.Sprintf("USER#%s", id) }
func UserProfileSK(id string) string { return fmt.Sprintf("PROFILE#%s", id) }
func UserEntityGSI1SK(ts int64) string { return fmt.Sprintf("ENTITY#User#%d", ts) }
func NickGSI2PK(nickname string) string { return fmt.Sprintf("NICK#%s", nickname) }
func EmailGSI3PK(lowerEmail string) string { return fmt.Sprintf("EMAIL#%s", lowerEmail) }

func EmailLockPK(lowerEmail string) string { return fmt.Sprintf("EMAIL#%s", lowerEmail) }
func EmailLockSK() string                  { return "UNIQUE#USER" }

func WaitlistPK(email string) string { return fmt.Sprintf("WAITLIST#%s", email) }
func WaitlistSK(email string) string { return fmt.Sprintf("WAITLIST#%s", email) }

func GoalSK(goalID string) string        { return fmt.Sprintf("GOAL#%s", goalID) }
func GoalEntityGSI1SK(ts int64) string   { return fmt.Sprintf("ENTITY#Goal#%d", ts) }
func GoalPK(goalID string) string        { return fmt.Sprintf("GOAL#%s", goalID) }
func TaskSK(taskID string) string        { return fmt.Sprintf("TASK#%s", taskID) }

func QuestSK(questID string) string      { return fmt.Sprintf("QUEST#%s", questID) }
func QuestEntityGSI1SK(ts int64) string  { return fmt.Sprintf("ENTITY#Quest#%d", ts) }
func QuestPK(questID string) string      { return fmt.Sprintf("QUEST#%s", questID) }
func AuditSK(ts int64, seq int) string   { return fmt.Sprintf("AUDIT#%d#%03d", ts, seq) }

func GuildPK(id string) string { return fmt.Sprintf("GUILD#%s", id) }
func GuildSK(id string) string { return fmt.Sprintf("GUILD#%s", id) }
func GuildIndexGSI1PK() string { return "GUILD" }
func MemberSK(userID string) string { return fmt.Sprintf("MEMBER#%s", userID) }
func GuildMembershipGSI1SK(joinedAt int64) string { return fmt.Sprintf("GUILD#%d", joinedAt) }
func GuildQuestSK(questID string) string { return fmt.Sprintf("QUEST#%s", questID) }
func GuildCompletionSK(questID, userID string) string {
	return fmt.Sprintf("COMPLETION#%s#%s", questID, userID)
}
func GuildActivitySK(ts int64, activityID string) string {
	return fmt.Sprintf("ACTIVITY#%d#%s", ts, activityID)
}

func ResourcePK(resourceType, resourceID string) string {
	return fmt.Sprintf("RESOURCE#%s#%s", resourceType, resourceID)
}
func InviteSK(inviteID string) string { return fmt.Sprintf("INVITE#%s", inviteID) }
func InviteeGSI1PK(inviteeID string) string { return fmt.Sprintf("USER#%s", inviteeID) }
func InviteeGSI1SK(status string, ts int64) string {
	return fmt.Sprintf("INVITE#%s#%d", status, ts)
}
func CollabSK(userID string) string { return fmt.Sprintf("COLLAB#%s", userID) }
func CollabGSI1PK(userID string) string { return fmt.Sprintf("USER#%s", userID) }
func CollabGSI1SK(resourceType string, joinedAt int64) string {
	return fmt.Sprintf("COLLAB#%s#%d", resourceType, joinedAt)
}

func CommentSK(ts int64, commentID string) string {
	return fmt.Sprintf("COMMENT#%d#%s", ts, commentID)
}
func ReactionPK(commentID string) string { return fmt.Sprintf("COMMENT#%s", commentID) }
func ReactionSK(userID, emoji string) string {
	return fmt.Sprintf("REACTION#%s#%s", userID, emoji)
}

func RoomPK(roomID string) string       { return fmt.Sprintf("ROOM#%s", roomID) }
func GuildChatPK(guildID string) string { return fmt.Sprintf("GUILD#%s", guildID) }
func MsgSK(ts int64, msgID string) string {
	return fmt.Sprintf("MSG#%d#%s", ts, msgID)
}

func SubscriptionSK() string { return "SUBSCRIPTION" }
func SubStatusGSI1PK(status string) string { return fmt.Sprintf("SUB_STATUS#%s", status) }

func CreditSK(ts int64, entryID string) string {
	return fmt.Sprintf("CREDIT#%d#%s", ts, entryID)
}

func RateLimitPK(scope, key string) string { return fmt.Sprintf("RL#%s#%s", scope, key) }
func RateLimitSK(epochMinute int64) string { return fmt.Sprintf("WINDOW#%d", epochMinute) }

func LoginAttemptPK(key string) string   { return fmt.Sprintf("LOGIN#%s", key) }
func LoginAttemptSK(ts int64) string     { return fmt.Sprintf("ATTEMPT#%d", ts) }
