// Package collab implements C9: collaboration invites, collaborators,
// threaded comments with @-mentions, and emoji reactions with toggle
// semantics.
package collab

import (
	"regexp"
	"time"
)

const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusDeclined = "declined"
)

const inviteTTL = 30 * 24 * time.Hour

const maxCommentLength = 4000

// Invite is one pending/accepted/declined collaboration invite on a resource.
type Invite struct {
	ID           string
	ResourceType string
	ResourceID   string
	InviteeID    string
	InviterID    string
	Status       string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Collaborator is one accepted membership on a resource.
type Collaborator struct {
	ResourceType string
	ResourceID   string
	UserID       string
	JoinedAt     time.Time
}

// Comment is one immutable-author, mutable-body comment on a resource.
type Comment struct {
	ID           string
	ResourceType string
	ResourceID   string
	AuthorID     string
	Body         string
	Mentions     []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Reaction is one (commentId, userId, emoji) row.
type Reaction struct {
	CommentID string
	UserID    string
	Emoji     string
}

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]{1,32})`)

// extractMentions is a pure string scan for @nickname tokens.
func extractMentions(body string) []string {
	matches := mentionPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := map[string]bool{}
	out := make([]string, 0, len(matches))

	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}

	return out
}
