package graphqlapi

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/goal"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/messaging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/user"
)

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.String},
		"email":    &graphql.Field{Type: graphql.String},
		"nickname": &graphql.Field{Type: graphql.String},
		"country":  &graphql.Field{Type: graphql.String},
		"status":   &graphql.Field{Type: graphql.String},
	},
})

var goalType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Goal",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.String},
		"title":    &graphql.Field{Type: graphql.String},
		"deadline": &graphql.Field{Type: graphql.String},
		"status":   &graphql.Field{Type: graphql.String},
	},
})

var taskType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Task",
	Fields: graphql.Fields{
		"id":     &graphql.Field{Type: graphql.String},
		"goalId": &graphql.Field{Type: graphql.String},
		"title":  &graphql.Field{Type: graphql.String},
		"status": &graphql.Field{Type: graphql.String},
	},
})

var messageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Message",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.String},
		"roomId":   &graphql.Field{Type: graphql.String},
		"guildId":  &graphql.Field{Type: graphql.String},
		"senderId": &graphql.Field{Type: graphql.String},
		"text":     &graphql.Field{Type: graphql.String},
		"at":       &graphql.Field{Type: graphql.String},
	},
})

func userFields(u *user.User) map[string]any {
	return map[string]any{
		"id": u.ID, "email": u.Email, "nickname": u.Nickname, "country": u.Country, "status": u.Status,
	}
}

func goalFields(g *goal.Goal) map[string]any {
	return map[string]any{
		"id": g.ID, "title": g.Title, "deadline": g.Deadline.Format(time.RFC3339), "status": g.Status,
	}
}

func taskFields(t *goal.Task) map[string]any {
	return map[string]any{"id": t.ID, "goalId": t.GoalID, "title": t.Title, "status": t.Status}
}

func messageFields(m *messaging.Message) map[string]any {
	return map[string]any{
		"id": m.ID, "roomId": m.RoomID, "guildId": m.GuildID, "senderId": m.SenderID,
		"text": m.Text, "at": m.At.Format(time.RFC3339),
	}
}
