package httpapi

import (
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
)

var validate = validator.New()

// ParseBody decodes the request body into T and runs struct-tag validation,
// the same two-step shape as the teacher's common/net/http/withBody.go
// decoder, collapsed into a single generic helper since this repo has no
// codegen step to produce per-route decorator types.
func ParseBody[T any](c *fiber.Ctx) (*T, error) {
	var body T

	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return nil, apperr.ValidationError{Code: "invalid_json", Message: "request body is not valid JSON"}
		}
	}

	if err := validate.Struct(body); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]

			return nil, apperr.ValidationError{
				Code: "validation_failed", Field: fe.Field(),
				Message: fe.Field() + " failed " + fe.Tag() + " validation",
			}
		}

		return nil, apperr.ValidationError{Code: "validation_failed", Message: err.Error()}
	}

	return &body, nil
}

// SignupRequest is the POST /auth/signup body.
type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Nickname  string `json:"nickname" validate:"required,min=1,max=32"`
	Password  string `json:"password" validate:"required,min=8"`
	Country   string `json:"country" validate:"required,len=2"`
	BirthDate string `json:"birthDate" validate:"required"`
}

// LoginRequest is the POST /auth/login body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ConfirmEmailRequest is the POST /auth/confirm body.
type ConfirmEmailRequest struct {
	UserID string `json:"userId" validate:"required"`
	Token  string `json:"token" validate:"required"`
}

// PasswordResetRequestRequest is the POST /auth/password-reset/request body.
type PasswordResetRequestRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest is the POST /auth/password-reset/confirm body.
type PasswordResetConfirmRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// UpdateProfileRequest is the PUT /profile body.
type UpdateProfileRequest struct {
	Nickname *string `json:"nickname,omitempty" validate:"omitempty,min=1,max=32"`
	Country  *string `json:"country,omitempty" validate:"omitempty,len=2"`
}

// CreateGoalRequest is the POST /goals body.
type CreateGoalRequest struct {
	Title    string `json:"title" validate:"required"`
	Deadline string `json:"deadline" validate:"required"`
}

// UpdateGoalRequest is the PUT /goals/{id} body.
type UpdateGoalRequest struct {
	Title    *string `json:"title,omitempty"`
	Deadline *string `json:"deadline,omitempty"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=active completed archived"`
}

// CreateTaskRequest is the POST /goals/{id}/tasks body.
type CreateTaskRequest struct {
	Title string `json:"title" validate:"required"`
}

// CreateQuestRequest is the POST /quests body.
type CreateQuestRequest struct {
	Title       string `json:"title" validate:"required"`
	Kind        string `json:"kind" validate:"required,oneof=linked quantitative"`
	TargetCount int    `json:"targetCount" validate:"omitempty,min=0"`
}

// IncrementQuestRequest is the POST /quests/{id}/increment body.
type IncrementQuestRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// CreateGuildRequest is the POST /guilds body.
type CreateGuildRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateGuildQuestRequest is the POST /guilds/{id}/quests body.
type CreateGuildQuestRequest struct {
	Title       string `json:"title" validate:"required"`
	Kind        string `json:"kind" validate:"required,oneof=quantitative percentual"`
	TargetCount int     `json:"targetCount" validate:"omitempty,min=0"`
}

// CompleteGuildQuestRequest is the POST /guilds/{id}/quests/{qid}/complete body.
type CompleteGuildQuestRequest struct {
	Contribution int `json:"contribution" validate:"required"`
}

// SendInviteRequest is the POST /collaborations/invites body.
type SendInviteRequest struct {
	ResourceType string `json:"resourceType" validate:"required"`
	ResourceID   string `json:"resourceId" validate:"required"`
	InviteeID    string `json:"inviteeId" validate:"required"`
}

// AddCommentRequest is the POST /collaborations/comments body.
type AddCommentRequest struct {
	ResourceType string `json:"resourceType" validate:"required"`
	ResourceID   string `json:"resourceId" validate:"required"`
	Body         string `json:"body" validate:"required,max=4000"`
}

// ToggleReactionRequest is the POST /collaborations/comments/{id}/reactions body.
type ToggleReactionRequest struct {
	Emoji string `json:"emoji" validate:"required"`
}

// CreateCheckoutRequest is the POST /subscriptions/create-checkout body.
type CreateCheckoutRequest struct {
	Tier       string `json:"tier" validate:"required"`
	SuccessURL string `json:"successUrl" validate:"required,url"`
	CancelURL  string `json:"cancelUrl" validate:"required,url"`
}

// TopupRequest is the POST /credits/topup body.
type TopupRequest struct {
	Amount int    `json:"amount" validate:"required,min=1"`
	Reason string `json:"reason" validate:"required"`
}

// WaitlistRequest is the POST /waitlist/subscribe body.
type WaitlistRequest struct {
	Email string `json:"email" validate:"required,email"`
}
