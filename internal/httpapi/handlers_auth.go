package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/user"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/waitlist"
)

// AuthHandler exposes C5's signup/login/confirm/reset operations (§6).
type AuthHandler struct {
	Users *user.Service
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	req, err := ParseBody[SignupRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return WithError(c, apperr.ValidationError{Code: "invalid_birth_date", Field: "birthDate", Message: "birthDate must be YYYY-MM-DD"})
	}

	u, err := h.Users.Signup(c.UserContext(), user.SignupInput{
		Email: req.Email, Nickname: req.Nickname, Password: req.Password,
		Country: req.Country, BirthDate: birthDate,
	})
	if err != nil {
		return WithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": u.ID, "email": u.Email, "nickname": u.Nickname, "status": u.Status,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	req, err := ParseBody[LoginRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	u, token, err := h.Users.Login(c.UserContext(), ClientIP(c), req.Email, req.Password)
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(fiber.Map{"accessToken": token, "userId": u.ID, "nickname": u.Nickname, "role": u.Role})
}

func (h *AuthHandler) Confirm(c *fiber.Ctx) error {
	req, err := ParseBody[ConfirmEmailRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	if err := h.Users.ConfirmEmail(c.UserContext(), req.UserID, req.Token); err != nil {
		return WithError(c, err)
	}

	return c.JSON(fiber.Map{"status": "active"})
}

// RequestPasswordReset always returns 200 regardless of whether the email
// is registered, per §4.5's enumeration resistance.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	req, err := ParseBody[PasswordResetRequestRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	_ = h.Users.RequestPasswordReset(c.UserContext(), req.Email)

	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	req, err := ParseBody[PasswordResetConfirmRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	if err := h.Users.ResetPassword(c.UserContext(), req.Email, req.Token, req.NewPassword); err != nil {
		return WithError(c, err)
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *AuthHandler) IsEmailAvailable(c *fiber.Ctx) error {
	ok, err := h.Users.IsEmailAvailable(c.UserContext(), c.Query("email"))
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(fiber.Map{"available": ok})
}

func (h *AuthHandler) IsNicknameAvailable(c *fiber.Ctx) error {
	ok, err := h.Users.IsNicknameAvailable(c.UserContext(), c.Query("nickname"))
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(fiber.Map{"available": ok})
}

// ProfileHandler exposes the owner-only profile read/update routes.
type ProfileHandler struct {
	Users *user.Service
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	p := Principal(c)

	u, err := h.Users.GetProfile(c.UserContext(), p.Sub)
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(fiber.Map{
		"id": u.ID, "email": u.Email, "nickname": u.Nickname, "country": u.Country, "status": u.Status,
	})
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	p := Principal(c)

	req, err := ParseBody[UpdateProfileRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	u, err := h.Users.UpdateProfile(c.UserContext(), p.Sub, user.ProfileUpdate{Nickname: req.Nickname, Country: req.Country})
	if err != nil {
		return WithError(c, err)
	}

	return c.JSON(fiber.Map{"id": u.ID, "nickname": u.Nickname, "country": u.Country})
}

// WaitlistHandler exposes the public waitlist signup route.
type WaitlistHandler struct {
	Waitlist *waitlist.Service
}

func (h *WaitlistHandler) Subscribe(c *fiber.Ctx) error {
	req, err := ParseBody[WaitlistRequest](c)
	if err != nil {
		return WithError(c, err)
	}

	if err := h.Waitlist.Subscribe(c.UserContext(), req.Email); err != nil {
		return WithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "queued"})
}
