package user

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/mailer"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/identity"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/ratelimit"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/store"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const bcryptCost = 11

// Service implements C5's operations against the shared store.
type Service struct {
	Store    store.Store
	Logger   logging.Logger
	Issuer   *identity.InternalIssuer
	Mailer   mailer.Mailer
	Lockout  *ratelimit.LoginLockout
	Now      func() time.Time
}

func New(s store.Store, logger logging.Logger, issuer *identity.InternalIssuer, m mailer.Mailer, lockout *ratelimit.LoginLockout) *Service {
	return &Service{Store: s, Logger: logger, Issuer: issuer, Mailer: m, Lockout: lockout, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}

	return time.Now()
}

// validatePassword enforces the ≥8, upper, lower, digit, special rule.
func validatePassword(pw string) error {
	if len(pw) < 8 {
		return apperr.ValidationError{Code: "weak_password", Field: "password", Message: "password must be at least 8 characters"}
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool

	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return apperr.ValidationError{Code: "weak_password", Field: "password", Message: "password must mix upper, lower, digit and special characters"}
	}

	return nil
}

func validateSignup(in SignupInput, now time.Time) error {
	if !emailPattern.MatchString(in.Email) {
		return apperr.ValidationError{Code: "invalid_email", Field: "email", Message: "email is not well-formed"}
	}

	if l := len(in.Nickname); l < 1 || l > 32 {
		return apperr.ValidationError{Code: "invalid_nickname", Field: "nickname", Message: "nickname must be 1-32 characters"}
	}

	if err := validatePassword(in.Password); err != nil {
		return err
	}

	if !isAllowedCountry(in.Country) {
		return apperr.ValidationError{Code: "invalid_country", Field: "country", Message: "country is not in the allowed list"}
	}

	if !in.BirthDate.Before(now.AddDate(-1, 0, 0)) {
		return apperr.ValidationError{Code: "invalid_birth_date", Field: "birthDate", Message: "birth date must be at least one year in the past"}
	}

	return nil
}

func toItem(u *User) store.Item {
	ts := u.CreatedAt.UnixMilli()

	return store.Item{
		"pk":        store.UserPK(u.ID),
		"sk":        store.UserProfileSK(u.ID),
		"type":      "User",
		"id":        u.ID,
		"email":     u.Email,
		"emailLower": u.EmailLower,
		"nickname":  u.Nickname,
		"passwordHash": u.PasswordHash,
		"country":   u.Country,
		"birthDate": u.BirthDate.UnixMilli(),
		"status":    u.Status,
		"role":      u.Role,
		"passwordUpdatedAt": u.PasswordUpdatedAt.UnixMilli(),
		"confirmToken":      u.ConfirmToken,
		"confirmExpiresAt":  u.ConfirmExpiresAt.UnixMilli(),
		"resetToken":        u.ResetToken,
		"resetExpiresAt":    u.ResetExpiresAt.UnixMilli(),
		"createdAt": ts,
		"updatedAt": ts,
		"version":   1,
		"gsi1pk":    store.UserPK(u.ID),
		"gsi1sk":    store.UserEntityGSI1SK(ts),
		"gsi2pk":    store.NickGSI2PK(u.Nickname),
		"gsi2sk":    store.UserProfileSK(u.ID),
		"gsi3pk":    store.EmailGSI3PK(u.EmailLower),
		"gsi3sk":    store.UserProfileSK(u.ID),
	}
}

func fromItem(it store.Item) *User {
	u := &User{
		ID:           asString(it["id"]),
		Email:        asString(it["email"]),
		EmailLower:   asString(it["emailLower"]),
		Nickname:     asString(it["nickname"]),
		PasswordHash: asString(it["passwordHash"]),
		Country:      asString(it["country"]),
		Status:       asString(it["status"]),
		Role:         asString(it["role"]),
		ConfirmToken: asString(it["confirmToken"]),
		ResetToken:   asString(it["resetToken"]),
	}

	u.BirthDate = msToTime(it["birthDate"])
	u.PasswordUpdatedAt = msToTime(it["passwordUpdatedAt"])
	u.ConfirmExpiresAt = msToTime(it["confirmExpiresAt"])
	u.ResetExpiresAt = msToTime(it["resetExpiresAt"])
	u.CreatedAt = msToTime(it["createdAt"])
	u.UpdatedAt = msToTime(it["updatedAt"])

	return u
}

func asString(v any) string {
	s, _ := v.(string)

	return s
}

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
	switch n := v.(type) {
	case int64:
		return time.UnixMilli(n)
	case int32:
		return time.UnixMilli(int64(n))
	case int:
		return time.UnixMilli(int64(n))
	case float64:
		return time.UnixMilli(int64(n))
	default:
		return time.Time{}
	}
}

// Signup creates a user, a transactional email uniqueness lock, and the
// nickname GSI projection (part of the profile row) in one TransactWrite.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*User, error) {
	now := s.now()

	if err := validateSignup(in, now); err != nil {
		return nil, err
	}

	emailLower := strings.ToLower(in.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, apperr.InternalError{Err: err}
	}

	u := &User{
		ID:                uuid.New().String(),
		Email:             in.Email,
		EmailLower:        emailLower,
		Nickname:          in.Nickname,
		PasswordHash:      string(hash),
		Country:           in.Country,
		BirthDate:         in.BirthDate,
		Status:            StatusPendingConfirmation,
		Role:              RoleMember,
		PasswordUpdatedAt: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	confirmToken := uuid.New().String()
	u.ConfirmToken = confirmToken
	u.ConfirmExpiresAt = now.Add(72 * time.Hour)

	profileItem := toItem(u)

	lockItem := store.Item{
		"pk":        store.EmailLockPK(emailLower),
		"sk":        store.EmailLockSK(),
		"type":      "EmailLock",
		"userId":    u.ID,
		"createdAt": now.UnixMilli(),
		"updatedAt": now.UnixMilli(),
	}

	ops := []store.WriteOp{
		{Kind: store.WritePut, PK: profileItem.PK(), SK: profileItem.SK(), Item: profileItem},
		{
			Kind: store.WritePut, PK: lockItem.PK(), SK: lockItem.SK(), Item: lockItem,
			Condition: &store.Condition{Field: "pk", MustNotExist: true},
		},
	}

	if err := s.Store.TransactWrite(ctx, ops); err != nil {
		if err == store.ErrConflict {
			return nil, apperr.ConflictError{EntityType: "User", Code: "email_in_use", Message: "email already in use"}
		}

		return nil, err
	}

	if s.Mailer != nil {
		_ = s.Mailer.Enqueue(ctx, mailer.Message{
			To:       u.Email,
			Template: "confirm_email",
			Data:     map[string]string{"token": confirmToken},
		})
	}

	return u, nil
}

// ConfirmEmail verifies the single-use confirm token and flips status to active.
func (s *Service) ConfirmEmail(ctx context.Context, userID, token string) error {
	it, err := s.Store.Get(ctx, store.UserPK(userID), store.UserProfileSK(userID))
	if err != nil {
		if err == store.ErrNotFound {
			return apperr.NewNotFound("User", "user_not_found")
		}

		return err
	}

	u := fromItem(it)

	if u.ConfirmToken == "" || u.ConfirmToken != token {
		return apperr.ValidationError{Code: "invalid_token", Message: "invalid confirmation token"}
	}

	if s.now().After(u.ConfirmExpiresAt) {
		return apperr.GoneError{Code: "token_expired", Message: "confirmation token has expired"}
	}

	_, err = s.Store.Update(ctx, it.PK(), it.SK(), map[string]any{
		"status":       StatusActive,
		"confirmToken": "",
		"updatedAt":    s.now().UnixMilli(),
	}, nil)

	return err
}

// Login verifies the password and, on success, issues an access token.
func (s *Service) Login(ctx context.Context, ip, email, password string) (*User, string, error) {
	emailLower := strings.ToLower(email)

	locked, err := s.checkLockout(ctx, ip, emailLower)
	if err != nil {
		return nil, "", err
	}

	lockedErr := apperr.TooManyRequestsError{Code: "login_locked", Message: "too many failed login attempts, try again later"}

	if locked {
		return nil, "", lockedErr
	}

	items, _, err := s.Store.Query(ctx, store.QueryInput{
		Index: store.IndexGSI3,
		PK:    store.EmailGSI3PK(emailLower),
		Limit: 1,
	})
	if err != nil {
		return nil, "", err
	}

	invalid := apperr.UnauthorizedError{Code: "invalid_credentials", Message: "invalid email or password"}

	if len(items) == 0 {
		if s.recordFailure(ctx, ip, emailLower) {
			return nil, "", lockedErr
		}

		return nil, "", invalid
	}

	u := fromItem(items[0])

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		if s.recordFailure(ctx, ip, emailLower) {
			return nil, "", lockedErr
		}

		return nil, "", invalid
	}

	principal := &identity.Principal{Sub: u.ID, Provider: "local", Email: u.Email, Role: u.Role, Nickname: u.Nickname}

	token, err := s.Issuer.Issue(principal)
	if err != nil {
		return nil, "", apperr.InternalError{Err: err}
	}

	return u, token, nil
}

// checkLockout reports whether ip or emailLower has already crossed its
// failed-login threshold in the current window, without recording a new
// attempt — enforced ahead of the password comparison so a locked-out caller
// can no longer keep guessing once past the threshold.
func (s *Service) checkLockout(ctx context.Context, ip, emailLower string) (bool, error) {
	if s.Lockout == nil {
		return false, nil
	}

	if ip != "" {
		locked, err := s.peekLockout(ctx, "ip:"+ip, 10, time.Minute)
		if err != nil || locked {
			return locked, err
		}
	}

	return s.peekLockout(ctx, "email:"+emailLower, 5, time.Minute)
}

func (s *Service) peekLockout(ctx context.Context, key string, threshold int, window time.Duration) (bool, error) {
	// ratelimit.LoginLockout.RecordFailure buckets against the real wall
	// clock (it isn't injectable), so the peek must truncate the same way
	// rather than against s.now(), or it would never find the row the last
	// RecordFailure call wrote under a test's fixed clock.
	pk := store.LoginAttemptPK(key)
	sk := store.LoginAttemptSK(time.Now().Truncate(window).Unix())

	it, err := s.Store.Get(ctx, pk, sk)
	if err != nil {
		if err == store.ErrNotFound {
			return false, nil
		}

		return false, err
	}

	return toInt64(it["count"]) >= int64(threshold), nil
}

// recordFailure increments both counters and reports whether either one just
// crossed its threshold, so the caller can act on the lockout instead of
// discarding it.
func (s *Service) recordFailure(ctx context.Context, ip, emailLower string) (lockedOut bool) {
	if s.Lockout == nil {
		return false
	}

	if ip != "" {
		locked, err := s.Lockout.RecordFailure(ctx, "ip:"+ip, 10, time.Minute)
		if err != nil {
			s.Logger.Warnf("record login failure for ip: %v", err)
		} else if locked {
			lockedOut = true
		}
	}

	locked, err := s.Lockout.RecordFailure(ctx, "email:"+emailLower, 5, time.Minute)
	if err != nil {
		s.Logger.Warnf("record login failure for email: %v", err)
	} else if locked {
		lockedOut = true
	}

	return lockedOut
}

// RequestPasswordReset always returns nil (enumeration resistance); it only
// enqueues mail and stores a reset token when the user exists and is active.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	emailLower := strings.ToLower(email)

	items, _, err := s.Store.Query(ctx, store.QueryInput{Index: store.IndexGSI3, PK: store.EmailGSI3PK(emailLower), Limit: 1})
	if err != nil {
		return err
	}

	if len(items) == 0 {
		return nil
	}

	u := fromItem(items[0])

	if u.Status != StatusActive {
		return nil
	}

	resetToken := uuid.New().String()
	now := s.now()

	_, err = s.Store.Update(ctx, items[0].PK(), items[0].SK(), map[string]any{
		"resetToken":     resetToken,
		"resetExpiresAt": now.Add(time.Hour).UnixMilli(),
		"updatedAt":      now.UnixMilli(),
	}, nil)
	if err != nil {
		return err
	}

	if s.Mailer != nil {
		_ = s.Mailer.Enqueue(ctx, mailer.Message{To: u.Email, Template: "password_reset", Data: map[string]string{"token": resetToken}})
	}

	return nil
}

// ResetPassword verifies the reset token and rotates the password hash.
func (s *Service) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	emailLower := strings.ToLower(email)

	items, _, err := s.Store.Query(ctx, store.QueryInput{Index: store.IndexGSI3, PK: store.EmailGSI3PK(emailLower), Limit: 1})
	if err != nil {
		return err
	}

	if len(items) == 0 {
		return apperr.ValidationError{Code: "invalid_token", Message: "invalid reset token"}
	}

	u := fromItem(items[0])

	if u.ResetToken == "" || u.ResetToken != token {
		return apperr.ValidationError{Code: "invalid_token", Message: "invalid reset token"}
	}

	if s.now().After(u.ResetExpiresAt) {
		return apperr.GoneError{Code: "token_expired", Message: "reset token has expired"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return apperr.InternalError{Err: err}
	}

	now := s.now()

	_, err = s.Store.Update(ctx, items[0].PK(), items[0].SK(), map[string]any{
		"passwordHash":      string(hash),
		"passwordUpdatedAt": now.UnixMilli(),
		"resetToken":        "",
		"updatedAt":         now.UnixMilli(),
	}, nil)

	return err
}

// GetProfile returns the owner's profile.
func (s *Service) GetProfile(ctx context.Context, userID string) (*User, error) {
	it, err := s.Store.Get(ctx, store.UserPK(userID), store.UserProfileSK(userID))
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NewNotFound("User", "user_not_found")
		}

		return nil, err
	}

	return fromItem(it), nil
}

// UpdateProfile applies whitelisted field updates for the owner.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*User, error) {
	setOps := map[string]any{"updatedAt": s.now().UnixMilli()}

	if upd.Nickname != nil {
		if l := len(*upd.Nickname); l < 1 || l > 32 {
			return nil, apperr.ValidationError{Code: "invalid_nickname", Field: "nickname", Message: "nickname must be 1-32 characters"}
		}

		setOps["nickname"] = *upd.Nickname
		setOps["gsi2pk"] = store.NickGSI2PK(*upd.Nickname)
	}

	if upd.Country != nil {
		if !isAllowedCountry(*upd.Country) {
			return nil, apperr.ValidationError{Code: "invalid_country", Field: "country", Message: "country is not in the allowed list"}
		}

		setOps["country"] = *upd.Country
	}

	it, err := s.Store.Update(ctx, store.UserPK(userID), store.UserProfileSK(userID), setOps, nil)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NewNotFound("User", "user_not_found")
		}

		return nil, err
	}

	return fromItem(it), nil
}

// IsEmailAvailable reports exact presence via the GSI3 projection.
func (s *Service) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	items, _, err := s.Store.Query(ctx, store.QueryInput{Index: store.IndexGSI3, PK: store.EmailGSI3PK(strings.ToLower(email)), Limit: 1})
	if err != nil {
		return false, err
	}

	return len(items) == 0, nil
}

// IsNicknameAvailable reports exact presence via the GSI2 projection.
func (s *Service) IsNicknameAvailable(ctx context.Context, nickname string) (bool, error) {
	items, _, err := s.Store.Query(ctx, store.QueryInput{Index: store.IndexGSI2, PK: store.NickGSI2PK(nickname), Limit: 1})
	if err != nil {
		return false, err
	}

	return len(items) == 0, nil
}
