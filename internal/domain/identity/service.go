package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hearcare/hearcare/internal/domain/auditlog"
	"github.com/hearcare/hearcare/internal/platform/auth"
	"github.com/hearcare/hearcare/internal/platform/sms"
)

var (
	// ErrInvalidCredentials covers unknown usernames, wrong passwords and
	// deactivated accounts so responses don't leak which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOTP         = errors.New("invalid or expired code")
)

type Service struct {
	repo      Repository
	issuer    *auth.TokenIssuer
	sender    sms.Sender
	templates *sms.TemplateEngine
	audit     *auditlog.Service
	otpTTL    time.Duration
	logger    zerolog.Logger
}

func NewService(repo Repository, issuer *auth.TokenIssuer, sender sms.Sender,
	templates *sms.TemplateEngine, audit *auditlog.Service, otpTTL time.Duration,
	logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		issuer:    issuer,
		sender:    sender,
		templates: templates,
		audit:     audit,
		otpTTL:    otpTTL,
		logger:    logger,
	}
}

// Login checks the password and sends a one-time code over SMS. No token
// is issued until the code is verified.
func (s *Service) Login(ctx context.Context, username, password string) error {
	user, err := s.authenticate(ctx, username, password)
	if err != nil {
		return err
	}
	return s.issueOTP(ctx, user, PurposeLogin, "otp-login")
}

// VerifyOTP exchanges a valid login code for a JWT.
func (s *Service) VerifyOTP(ctx context.Context, username, code string) (string, *User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidOTP
		}
		return "", nil, err
	}
	if err := s.checkOTP(ctx, user, PurposeLogin, code); err != nil {
		return "", nil, err
	}

	locations := make([]string, 0, len(user.LocationIDs))
	for _, id := range user.LocationIDs {
		locations = append(locations, id.String())
	}
	token, err := s.issuer.Issue(user.ID.String(), user.Username, user.Roles, locations)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	s.logger.Info().Str("username", username).Msg("user logged in")
	return token, user, nil
}

// ForgotPasswordInit sends a password-reset code to the account's phone.
// Unknown usernames return nil so the endpoint can't be used to probe
// accounts.
func (s *Service) ForgotPasswordInit(ctx context.Context, username string) error {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return err
	}
	if !user.Active {
		return nil
	}
	return s.issueOTP(ctx, user, PurposePasswordReset, "password-reset")
}

// ResetPassword sets a new password after verifying the reset code.
func (s *Service) ResetPassword(ctx context.Context, username, code, newPassword string) error {
	if len(newPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidOTP
		}
		return err
	}
	if err := s.checkOTP(ctx, user, PurposePasswordReset, code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	s.audit.Record(ctx, "users", user.ID.String(), auditlog.ActionUpdate, user.ID.String(),
		nil, map[string]string{"event": "password_reset"})
	return nil
}

func (s *Service) authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) issueOTP(ctx context.Context, user *User, purpose, templateID string) error {
	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}
	if err := s.repo.CreateOTP(ctx, &OTP{
		UserID:    user.ID,
		Purpose:   purpose,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().Add(s.otpTTL),
	}); err != nil {
		return err
	}

	content, err := s.templates.Render(templateID, map[string]string{
		"code":    code,
		"minutes": fmt.Sprintf("%d", int(s.otpTTL.Minutes())),
	})
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, user.PhoneNumber, content); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

func (s *Service) checkOTP(ctx context.Context, user *User, purpose, code string) error {
	otp, err := s.repo.LatestOTP(ctx, user.ID, purpose)
	if err != nil {
		return err
	}
	if otp == nil || time.Now().After(otp.ExpiresAt) {
		return ErrInvalidOTP
	}
	if err := bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)); err != nil {
		return ErrInvalidOTP
	}
	return s.repo.ConsumeOTP(ctx, otp.ID)
}

// generateOTP returns a 6-digit code from crypto/rand.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// CreateUser registers a staff account with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, u *User, password, actorID string) error {
	if u.Username == "" {
		return errors.New("username is required")
	}
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if u.PhoneNumber == "" {
		return errors.New("phone_number is required")
	}
	for _, role := range u.Roles {
		if !auth.ValidRole(role) {
			return fmt.Errorf("unknown role %q", role)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	u.Active = true
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return err
	}
	s.audit.Record(ctx, "users", u.ID.String(), auditlog.ActionCreate, actorID, nil, u)
	return nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.ListUsers(ctx, limit, offset)
}

func (s *Service) UpdateUser(ctx context.Context, u *User, actorID string) error {
	for _, role := range u.Roles {
		if !auth.ValidRole(role) {
			return fmt.Errorf("unknown role %q", role)
		}
	}
	old, err := s.repo.GetUserByID(ctx, u.ID)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return err
	}
	s.audit.Record(ctx, "users", u.ID.String(), auditlog.ActionUpdate, actorID, old, u)
	return nil
}

// DeactivateUser disables login without deleting history.
func (s *Service) DeactivateUser(ctx context.Context, id uuid.UUID, actorID string) error {
	if err := s.repo.SetUserActive(ctx, id, false); err != nil {
		return err
	}
	s.audit.Record(ctx, "users", id.String(), auditlog.ActionUpdate, actorID,
		map[string]bool{"active": true}, map[string]bool{"active": false})
	return nil
}
