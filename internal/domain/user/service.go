// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/pkg/auth"
	"github.com/your-org/storefront-api/internal/pkg/email"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account is locked")
	ErrSessionRevoked     = errors.New("session has been revoked")
	ErrUnknownRole        = errors.New("unknown role")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// SessionStore tracks live refresh sessions and revoked access tokens
type SessionStore interface {
	SaveRefresh(ctx context.Context, jti string, userID uint, ttl time.Duration) error
	RefreshOwner(ctx context.Context, jti string) (uint, bool, error)
	RevokeRefresh(ctx context.Context, jti string) error
	DenyAccess(ctx context.Context, jti string, ttl time.Duration) error
	AccessDenied(ctx context.Context, jti string) (bool, error)
}

// Mailer sends account mail
type Mailer interface {
	SendTemporaryPassword(ctx context.Context, to string, data email.TemporaryPasswordData) error
}

// Service handles authentication and profile business logic
type Service struct {
	repo      Repository
	sessions  SessionStore
	jwt       *auth.JWTManager
	passwords *auth.PasswordManager
	mailer    Mailer
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewService creates a new user service
func NewService(repo Repository, sessions SessionStore, jwt *auth.JWTManager, passwords *auth.PasswordManager, mailer Mailer, log logrus.FieldLogger) *Service {
	return &Service{
		repo:      repo,
		sessions:  sessions,
		jwt:       jwt,
		passwords: passwords,
		mailer:    mailer,
		log:       log,
		now:       time.Now,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50,alphanum"`
	Email       string `json:"email" binding:"required,mailbox"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	FullName    string `json:"fullName" binding:"required,fullname"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,vnphone"`
	Address     string `json:"address" binding:"max=500"`
	Gender      Gender `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
}

// LoginRequest represents login credentials; Username may also be an email
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ChangePasswordRequest represents password change data
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72,nefield=OldPassword"`
}

// ForgotPasswordRequest asks for a temporary password by email
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,mailbox"`
}

// UpdateProfileRequest updates the editable profile fields
type UpdateProfileRequest struct {
	FullName    string `json:"fullName" binding:"required,fullname"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,vnphone"`
	Address     string `json:"address" binding:"max=500"`
	Gender      Gender `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
}

// Register creates a customer account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*Profile, error) {
	exists, err := s.repo.Exists(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		Address:      req.Address,
		Gender:       req.Gender,
		Roles:        []Role{{Name: RoleUser}},
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", u.ID).Info("user registered")
	return u.ToProfile(), nil
}

// Login verifies credentials and opens a refresh session
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*auth.TokenPair, error) {
	u, err := s.repo.FindByLogin(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := s.passwords.VerifyPassword(req.Password, u.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}
	if u.IsLocked {
		return nil, ErrAccountLocked
	}

	pair, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	if err := s.repo.TouchLogin(ctx, u.ID); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Warn("failed to record login time")
	}
	return pair, nil
}

// Refresh rotates a refresh session. The old refresh token stops working.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	owner, ok, err := s.sessions.RefreshOwner(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !ok || owner != claims.UserID {
		return nil, ErrSessionRevoked
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if u.IsLocked {
		return nil, ErrAccountLocked
	}

	if err := s.sessions.RevokeRefresh(ctx, claims.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke session: %w", err)
	}
	return s.issue(ctx, u)
}

// Logout invalidates the refresh session and, when given, the access token
// that made the call. A refresh token that is already gone still succeeds.
func (s *Service) Logout(ctx context.Context, refreshToken string, access *auth.Claims) error {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return err
	}
	if access != nil && access.UserID != claims.UserID {
		return fmt.Errorf("%w: token owner mismatch", auth.ErrInvalidToken)
	}

	if err := s.sessions.RevokeRefresh(ctx, claims.ID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	if access != nil && access.ExpiresAt != nil {
		ttl := access.ExpiresAt.Sub(s.now())
		if ttl > 0 {
			if err := s.sessions.DenyAccess(ctx, access.ID, ttl); err != nil {
				return fmt.Errorf("failed to revoke access token: %w", err)
			}
		}
	}

	s.log.WithField("user_id", claims.UserID).Info("user logged out")
	return nil
}

// Current re-reads the user behind a token. Locked or deleted users are
// treated as unauthenticated.
func (s *Service) Current(ctx context.Context, userID uint) (*Profile, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.IsLocked {
		return nil, ErrAccountLocked
	}
	return u.ToProfile(), nil
}

// UpdateProfile updates the caller's own profile
func (s *Service) UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*Profile, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.FullName = strings.TrimSpace(req.FullName)
	u.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	u.Address = req.Address
	u.Gender = req.Gender
	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u.ToProfile(), nil
}

// ChangePassword replaces the password after checking the current one
func (s *Service) ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.passwords.VerifyPassword(req.OldPassword, u.PasswordHash); err != nil {
		return ErrWrongPassword
	}
	hash, err := s.passwords.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, hash)
}

// ForgotPassword sets a random temporary password and mails it. Unknown
// addresses succeed silently so the endpoint cannot be used to probe accounts.
func (s *Service) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if errors.Is(err, ErrUserNotFound) {
		s.log.WithField("email", req.Email).Info("forgot-password for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	temp, err := s.passwords.GenerateTemporaryPassword()
	if err != nil {
		return err
	}
	hash, err := s.passwords.HashPassword(temp)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}

	return s.mailer.SendTemporaryPassword(ctx, u.Email, email.TemporaryPasswordData{
		TemplateData: email.TemplateData{UserName: u.FullName},
		Username:     u.Username,
		Password:     temp,
	})
}

// AccessRevoked reports whether an access token was invalidated by logout
func (s *Service) AccessRevoked(ctx context.Context, jti string) (bool, error) {
	return s.sessions.AccessDenied(ctx, jti)
}

func (s *Service) issue(ctx context.Context, u *User) (*auth.TokenPair, error) {
	pair, err := s.jwt.GeneratePair(u.ID, u.RoleNames())
	if err != nil {
		return nil, err
	}
	ttl := pair.RefreshExpiresAt.Sub(s.now())
	if err := s.sessions.SaveRefresh(ctx, pair.RefreshID, u.ID, ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return pair, nil
}
