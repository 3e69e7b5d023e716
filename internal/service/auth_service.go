package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Zadjehi/satisf-exercice/internal/authz"
	"github.com/Zadjehi/satisf-exercice/internal/config"
	"github.com/Zadjehi/satisf-exercice/internal/ids"
	"github.com/Zadjehi/satisf-exercice/internal/models"
	"github.com/Zadjehi/satisf-exercice/internal/repository"
	"github.com/Zadjehi/satisf-exercice/internal/security"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,50}$`)
	namePattern     = regexp.MustCompile(`^[\p{L}\s'-]{2,100}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

type AuthService struct {
	users    UserStore
	sessions SessionStore
	auditor  *Auditor
	cfg      *config.AppConfig
	log      zerolog.Logger
}

func NewAuthService(users UserStore, sessions SessionStore, auditor *Auditor, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		auditor:  auditor,
		cfg:      cfg,
		log:      log,
	}
}

type LoginInput struct {
	Username  string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginResult carries everything the login response needs. SessionID is empty
// for the privileged identity, which never gets a stored session.
type LoginResult struct {
	User       models.User
	Privileged bool
	Token      string
	SessionID  string
}

// Login authenticates either the configured privileged identity or a stored
// user, then mints a bearer token and (for stored users) a session record.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" {
		return LoginResult{}, validationFailed("username and password are required", nil)
	}

	if s.isSuperAdmin(input.Username, input.Password) {
		user := s.SuperAdminUser()
		token, err := security.IssueToken(s.cfg.Security.JWTSecret, user, s.cfg.Security.TokenTTL)
		if err != nil {
			return LoginResult{}, fmt.Errorf("issue token: %w", err)
		}
		s.log.Info().Str("username", user.Username).Msg("privileged identity logged in")
		return LoginResult{User: user, Privileged: true, Token: token}, nil
	}

	user, err := s.Authenticate(ctx, input.Username, input.Password)
	if err != nil {
		return LoginResult{}, err
	}

	token, err := security.IssueToken(s.cfg.Security.JWTSecret, user, s.cfg.Security.TokenTTL)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	session := models.Session{
		ID:        ids.NewSessionID(),
		UserID:    user.ID,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		ExpiresAt: time.Now().Add(s.cfg.Security.SessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return LoginResult{}, fmt.Errorf("create session: %w", err)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("touch last login failed")
	}

	s.auditor.Record(ctx, user.ID, "login", "login succeeded", input.IPAddress, input.UserAgent)

	return LoginResult{User: user, Token: token, SessionID: session.ID}, nil
}

// Authenticate verifies a stored user's credentials. Unknown usernames and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if !user.Active {
		return models.User{}, ErrUserDisabled
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return models.User{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) isSuperAdmin(username, password string) bool {
	sa := s.cfg.SuperAdmin
	return sa.Username != "" && username == sa.Username && password == sa.Password
}

// SuperAdminUser materializes the privileged identity from configuration.
// It has no row in the users table; ID 0 marks it everywhere.
func (s *AuthService) SuperAdminUser() models.User {
	return models.User{
		ID:        0,
		Username:  s.cfg.SuperAdmin.Username,
		LastName:  "Super",
		FirstName: "Admin",
		Role:      authz.Role(s.cfg.SuperAdmin.Role),
		Active:    true,
	}
}

// Logout destroys the presented session, if any. Missing or unknown ids are
// not errors.
func (s *AuthService) Logout(ctx context.Context, sessionID string, userID int64, ip, userAgent string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.auditor.Record(ctx, userID, "logout", "manual logout", ip, userAgent)
	return nil
}

type ChangePasswordInput struct {
	UserID          int64
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
	IPAddress       string
	UserAgent       string
}

func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	if input.OldPassword == "" || input.NewPassword == "" || input.ConfirmPassword == "" {
		return validationFailed("all password fields are required", nil)
	}
	if input.NewPassword != input.ConfirmPassword {
		return validationFailed("passwords do not match", nil)
	}
	if strength := security.CheckPasswordStrength(input.NewPassword); !strength.Valid {
		return validationFailed(security.StrengthMessage(strength), strength.Unmet)
	}

	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(input.OldPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return validationFailed("current password is incorrect", nil)
	}

	hash, err := security.HashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.auditor.Record(ctx, user.ID, "change_password", "password changed", input.IPAddress, input.UserAgent)
	return nil
}

type CreateUserInput struct {
	Username  string
	Password  string
	LastName  string
	FirstName string
	Email     string
	Role      string
}

func (s *AuthService) validateUserInput(input CreateUserInput, requirePassword bool) []string {
	var errs []string
	if !usernamePattern.MatchString(input.Username) {
		errs = append(errs, "username must be 3-50 characters of letters, digits, dots, hyphens or underscores")
	}
	if requirePassword {
		if strength := security.CheckPasswordStrength(input.Password); !strength.Valid {
			errs = append(errs, security.StrengthMessage(strength))
		}
	}
	if !namePattern.MatchString(input.LastName) {
		errs = append(errs, "last name must be 2-100 letters, spaces, hyphens or apostrophes")
	}
	if input.FirstName != "" && !namePattern.MatchString(input.FirstName) {
		errs = append(errs, "first name must be 2-100 letters, spaces, hyphens or apostrophes")
	}
	if input.Email != "" && !emailPattern.MatchString(input.Email) {
		errs = append(errs, "invalid email format")
	}
	if !authz.ValidAssignableRole(authz.Role(input.Role)) {
		errs = append(errs, "invalid role")
	}
	return errs
}

// CreateUser validates and persists a new account. Only assignable roles are
// accepted; SuperAdmin cannot be stored.
func (s *AuthService) CreateUser(ctx context.Context, input CreateUserInput, actorID int64, ip, userAgent string) (int64, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.LastName = strings.TrimSpace(input.LastName)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if errs := s.validateUserInput(input, true); len(errs) > 0 {
		return 0, validationFailed("invalid user data", errs)
	}

	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return 0, validationFailed("username already taken", nil)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return 0, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     input.Username,
		PasswordHash: hash,
		LastName:     input.LastName,
		FirstName:    input.FirstName,
		Role:         authz.Role(input.Role),
		Active:       true,
	}
	if input.Email != "" {
		user.Email = &input.Email
	}

	id, err := s.users.Create(ctx, user)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}

	s.auditor.Record(ctx, actorID, "create_user",
		fmt.Sprintf("user %s created with role %s", input.Username, input.Role), ip, userAgent)
	return id, nil
}

type UpdateUserInput struct {
	LastName  *string
	FirstName *string
	Email     *string
	Role      *string
	Active    *bool
}

func (s *AuthService) UpdateUser(ctx context.Context, id int64, input UpdateUserInput, actorID int64, ip, userAgent string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var errs []string
	if input.LastName != nil {
		trimmed := strings.TrimSpace(*input.LastName)
		if !namePattern.MatchString(trimmed) {
			errs = append(errs, "last name must be 2-100 letters, spaces, hyphens or apostrophes")
		}
		user.LastName = trimmed
	}
	if input.FirstName != nil {
		trimmed := strings.TrimSpace(*input.FirstName)
		if trimmed != "" && !namePattern.MatchString(trimmed) {
			errs = append(errs, "first name must be 2-100 letters, spaces, hyphens or apostrophes")
		}
		user.FirstName = trimmed
	}
	if input.Email != nil {
		trimmed := strings.TrimSpace(strings.ToLower(*input.Email))
		if trimmed == "" {
			user.Email = nil
		} else if !emailPattern.MatchString(trimmed) {
			errs = append(errs, "invalid email format")
		} else {
			user.Email = &trimmed
		}
	}
	if input.Role != nil {
		if !authz.ValidAssignableRole(authz.Role(*input.Role)) {
			errs = append(errs, "invalid role")
		}
		user.Role = authz.Role(*input.Role)
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	if len(errs) > 0 {
		return validationFailed("invalid user data", errs)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.auditor.Record(ctx, actorID, "update_user",
		fmt.Sprintf("user %d updated", id), ip, userAgent)
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) GetUser(ctx context.Context, id int64) (models.User, error) {
	return s.users.GetByID(ctx, id)
}

// PurgeExpiredSessions removes stale session rows and returns how many were
// deleted. Exposed as an admin action and invoked hourly by the scheduler.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}
