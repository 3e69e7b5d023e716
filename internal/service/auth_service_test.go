package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Zadjehi/satisf-exercice/internal/authz"
	"github.com/Zadjehi/satisf-exercice/internal/config"
	"github.com/Zadjehi/satisf-exercice/internal/models"
	"github.com/Zadjehi/satisf-exercice/internal/repository"
	"github.com/Zadjehi/satisf-exercice/internal/security"
)

type fakeUserStore struct {
	users  map[string]models.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]models.User{}, nextID: 1}
}

func (f *fakeUserStore) Create(_ context.Context, user models.User) (int64, error) {
	user.ID = f.nextID
	f.nextID++
	f.users[user.Username] = user
	return user.ID, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) List(_ context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserStore) Update(_ context.Context, user models.User) error {
	for name, u := range f.users {
		if u.ID == user.ID {
			delete(f.users, name)
			f.users[user.Username] = user
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id int64, hash []byte) error {
	for name, u := range f.users {
		if u.ID == id {
			u.PasswordHash = hash
			f.users[name] = u
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (f *fakeUserStore) TouchLastLogin(_ context.Context, id int64) error { return nil }

func (f *fakeUserStore) ListActiveByRoles(_ context.Context, roles []string) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if !u.Active {
			continue
		}
		for _, r := range roles {
			if string(u.Role) == r {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

type fakeSessionStore struct {
	sessions map[string]models.Session
	deleted  []string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]models.Session{}}
}

func (f *fakeSessionStore) Create(_ context.Context, s models.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id string) error {
	delete(f.sessions, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSessionStore) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for id, s := range f.sessions {
		if s.ExpiresAt.Before(time.Now()) {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

type fakeAuditStore struct {
	entries []models.AuditEntry
}

func (f *fakeAuditStore) Record(_ context.Context, e models.AuditEntry) error {
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAuditStore) List(_ context.Context, limit, offset int) ([]models.AuditEntry, error) {
	return f.entries, nil
}

func (f *fakeAuditStore) Count(_ context.Context) (int64, error) {
	return int64(len(f.entries)), nil
}

func testConfig() *config.AppConfig {
	cfg := &config.AppConfig{}
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.TokenTTL = time.Hour
	cfg.Security.SessionTTL = time.Hour
	cfg.SuperAdmin.Username = "root-admin"
	cfg.SuperAdmin.Password = "RootAdmin#2024"
	cfg.SuperAdmin.Role = "SuperAdmin"
	return cfg
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserStore, *fakeSessionStore, *fakeAuditStore) {
	t.Helper()
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	audit := &fakeAuditStore{}
	auditor := NewAuditor(audit, zerolog.Nop())
	svc := NewAuthService(users, sessions, auditor, testConfig(), zerolog.Nop())
	return svc, users, sessions, audit
}

func seedUser(t *testing.T, users *fakeUserStore, username, password string, role authz.Role, active bool) models.User {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	id, err := users.Create(context.Background(), models.User{
		Username:     username,
		PasswordHash: hash,
		LastName:     "Kone",
		FirstName:    "Awa",
		Role:         role,
		Active:       active,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	u, _ := users.GetByID(context.Background(), id)
	return u
}

func TestLoginSuccess(t *testing.T) {
	svc, users, sessions, audit := newTestAuthService(t)
	seedUser(t, users, "akone", "Valid#Pass1", authz.RoleQualityManager, true)

	res, err := svc.Login(context.Background(), LoginInput{
		Username: "akone", Password: "Valid#Pass1", IPAddress: "10.0.0.1", UserAgent: "test",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token == "" {
		t.Error("expected a token")
	}
	if res.SessionID == "" {
		t.Error("expected a session id")
	}
	if res.Privileged {
		t.Error("stored user must not be privileged")
	}
	if _, ok := sessions.sessions[res.SessionID]; !ok {
		t.Error("session was not persisted")
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != "login" {
		t.Errorf("expected one login audit entry, got %v", audit.entries)
	}

	claims, err := security.VerifyToken(res.Token, "test-secret")
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.Username != "akone" || claims.Role != string(authz.RoleQualityManager) {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLoginEnumerationResistance(t *testing.T) {
	svc, users, _, _ := newTestAuthService(t)
	seedUser(t, users, "akone", "Valid#Pass1", authz.RoleQualityManager, true)

	_, errUnknown := svc.Login(context.Background(), LoginInput{Username: "nobody", Password: "whatever1!"})
	_, errWrong := svc.Login(context.Background(), LoginInput{Username: "akone", Password: "wrong-pass1!"})

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v", errUnknown)
	}
	if !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Errorf("messages differ: %q vs %q", errUnknown, errWrong)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, users, _, _ := newTestAuthService(t)
	seedUser(t, users, "akone", "Valid#Pass1", authz.RoleQualityManager, false)

	_, err := svc.Login(context.Background(), LoginInput{Username: "akone", Password: "Valid#Pass1"})
	if !errors.Is(err, ErrUserDisabled) {
		t.Errorf("got %v, want ErrUserDisabled", err)
	}
}

func TestLoginSuperAdmin(t *testing.T) {
	svc, _, sessions, audit := newTestAuthService(t)

	res, err := svc.Login(context.Background(), LoginInput{Username: "root-admin", Password: "RootAdmin#2024"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !res.Privileged {
		t.Error("expected privileged result")
	}
	if res.SessionID != "" {
		t.Error("privileged identity must not get a session")
	}
	if len(sessions.sessions) != 0 {
		t.Error("no session row should be written")
	}
	if res.User.ID != 0 {
		t.Errorf("privileged identity id = %d, want 0", res.User.ID)
	}
	if len(audit.entries) != 0 {
		t.Error("privileged login must not write an audit row")
	}

	claims, err := security.VerifyToken(res.Token, "test-secret")
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.Role != string(authz.RoleSuperAdmin) {
		t.Errorf("role claim = %q", claims.Role)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	svc, users, _, _ := newTestAuthService(t)
	seedUser(t, users, "akone", "Valid#Pass1", authz.RoleQualityManager, true)

	res, err := svc.Login(context.Background(), LoginInput{Username: "akone", Password: "Valid#Pass1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), res.SessionID, res.User.ID, "", ""); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := svc.Logout(context.Background(), res.SessionID, res.User.ID, "", ""); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if err := svc.Logout(context.Background(), "", 0, "", ""); err != nil {
		t.Fatalf("logout without session: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, users, _, _ := newTestAuthService(t)
	u := seedUser(t, users, "akone", "Valid#Pass1", authz.RoleQualityManager, true)

	err := svc.ChangePassword(context.Background(), ChangePasswordInput{
		UserID: u.ID, OldPassword: "Valid#Pass1", NewPassword: "Next#Pass2", ConfirmPassword: "Next#Pass2",
	})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "akone", "Next#Pass2"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "akone", "Valid#Pass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still works: %v", err)
	}
}

func TestChangePasswordRejections(t *testing.T) {
	svc, users, _, _ := newTestAuthService(t)
	u := seedUser(t, users, "akone", "Valid#Pass1", authz.RoleQualityManager, true)

	cases := []struct {
		name  string
		input ChangePasswordInput
	}{
		{"mismatch", ChangePasswordInput{UserID: u.ID, OldPassword: "Valid#Pass1", NewPassword: "Next#Pass2", ConfirmPassword: "Other#Pass3"}},
		{"weak", ChangePasswordInput{UserID: u.ID, OldPassword: "Valid#Pass1", NewPassword: "abc", ConfirmPassword: "abc"}},
		{"wrong old", ChangePasswordInput{UserID: u.ID, OldPassword: "nope", NewPassword: "Next#Pass2", ConfirmPassword: "Next#Pass2"}},
		{"empty", ChangePasswordInput{UserID: u.ID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ChangePassword(context.Background(), tc.input)
			if _, ok := AsValidationError(err); !ok {
				t.Errorf("got %v, want validation error", err)
			}
		})
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc, users, _, _ := newTestAuthService(t)
	seedUser(t, users, "taken", "Valid#Pass1", authz.RoleAdministrator, true)

	valid := CreateUserInput{
		Username: "akone", Password: "Valid#Pass1",
		LastName: "Kone", FirstName: "Awa",
		Email: "akone@example.com", Role: string(authz.RoleQualityManager),
	}

	id, err := svc.CreateUser(context.Background(), valid, 1, "", "")
	if err != nil {
		t.Fatalf("create valid user: %v", err)
	}
	if id == 0 {
		t.Error("expected a nonzero id")
	}

	mutate := func(fn func(*CreateUserInput)) CreateUserInput {
		in := valid
		in.Username = "another"
		fn(&in)
		return in
	}

	cases := []struct {
		name  string
		input CreateUserInput
	}{
		{"duplicate username", mutate(func(in *CreateUserInput) { in.Username = "taken" })},
		{"short username", mutate(func(in *CreateUserInput) { in.Username = "ab" })},
		{"bad username chars", mutate(func(in *CreateUserInput) { in.Username = "a b!" })},
		{"weak password", mutate(func(in *CreateUserInput) { in.Password = "abc" })},
		{"bad email", mutate(func(in *CreateUserInput) { in.Email = "not-an-email" })},
		{"short last name", mutate(func(in *CreateUserInput) { in.LastName = "K" })},
		{"superadmin role", mutate(func(in *CreateUserInput) { in.Role = string(authz.RoleSuperAdmin) })},
		{"unknown role", mutate(func(in *CreateUserInput) { in.Role = "Wizard" })},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateUser(context.Background(), tc.input, 1, "", ""); err == nil {
				t.Error("expected an error")
			} else if _, ok := AsValidationError(err); !ok {
				t.Errorf("got %v, want validation error", err)
			}
		})
	}
}

func TestUpdateUserDeactivate(t *testing.T) {
	svc, users, _, _ := newTestAuthService(t)
	u := seedUser(t, users, "akone", "Valid#Pass1", authz.RoleQualityManager, true)

	active := false
	if err := svc.UpdateUser(context.Background(), u.ID, UpdateUserInput{Active: &active}, 1, "", ""); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "akone", "Valid#Pass1"); !errors.Is(err, ErrUserDisabled) {
		t.Errorf("got %v, want ErrUserDisabled after deactivation", err)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	svc, _, sessions, _ := newTestAuthService(t)
	sessions.sessions["ses_live"] = models.Session{ID: "ses_live", ExpiresAt: time.Now().Add(time.Hour)}
	sessions.sessions["ses_old"] = models.Session{ID: "ses_old", ExpiresAt: time.Now().Add(-time.Hour)}

	n, err := svc.PurgeExpiredSessions(context.Background())
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d, want 1", n)
	}
	if _, ok := sessions.sessions["ses_live"]; !ok {
		t.Error("live session was purged")
	}
}
