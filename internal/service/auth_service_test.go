package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/platif-ai/spbu-pos/internal/config"
	"github.com/platif-ai/spbu-pos/internal/model"
	"github.com/platif-ai/spbu-pos/internal/repository"
	"github.com/platif-ai/spbu-pos/internal/utils"
)

type fakeAccounts struct {
	byEmail map[string]model.Account
	created []repository.NewAccount
}

func newFakeAccounts(accs ...model.Account) *fakeAccounts {
	f := &fakeAccounts{byEmail: map[string]model.Account{}}
	for _, a := range accs {
		f.byEmail[a.Email] = a
	}
	return f
}

func (f *fakeAccounts) Create(_ context.Context, in repository.NewAccount, cost int) (model.Account, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, ok := f.byEmail[email]; ok {
		return model.Account{}, repository.ErrEmailExists
	}
	hash, _ := utils.HashPassword(in.Password, cost)
	a := model.Account{ID: "id-" + email, Name: in.Name, Email: email, PasswordHash: hash, Role: in.Role, IsApproved: in.Approved}
	f.byEmail[email] = a
	f.created = append(f.created, in)
	return a, nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (model.Account, error) {
	a, ok := f.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return model.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (model.Account, error) {
	for _, a := range f.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Account{}, repository.ErrNotFound
}

type fakeTokens struct {
	owner   map[string]string
	revoked map[string]bool
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{owner: map[string]string{}, revoked: map[string]bool{}}
}

func (f *fakeTokens) StoreRefresh(_ context.Context, userID, hash string, _ time.Time) error {
	f.owner[hash] = userID
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string) (string, error) {
	id, ok := f.owner[hash]
	if !ok || f.revoked[hash] {
		return "", repository.ErrNotFound
	}
	return id, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	f.revoked[hash] = true
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID string) error {
	for h, id := range f.owner {
		if id == userID {
			f.revoked[h] = true
		}
	}
	return nil
}

func testConfig() config.Config {
	return config.Config{JWTSecret: "test-secret", AccessTTLMin: 5, RefreshTTLDays: 1, BcryptCost: bcrypt.MinCost}
}

func account(email, password, role string, approved bool) model.Account {
	hash, _ := utils.HashPassword(password, bcrypt.MinCost)
	return model.Account{ID: "id-" + email, Name: "User " + email, Email: email, PasswordHash: hash, Role: role, IsApproved: approved}
}

func TestAuthenticate(t *testing.T) {
	accounts := newFakeAccounts(
		account("admin@spbu.id", "rahasia", model.RoleAdmin, true),
		account("op@spbu.id", "rahasia", model.RoleOperator, true),
		account("baru@spbu.id", "rahasia", model.RoleOperator, false),
	)
	svc := NewAuthService(testConfig(), accounts, newFakeTokens())

	tests := []struct {
		name, email, password, role string
		wantMsg                     string
	}{
		{"no role", "admin@spbu.id", "rahasia", "", MsgSelectRole},
		{"unknown email", "x@spbu.id", "rahasia", "admin", MsgEmailNotFound},
		{"wrong password", "admin@spbu.id", "salah", "admin", MsgWrongPassword},
		{"admin as operator", "admin@spbu.id", "rahasia", "operator", "Akun ini tidak terdaftar sebagai OPERATOR."},
		{"operator as admin", "op@spbu.id", "rahasia", "admin", "Akun ini tidak terdaftar sebagai ADMIN."},
		{"not approved", "baru@spbu.id", "rahasia", "operator", MsgNotApproved},
		{"admin ok", "Admin@SPBU.id", "rahasia", "admin", ""},
		{"operator ok", "op@spbu.id", "rahasia", "OPERATOR", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, err := svc.Authenticate(context.Background(), tc.email, tc.password, tc.role)
			if tc.wantMsg == "" {
				if err != nil {
					t.Fatalf("Expected success, got %v", err)
				}
				if a.Email != strings.ToLower(tc.email) {
					t.Errorf("Expected %s, got %s", tc.email, a.Email)
				}
				return
			}
			var le *LoginError
			if !errors.As(err, &le) {
				t.Fatalf("Expected LoginError, got %v", err)
			}
			if le.Message != tc.wantMsg {
				t.Errorf("Expected %q, got %q", tc.wantMsg, le.Message)
			}
		})
	}
}

func TestSignup(t *testing.T) {
	accounts := newFakeAccounts(account("ada@spbu.id", "rahasia", model.RoleOperator, true))
	svc := NewAuthService(testConfig(), accounts, newFakeTokens())

	tests := []struct {
		name    string
		in      SignupInput
		wantMsg string
	}{
		{"no role", SignupInput{Name: "A", Email: "a@spbu.id", Password: "rahasia"}, MsgSelectRole},
		{"no name", SignupInput{Name: "  ", Email: "a@spbu.id", Password: "rahasia", Role: "operator"}, MsgNameRequired},
		{"no email", SignupInput{Name: "A", Password: "rahasia", Role: "operator"}, MsgEmailRequired},
		{"short password", SignupInput{Name: "A", Email: "a@spbu.id", Password: "12345", Role: "operator"}, MsgPasswordTooShort},
		{"duplicate", SignupInput{Name: "A", Email: "ADA@spbu.id", Password: "rahasia", Role: "admin"}, MsgEmailTaken},
	}
	for _, tc := range tests {
		_, err := svc.Signup(context.Background(), tc.in)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Message != tc.wantMsg {
			t.Errorf("%s: expected %q, got %v", tc.name, tc.wantMsg, err)
		}
	}

	a, err := svc.Signup(context.Background(), SignupInput{Name: "Budi", Email: "budi@spbu.id", Password: "123456", Role: "Operator"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if a.IsApproved || a.Role != model.RoleOperator {
		t.Errorf("Expected an unapproved operator, got %+v", a)
	}
	if _, err := svc.Authenticate(context.Background(), "budi@spbu.id", "123456", "operator"); err == nil {
		t.Error("Expected unapproved signup to be refused at login")
	}
}

func TestEnsureAdmin(t *testing.T) {
	accounts := newFakeAccounts()
	svc := NewAuthService(testConfig(), accounts, newFakeTokens())
	ctx := context.Background()

	if created, err := svc.EnsureAdmin(ctx, "Admin", "", "x"); err != nil || created {
		t.Fatalf("Expected no-op without email, got %v %v", created, err)
	}
	created, err := svc.EnsureAdmin(ctx, "Admin", "root@spbu.id", "rahasia")
	if err != nil || !created {
		t.Fatalf("Expected admin to be created, got %v %v", created, err)
	}
	if created, _ := svc.EnsureAdmin(ctx, "Admin", "root@spbu.id", "rahasia"); created {
		t.Error("Expected second call to be a no-op")
	}
	if _, err := svc.Authenticate(ctx, "root@spbu.id", "rahasia", "admin"); err != nil {
		t.Errorf("Expected bootstrap admin to log in, got %v", err)
	}
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	a := account("op@spbu.id", "rahasia", model.RoleOperator, true)
	tokens := newFakeTokens()
	svc := NewAuthService(testConfig(), newFakeAccounts(a), tokens)
	ctx := context.Background()

	pair, err := svc.IssueTokens(ctx, a)
	if err != nil {
		t.Fatalf("IssueTokens: %v", err)
	}
	claims, err := utils.ParseAccessToken("test-secret", pair.Access.Token)
	if err != nil || claims.Subject != a.ID || claims.Role != model.RoleOperator {
		t.Fatalf("Unexpected access token claims %+v %v", claims, err)
	}

	_, next, err := svc.Refresh(ctx, pair.Refresh.Raw)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, _, err := svc.Refresh(ctx, pair.Refresh.Raw); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected rotated token to be refused, got %v", err)
	}
	if err := svc.Logout(ctx, "", next.Refresh.Raw); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, _, err := svc.Refresh(ctx, next.Refresh.Raw); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected logged out token to be refused, got %v", err)
	}
}
