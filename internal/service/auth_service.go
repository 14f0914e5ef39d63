package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/platif-ai/spbu-pos/internal/config"
	"github.com/platif-ai/spbu-pos/internal/model"
	"github.com/platif-ai/spbu-pos/internal/repository"
	"github.com/platif-ai/spbu-pos/internal/utils"
)

// AccountStore is the subset of repository.AccountRepo the auth flow needs.
type AccountStore interface {
	Create(ctx context.Context, in repository.NewAccount, cost int) (model.Account, error)
	GetByEmail(ctx context.Context, email string) (model.Account, error)
	GetByID(ctx context.Context, id string) (model.Account, error)
}

// TokenStore is the subset of repository.TokenRepo the auth flow needs.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// TokenPair is an access token plus the raw refresh token handed to the
// client.
type TokenPair struct {
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// AuthService implements login, signup and token rotation.
type AuthService struct {
	accounts       AccountStore
	tokens         TokenStore
	secret         string
	accessTTLMin   int
	refreshTTLDays int
	cost           int
}

func NewAuthService(cfg config.Config, accounts AccountStore, tokens TokenStore) *AuthService {
	return &AuthService{
		accounts:       accounts,
		tokens:         tokens,
		secret:         cfg.JWTSecret,
		accessTTLMin:   cfg.AccessTTLMin,
		refreshTTLDays: cfg.RefreshTTLDays,
		cost:           cfg.BcryptCost,
	}
}

// Authenticate checks email, password, selected role and approval, in that
// order, and returns a *LoginError carrying the message for the first check
// that fails.
func (s *AuthService) Authenticate(ctx context.Context, email, password, role string) (model.Account, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if !model.ValidRole(role) {
		return model.Account{}, &LoginError{MsgSelectRole}
	}
	a, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Account{}, &LoginError{MsgEmailNotFound}
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("load account: %w", err)
	}
	if !utils.VerifyPassword(a.PasswordHash, password) {
		return model.Account{}, &LoginError{MsgWrongPassword}
	}
	if a.Role != role {
		return model.Account{}, &LoginError{"Akun ini tidak terdaftar sebagai " + strings.ToUpper(role) + "."}
	}
	if !a.IsApproved {
		return model.Account{}, &LoginError{MsgNotApproved}
	}
	return a, nil
}

// SignupInput is the signup form.
type SignupInput struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

// Signup validates the form and creates an unapproved account.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (model.Account, error) {
	role := strings.ToLower(strings.TrimSpace(in.Role))
	switch {
	case !model.ValidRole(role):
		return model.Account{}, &ValidationError{MsgSelectRole}
	case strings.TrimSpace(in.Name) == "":
		return model.Account{}, &ValidationError{MsgNameRequired}
	case strings.TrimSpace(in.Email) == "":
		return model.Account{}, &ValidationError{MsgEmailRequired}
	case len(in.Password) < utils.MinPasswordLength:
		return model.Account{}, &ValidationError{MsgPasswordTooShort}
	case len(in.Password) > 72:
		return model.Account{}, &ValidationError{MsgPasswordTooLong}
	}
	a, err := s.accounts.Create(ctx, repository.NewAccount{
		Name: in.Name, Email: in.Email, Password: in.Password, Role: role,
	}, s.cost)
	if errors.Is(err, repository.ErrEmailExists) {
		return model.Account{}, &ValidationError{MsgEmailTaken}
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

// EnsureAdmin creates an approved admin account when email is set and no
// account uses it yet.  It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return false, nil
	}
	_, err := s.accounts.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	_, err = s.accounts.Create(ctx, repository.NewAccount{
		Name: name, Email: email, Password: password, Role: model.RoleAdmin, Approved: true,
	}, s.cost)
	if errors.Is(err, repository.ErrEmailExists) {
		return false, nil
	}
	return err == nil, err
}

// IssueTokens signs an access token and stores a new refresh token for a.
func (s *AuthService) IssueTokens(ctx context.Context, a model.Account) (TokenPair, error) {
	access, err := utils.NewAccessToken(s.secret, a.ID, a.Name, a.Role, s.accessTTLMin)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.refreshTTLDays)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh: %w", err)
	}
	if err := s.tokens.StoreRefresh(ctx, a.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return TokenPair{}, fmt.Errorf("save refresh: %w", err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh validates a raw refresh token, revokes it and issues a new pair.
// An unknown, revoked or expired token yields repository.ErrNotFound; an
// account that lost its approval since is refused the same way.
func (s *AuthService) Refresh(ctx context.Context, raw string) (model.Account, TokenPair, error) {
	hash := utils.HashRefreshRaw(strings.TrimSpace(raw))
	userID, err := s.tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return model.Account{}, TokenPair{}, err
	}
	_ = s.tokens.RevokeByHash(ctx, hash)
	a, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return model.Account{}, TokenPair{}, err
	}
	if !a.IsApproved {
		return model.Account{}, TokenPair{}, repository.ErrNotFound
	}
	pair, err := s.IssueTokens(ctx, a)
	return a, pair, err
}

// Logout revokes one refresh token when raw is set, otherwise every token
// of userID.
func (s *AuthService) Logout(ctx context.Context, userID, raw string) error {
	if raw = strings.TrimSpace(raw); raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := s.tokens.ValidateRefresh(ctx, hash); err != nil {
			return err
		}
		return s.tokens.RevokeByHash(ctx, hash)
	}
	if userID == "" {
		return repository.ErrNotFound
	}
	return s.tokens.RevokeAllForUser(ctx, userID)
}
