package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	platformauth "kpitrack/internal/auth"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	Store    *Store
	Secret   string
	TokenTTL time.Duration
}

func NewService(store *Store, secret string, tokenTTL time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TokenTTL: tokenTTL}
}

// hashToken stores only a digest of the token server-side, so a leaked
// sessions table cannot be replayed.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Login verifies credentials and issues a signed token backed by a session
// row. Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, User, error) {
	creds, err := s.Store.FindActiveByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return "", User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", User{}, err
	}
	if err := platformauth.CheckPassword(creds.PasswordHash, password); err != nil {
		return "", User{}, ErrInvalidCredentials
	}

	token, err := platformauth.GenerateToken(s.Secret, platformauth.Claims{
		UserID:     creds.User.ID,
		Role:       creds.User.Role,
		Department: creds.User.Department,
	}, s.TokenTTL)
	if err != nil {
		return "", User{}, err
	}

	if err := s.Store.CreateSession(ctx, creds.User.ID, hashToken(token), time.Now().Add(s.TokenTTL)); err != nil {
		return "", User{}, err
	}
	if err := s.Store.UpdateLastLogin(ctx, creds.User.ID); err != nil {
		return "", User{}, err
	}
	return token, creds.User, nil
}

func (s *Service) Logout(ctx context.Context, userID, token string) error {
	return s.Store.RevokeSession(ctx, userID, hashToken(token))
}

// SessionValid reports whether the token still has a live session; revoked
// or expired sessions fail even if the token signature would verify.
func (s *Service) SessionValid(ctx context.Context, userID, token string) (bool, error) {
	return s.Store.SessionValid(ctx, userID, hashToken(token))
}

func (s *Service) Profile(ctx context.Context, userID string) (User, error) {
	return s.Store.Get(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.Store.Get(ctx, userID)
	if err != nil {
		return err
	}
	creds, err := s.Store.FindActiveByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if err := platformauth.CheckPassword(creds.PasswordHash, current); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := platformauth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.Store.UpdatePassword(ctx, userID, hash)
}

func (s *Service) ListUsers(ctx context.Context, search, role string, limit, offset int) ([]User, int, error) {
	return s.Store.List(ctx, search, role, limit, offset)
}

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) CreateUser(ctx context.Context, u User, password string) (User, error) {
	hash, err := platformauth.HashPassword(password)
	if err != nil {
		return User{}, err
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	return s.Store.Create(ctx, u, hash)
}

func (s *Service) UpdateUser(ctx context.Context, u User) (User, error) {
	return s.Store.Update(ctx, u)
}

// ResetPassword sets a user's password without knowing the old one. Admin
// only; route guards enforce that.
func (s *Service) ResetPassword(ctx context.Context, userID, password string) error {
	hash, err := platformauth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.Store.UpdatePassword(ctx, userID, hash)
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}

func (s *Service) UserIDsByDepartment(ctx context.Context, slug string) ([]string, error) {
	return s.Store.UserIDsByDepartment(ctx, slug)
}

func (s *Service) UserIDsByRole(ctx context.Context, role string) ([]string, error) {
	return s.Store.UserIDsByRole(ctx, role)
}
