package auth

import (
	"context"
	"time"

	"github.com/devopsenabler/identity-core/internal/models"
	"github.com/devopsenabler/identity-core/internal/pkg/denylist"
	"github.com/devopsenabler/identity-core/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the credential store the workflow runs against.
type UserStore interface {
	// FindByEmail returns (nil, nil) when no such user exists.
	FindByEmail(email string) (*models.UserModel, error)
	Create(user *models.UserModel) error
}

// dummyHash is compared against when the email is unknown, so the
// missing-user path costs the same as a wrong password.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

type Service struct {
	users    UserStore
	codec    *jwt.Codec
	denylist *denylist.Store
	tokenTTL time.Duration
}

func NewService(users UserStore, codec *jwt.Codec, dl *denylist.Store, tokenTTL time.Duration) *Service {
	return &Service{users: users, codec: codec, denylist: dl, tokenTTL: tokenTTL}
}

// Register hashes the password and persists a new credential record.
func (s *Service) Register(dto *RegisterDTO) (*models.UserModel, error) {
	existing, err := s.users.FindByEmail(dto.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &models.UserModel{Email: dto.Email, Password: string(hash), Name: dto.Name}
	return u, s.users.Create(u)
}

// Login verifies credentials and issues an access token bound to the email.
func (s *Service) Login(email, password string) (string, error) {
	u, err := s.users.FindByEmail(email)
	if err != nil {
		return "", err
	}
	if u == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", errBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return "", errBadCredentials
	}

	encoded, _, err := s.codec.Issue(email, s.tokenTTL)
	return encoded, err
}

// Logout denylists the token's jti for its remaining lifetime. The claims
// must come from a verified token (the auth middleware guarantees that).
func (s *Service) Logout(ctx context.Context, claims *jwt.Claims) error {
	return s.denylist.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}

// Profile returns the record for the authenticated subject.
func (s *Service) Profile(email string) (*models.UserModel, error) {
	return s.users.FindByEmail(email)
}
