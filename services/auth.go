package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"talenttrack-backend/models"
	"talenttrack-backend/models/users"
)

// DefaultTokenTTL is how long an issued bearer token stays valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

// bcrypt ignores everything past 72 bytes.
const maxSecretLen = 72

type Claims struct {
	UserID string `json:"id"`
	jwt.StandardClaims
}

type AuthOptions struct {
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int
	Now        func() time.Time
}

// AuthService registers users, checks credentials and resolves bearer tokens.
type AuthService struct {
	users  users.Repository
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

func NewAuthService(repo users.Repository, opts AuthOptions) *AuthService {
	s := &AuthService{
		users:  repo,
		secret: opts.Secret,
		ttl:    opts.TokenTTL,
		cost:   opts.BcryptCost,
		now:    opts.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTokenTTL
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	SafeCode string `json:"safeCode"`
	users.Profile
}

type AuthResult struct {
	Token string      `json:"token"`
	User  *users.User `json:"user"`
}

// Register: регистрация с паролем и кодом восстановления
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" || in.SafeCode == "" {
		return nil, invalid("email, password and safeCode are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("invalid email %q", in.Email)
	}
	if len(in.Password) > maxSecretLen || len(in.SafeCode) > maxSecretLen {
		return nil, invalid("password and safeCode must be at most %d bytes", maxSecretLen)
	}

	// Проверка на существование пользователя с таким email
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, storeErr(err, "user")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	safeCodeHash, err := bcrypt.GenerateFromPassword([]byte(in.SafeCode), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash safe code: %w", err)
	}

	now := s.now().UTC()
	u := &users.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  string(passwordHash),
		SafeCode:  string(safeCodeHash),
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.Profile.Apply(u)

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, storeErr(err, "user")
	}

	token, err := s.IssueToken(u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: sanitize(u)}, nil
}

// Login: вход с паролем и выдача JWT
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if err != nil {
		return nil, storeErr(err, "user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	token, err := s.IssueToken(u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: sanitize(u)}, nil
}

// ResetPassword replaces the password when the safe code matches. The old
// password is not needed; the safe code is the recovery factor.
func (s *AuthService) ResetPassword(ctx context.Context, email, safeCode, newPassword string) error {
	if newPassword == "" {
		return invalid("newPassword is required")
	}
	if len(newPassword) > maxSecretLen {
		return invalid("newPassword must be at most %d bytes", maxSecretLen)
	}
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return storeErr(err, "user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.SafeCode), []byte(safeCode)); err != nil {
		return fmt.Errorf("%w: invalid safe code", ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = string(hash)
	u.UpdatedAt = s.now().UTC()
	return storeErr(s.users.Save(ctx, u), "user")
}

// IssueToken signs an HS256 token for userID that expires after the configured TTL.
func (s *AuthService) IssueToken(userID string) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to its user. The returned user has
// its password and safe code hashes cleared.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*users.User, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: invalid or expired token", ErrUnauthorized)
	}
	if err := requireID(claims.UserID, "user"); err != nil {
		return nil, fmt.Errorf("%w: invalid token subject", ErrUnauthorized)
	}

	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return sanitize(u), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sanitize(u *users.User) *users.User {
	u.Password = ""
	u.SafeCode = ""
	return u
}
