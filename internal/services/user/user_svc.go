// Package user handles accounts and token-based authentication. The auction
// engine never sees passwords or tokens, only the resolved principal.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"auctionhouse/internal/models"
	"auctionhouse/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidEmail       = errors.New("a valid email is required")
)

// Claims is the JWT payload. Role travels in the token so middleware can gate
// admin routes without a store round-trip.
type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

type IUserService interface {
	Register(ctx context.Context, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Verify(token string) (models.User, error)
}

type userService struct {
	users      store.UserStore
	jwtSecret  []byte
	tokenTTL   time.Duration
	adminEmail string
	now        func() time.Time
}

// NewUserService builds the account service. Accounts registered with
// adminEmail receive the admin role; everyone else is a bidder.
func NewUserService(users store.UserStore, jwtSecret string, tokenTTL time.Duration, adminEmail string) IUserService {
	return &userService{
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		adminEmail: strings.ToLower(strings.TrimSpace(adminEmail)),
		now:        time.Now,
	}
}

func (svc *userService) Register(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	role := models.RoleBidder
	if svc.adminEmail != "" && email == svc.adminEmail {
		role = models.RoleAdmin
	}

	u := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    svc.now().UTC(),
	}
	if err := svc.users.CreateUser(ctx, u); err != nil {
		return nil, "", err
	}
	zap.L().Info("user_registered", zap.String("user_id", u.ID), zap.String("role", string(role)))

	token, err := svc.issue(u)
	if err != nil {
		return nil, "", err
	}
	return sanitize(u), token, nil
}

func (svc *userService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	u, err := svc.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := svc.issue(u)
	if err != nil {
		return nil, "", err
	}
	return sanitize(u), token, nil
}

// Verify parses a bearer token and returns the principal it asserts.
func (svc *userService) Verify(token string) (models.User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return svc.jwtSecret, nil
	}, jwt.WithTimeFunc(svc.now))
	if err != nil || !parsed.Valid {
		return models.User{}, ErrInvalidToken
	}
	return models.User{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}

func (svc *userService) issue(u *models.User) (string, error) {
	now := svc.now()
	claims := &Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(svc.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.jwtSecret)
}

func sanitize(u *models.User) *models.User {
	return &models.User{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
