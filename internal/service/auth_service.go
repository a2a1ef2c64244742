package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionRevoked     = errors.New("session revoked")
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	Role   model.Role `json:"role"`
	UserID int        `json:"user_id"`
}

// AuthService is the authentication collaborator: password sign-in,
// current-user lookup, sign-out, and OAuth redirect issuance. Active
// sessions are registered in Redis by JTI so sign-out revokes them.
type AuthService struct {
	cfg      *config.Config
	rdb      *redis.Client
	userRepo *repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, userRepo *repository.UserRepository) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, userRepo: userRepo}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// SignInWithPassword validates credentials and issues a JWT whose JTI is
// registered as the active session. The returned JTI doubles as the
// session ID for the timeout subsystem.
func (s *AuthService) SignInWithPassword(ctx context.Context, email, password string) (*model.User, string, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}
	if err := s.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Role:   user.Role,
		UserID: user.ID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, "", "", fmt.Errorf("sign token: %w", err)
	}

	// Register the session so sign-out can revoke it before JWT expiry.
	key := config.CacheKey.AuthSessionKey(jti)
	if err := s.rdb.Set(ctx, key, user.ID, s.cfg.JWTExpiry).Err(); err != nil {
		return nil, "", "", fmt.Errorf("register session: %w", err)
	}

	return user, signed, jti, nil
}

// SignInWithOAuth builds the external provider's authorize URL for a
// browser redirect. The provider calls back into the frontend, which
// completes the exchange.
func (s *AuthService) SignInWithOAuth(provider, redirectTo string) (string, error) {
	u, err := url.Parse(s.cfg.OAuthAuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("parse authorize URL: %w", err)
	}
	q := u.Query()
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// GetCurrentUser resolves validated claims to the full user record.
func (s *AuthService) GetCurrentUser(ctx context.Context, claims *Claims) (*model.User, error) {
	return s.userRepo.GetByID(ctx, claims.UserID)
}

// ValidateToken parses and validates a JWT, then checks its JTI is
// still registered (not revoked).
func (s *AuthService) ValidateToken(ctx context.Context, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	key := config.CacheKey.AuthSessionKey(claims.ID)
	if err := s.rdb.Get(ctx, key).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionRevoked
		}
		return nil, fmt.Errorf("check session: %w", err)
	}

	return claims, nil
}

// SignOut revokes the session registered under the given JTI. Revoking
// an already-revoked session is a harmless no-op.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, config.CacheKey.AuthSessionKey(sessionID)).Err()
}
