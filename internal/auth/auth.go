// Package auth issues and verifies the session tokens used by the API layer.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vitalens/vitalens/internal/config"
	"github.com/vitalens/vitalens/internal/errors"
	"github.com/vitalens/vitalens/internal/metrics"
	"github.com/vitalens/vitalens/internal/store"
	"go.uber.org/zap"
)

// Account is the caller-facing view of a user; it never carries the secret.
type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	DoctorID string `json:"doctorId"`
}

// Session is a signed token plus the account it belongs to.
type Session struct {
	Token string  `json:"token"`
	User  Account `json:"user"`
}

// Claims are the token claims the API middleware extracts.
type Claims struct {
	UserID   string
	DoctorID string
	Name     string
}

type Service struct {
	store  *store.Store
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
}

func New(st *store.Store, cfg config.SecurityConfig, logger *zap.Logger) *Service {
	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		store:  st,
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		logger: logger,
	}
}

// Signup creates an account and opens a session for it.
func (s *Service) Signup(doctorID, password string) (*Session, error) {
	if strings.TrimSpace(doctorID) == "" || password == "" {
		return nil, errors.ErrBadRequest
	}

	user, err := s.store.AddUser(doctorID, password)
	if err != nil {
		metrics.RecordAuthAttempt("signup", false)
		return nil, err
	}
	metrics.RecordAuthAttempt("signup", true)

	return s.openSession(user)
}

// Login matches credentials and opens a session. Unknown accounts and wrong
// passwords produce the same error.
func (s *Service) Login(doctorID, password string) (*Session, error) {
	user, err := s.store.FindUser(doctorID, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		metrics.RecordAuthAttempt("login", false)
		s.store.Audit(doctorID, "login", "users", "", "denied")
		return nil, errors.ErrInvalidCredentials
	}

	metrics.RecordAuthAttempt("login", true)
	s.store.Audit(user.ID, "login", "users", user.ID, "ok")
	return s.openSession(*user)
}

func (s *Service) openSession(user store.User) (*Session, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID,
		"doctorId": user.DoctorID,
		"name":     user.Name,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, errors.Wrap(err, "AUTH_005", "failed to sign session token")
	}

	return &Session{
		Token: signed,
		User:  Account{ID: user.ID, Name: user.Name, DoctorID: user.DoctorID},
	}, nil
}

// ParseToken verifies a session token and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.ErrUnauthorized
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.ErrUnauthorized
	}

	claims := &Claims{}
	if sub, ok := mapClaims["sub"].(string); ok {
		claims.UserID = sub
	}
	if doctorID, ok := mapClaims["doctorId"].(string); ok {
		claims.DoctorID = doctorID
	}
	if name, ok := mapClaims["name"].(string); ok {
		claims.Name = name
	}
	if claims.UserID == "" {
		return nil, errors.ErrUnauthorized
	}
	return claims, nil
}
