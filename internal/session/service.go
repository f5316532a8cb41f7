package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vgc/vgc-sub008/internal/typeid"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrUnknownSession   = errors.New("unknown session")
	ErrExpiredSession   = errors.New("session expired")
	ErrEmptyDisplayName = errors.New("display name required")
)

const tokenTTL = 24 * time.Hour

// Session is one editing identity. There are no accounts: a client obtains a
// session by posting a display name, and the returned token authenticates the
// websocket connection.
type Session struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type Service struct {
	jwtSecret []byte

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewService(jwtSecret string) *Service {
	return &Service{
		jwtSecret: []byte(jwtSecret),
		sessions:  make(map[string]*Session),
	}
}

type CreateResult struct {
	Token   string  `json:"token"`
	Session Session `json:"session"`
}

// Create registers a new session and returns its signed token.
func (s *Service) Create(displayName string) (*CreateResult, error) {
	if displayName == "" {
		return nil, ErrEmptyDisplayName
	}

	now := time.Now()
	sess := &Session{
		ID:          typeid.NewSessionID(),
		DisplayName: displayName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(tokenTTL),
	}

	token, err := s.issueToken(sess)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return &CreateResult{Token: token, Session: *sess}, nil
}

// ValidateToken verifies the signature and expiry and returns the session id.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	sessionID, ok := claims["sub"].(string)
	if !ok {
		return "", ErrInvalidToken
	}

	return sessionID, nil
}

// Get returns the live session for an id.
func (s *Service) Get(sessionID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownSession
	}
	if time.Now().After(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return nil, ErrExpiredSession
	}
	out := *sess
	return &out, nil
}

func (s *Service) issueToken(sess *Session) (string, error) {
	claims := jwt.MapClaims{
		"sub":  sess.ID,
		"name": sess.DisplayName,
		"iat":  sess.CreatedAt.Unix(),
		"exp":  sess.ExpiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}
