package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of the token handed to the admin's browser. It only points at the
// stored session; the upstream token never leaves the server.
type Claims struct {
	SessionID string `json:"sid"`
	UserID    string `json:"userId"`
	jwt.RegisteredClaims
}

// Manager creates, resolves and destroys sessions.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	onDestroy []func(id string)
	sweepers  []sweeper
}

// sweeper is per-session state that can drop entries left idle.
type sweeper interface {
	Sweep(idle time.Duration) int
}

func NewManager(store Store, secret []byte, ttl time.Duration) *Manager {
	return &Manager{store: store, secret: secret, ttl: ttl, now: time.Now}
}

// OnDestroy registers fn to run after a session is destroyed. Pages use it to drop their
// per-session state.
func (m *Manager) OnDestroy(fn func(id string)) {
	m.mu.Lock()
	m.onDestroy = append(m.onDestroy, fn)
	m.mu.Unlock()
}

// Create stores a new session for an upstream login and returns it with a signed token.
func (m *Manager) Create(ctx context.Context, token, userID, email string, isAdmin bool) (*Session, string, error) {
	if token == "" {
		return nil, "", errors.New("empty upstream token")
	}
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		IsAdmin:   isAdmin,
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
	}
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return nil, "", err
	}

	claims := &Claims{
		SessionID: s.ID,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, "", fmt.Errorf("sign session token: %w", err)
	}
	return s, signed, nil
}

// Resolve validates an "Authorization" header value and loads its session.
func (m *Manager) Resolve(ctx context.Context, header string) (*Session, error) {
	if len(header) < 8 || !strings.HasPrefix(header, "Bearer ") {
		return nil, errors.New("invalid token format")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(header[7:], claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		// the signature is checked before expiry, so an expired token still names a real session
		if errors.Is(err, jwt.ErrTokenExpired) && claims.SessionID != "" {
			m.release(claims.SessionID)
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	s, err := m.store.Load(ctx, claims.SessionID)
	if errors.Is(err, ErrNotFound) {
		m.release(claims.SessionID)
	}
	return s, err
}

// release runs the OnDestroy hooks for a session the store already let go of.
func (m *Manager) release(id string) {
	m.mu.Lock()
	hooks := append([]func(string){}, m.onDestroy...)
	m.mu.Unlock()
	for _, fn := range hooks {
		fn(id)
	}
}

func (m *Manager) track(s sweeper) {
	m.mu.Lock()
	m.sweepers = append(m.sweepers, s)
	m.mu.Unlock()
}

// Sweep drops page state of sessions idle for longer than the session TTL. Such sessions
// have expired in the store without anyone calling Destroy.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	sweepers := append([]sweeper{}, m.sweepers...)
	m.mu.Unlock()
	n := 0
	for _, s := range sweepers {
		n += s.Sweep(m.ttl)
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				log.Printf("[session] swept %d idle page states", n)
			}
		}
	}
}

// Destroy deletes the session and notifies OnDestroy listeners.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.release(id)
	log.Printf("[session] destroyed %s", id)
	return nil
}
