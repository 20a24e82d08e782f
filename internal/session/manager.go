package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imrishuroy/restaurant-admin/internal/docstore"
)

var (
	// ErrUnauthenticated means there is no valid current session.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrInvalidCredentials is returned by Login for any email/password mismatch.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountExists is returned by CreateAccount for a taken email.
	ErrAccountExists = errors.New("account already exists")
)

// Account is an admin user persisted in the admins collection, keyed by email.
type Account struct {
	ID           string    `dynamodbav:"id" json:"id"`
	Email        string    `dynamodbav:"email" json:"email"`
	Name         string    `dynamodbav:"name" json:"name"`
	PasswordHash string    `dynamodbav:"password_hash" json:"-"`
	CreatedAt    time.Time `dynamodbav:"created_at" json:"createdAt"`
}

// Session is persisted in the sessions collection. ExpiresAt doubles as the
// DynamoDB TTL attribute; expired rows are also rejected on read since TTL
// deletion is lazy.
type Session struct {
	ID        string    `dynamodbav:"id" json:"id"`
	AccountID string    `dynamodbav:"account_id" json:"accountId"`
	Email     string    `dynamodbav:"email" json:"email"`
	Name      string    `dynamodbav:"name" json:"name"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"createdAt"`
	ExpiresAt int64     `dynamodbav:"expires_at" json:"expiresAt"` // TTL epoch seconds
}

// Manager handles admin accounts and their sessions.
type Manager struct {
	docs     *docstore.Store
	admins   string
	sessions string
	tokens   *Tokens
	ttl      time.Duration
	nowFunc  func() time.Time
}

// Config groups the Manager settings.
type Config struct {
	AdminsCollection   string
	SessionsCollection string
	Secret             string
	TTL                time.Duration
}

// NewManager returns a configured Manager.
func NewManager(docs *docstore.Store, cfg Config) (*Manager, error) {
	if docs == nil || cfg.AdminsCollection == "" || cfg.SessionsCollection == "" {
		return nil, fmt.Errorf("%w: session collections not set", docstore.ErrConfiguration)
	}
	tokens, err := NewTokens(cfg.Secret)
	if err != nil {
		return nil, err
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		docs:     docs,
		admins:   cfg.AdminsCollection,
		sessions: cfg.SessionsCollection,
		tokens:   tokens,
		ttl:      ttl,
		nowFunc:  time.Now,
	}, nil
}

// TTL is how long a new session lives.
func (m *Manager) TTL() time.Duration { return m.ttl }

// CreateAccount registers an admin. Emails are case-insensitive.
func (m *Manager) CreateAccount(ctx context.Context, email, password, name string) (*Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("create account: empty email")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	acc := Account{
		ID:           email,
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    m.nowFunc().UTC(),
	}
	if err := m.docs.Create(ctx, m.admins, acc.ID, acc); err != nil {
		if errors.Is(err, docstore.ErrExists) {
			return nil, fmt.Errorf("%w: %s", ErrAccountExists, email)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &acc, nil
}

// Login checks the credentials and opens a new session. It returns the
// session and its signed token.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, string, error) {
	email = normalizeEmail(email)
	doc, err := m.docs.Get(ctx, m.admins, email)
	if err != nil {
		return nil, "", fmt.Errorf("login: %w", err)
	}
	if doc == nil {
		return nil, "", ErrInvalidCredentials
	}
	var acc Account
	if err := doc.Decode(&acc); err != nil {
		return nil, "", fmt.Errorf("decode account: %w", err)
	}
	if !CheckPassword(password, acc.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	now := m.nowFunc()
	sess := Session{
		ID:        uuid.NewString(),
		AccountID: acc.ID,
		Email:     acc.Email,
		Name:      acc.Name,
		CreatedAt: now.UTC(),
		ExpiresAt: now.Add(m.ttl).Unix(),
	}
	if err := m.docs.Create(ctx, m.sessions, sess.ID, sess); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	token, err := m.tokens.Issue(sess)
	if err != nil {
		return nil, "", err
	}
	return &sess, token, nil
}

// Current returns the session behind token. Every failure, store errors
// included, is reported as ErrUnauthenticated.
func (m *Manager) Current(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := m.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	doc, err := m.docs.Get(ctx, m.sessions, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: session %s not found", ErrUnauthenticated, claims.ID)
	}
	var sess Session
	if err := doc.Decode(&sess); err != nil {
		return nil, fmt.Errorf("%w: decode session: %w", ErrUnauthenticated, err)
	}
	if sess.ExpiresAt <= m.nowFunc().Unix() {
		return nil, fmt.Errorf("%w: session %s expired", ErrUnauthenticated, sess.ID)
	}
	return &sess, nil
}

// Logout deletes the session behind token.
func (m *Manager) Logout(ctx context.Context, token string) error {
	sess, err := m.Current(ctx, token)
	if err != nil {
		return err
	}
	if err := m.docs.Delete(ctx, m.sessions, sess.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
