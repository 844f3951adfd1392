package vault

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound covers both a missing record and a lazily evicted one.
	ErrNotFound = errors.New("session not found")
	// ErrDecryption means the ciphertext exists but cannot be opened with the
	// derived key. Callers treat this as a re-authentication trigger.
	ErrDecryption = errors.New("session decryption failed")
)

// Cookie is one browser cookie as captured from an authenticated context.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// SessionData is the plaintext shape protected by the vault.
type SessionData struct {
	Cookies      []Cookie          `json:"cookies,omitempty"`
	LocalStorage map[string]string `json:"local_storage,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	Token        string            `json:"token,omitempty"`
}

// EncryptedSession is the stored record: one per (userID, platform) pair.
// Ciphertext carries the AES-GCM nonce as its prefix.
type EncryptedSession struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Platform   string            `json:"platform"`
	URL        string            `json:"url"`
	Ciphertext []byte            `json:"-"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	ExpiresAt  time.Time         `json:"expires_at"`
	LastUsedAt time.Time         `json:"last_used_at"`
}

// EventType tags one session lifecycle transition.
type EventType string

const (
	EventCreated       EventType = "session_created"
	EventRefreshed     EventType = "session_refreshed"
	EventExpired       EventType = "session_expired"
	EventDeleted       EventType = "session_deleted"
	EventLoginRequired EventType = "login_required"
	//the interactive login flow lives outside this process; its owner records
	//these two through Vault.LogEvent so the audit trail stays in one place
	EventLoginSuccess EventType = "login_success"
	EventLoginFailure EventType = "login_failure"
	EventLogout       EventType = "logout"
)

// AuthEvent is an append-only audit record. Events are never mutated.
type AuthEvent struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Platform string    `json:"platform"`
	Type     EventType `json:"type"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

// Store is the persistence surface behind the vault. Upsert replaces any
// existing record for the same (userID, platform) key.
type Store interface {
	Upsert(ctx context.Context, s *EncryptedSession) error
	Get(ctx context.Context, userID, platformName string) (*EncryptedSession, error)
	Touch(ctx context.Context, userID, platformName string, lastUsed time.Time) error
	SetExpiry(ctx context.Context, userID, platformName string, expiresAt time.Time) error
	Delete(ctx context.Context, userID, platformName string) error
	DeleteAll(ctx context.Context, userID string) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	AppendEvent(ctx context.Context, e AuthEvent) error
}
