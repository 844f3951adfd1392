package vault

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// TTL is how long a stored session stays valid. Eviction is lazy: an expired
// record is deleted on the read that discovers it, so correctness never
// depends on CleanupExpired running.
const TTL = 24 * time.Hour

// Vault stores per-(user, platform) authentication artifacts encrypted with
// a key derived from (userID, masterSecret). One user's key never opens
// another user's sessions.
type Vault struct {
	store        Store
	masterSecret []byte

	now func() time.Time
}

func New(store Store, masterSecret string) *Vault {
	return &Vault{
		store:        store,
		masterSecret: []byte(masterSecret),
		now:          time.Now,
	}
}

// Store encrypts sessionData and upserts it on the (userID, platform) key.
// Expiry is set to now + 24h. Returns the session id.
func (v *Vault) Store(ctx context.Context, userID, platformName, url string, data SessionData, metadata map[string]string) (string, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session data: %w", err)
	}

	ciphertext, err := v.encrypt(userID, plaintext)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt session: %w", err)
	}

	now := v.now()
	record := &EncryptedSession{
		ID:         uuid.NewString(),
		UserID:     userID,
		Platform:   platformName,
		URL:        url,
		Ciphertext: ciphertext,
		Metadata:   metadata,
		CreatedAt:  now,
		ExpiresAt:  now.Add(TTL),
		LastUsedAt: now,
	}

	if err := v.store.Upsert(ctx, record); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	v.logEvent(ctx, userID, platformName, EventCreated, "")
	return record.ID, nil
}

// Get decrypts the stored session. An expired record is deleted on the spot
// and reported as ErrNotFound; a live one gets its last-used timestamp bumped.
func (v *Vault) Get(ctx context.Context, userID, platformName string) (*SessionData, error) {
	record, err := v.store.Get(ctx, userID, platformName)
	if err != nil {
		return nil, err
	}

	if v.now().After(record.ExpiresAt) {
		if err := v.store.Delete(ctx, userID, platformName); err != nil {
			log.Printf("⚠️ Failed to delete expired session for %s/%s: %v", userID, platformName, err)
		}
		v.logEvent(ctx, userID, platformName, EventExpired, "")
		return nil, ErrNotFound
	}

	plaintext, err := v.decrypt(userID, record.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	var data SessionData
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	if err := v.store.Touch(ctx, userID, platformName, v.now()); err != nil {
		log.Printf("⚠️ Failed to bump last_used_at for %s/%s: %v", userID, platformName, err)
	}

	return &data, nil
}

// Refresh extends expiry to now + 24h.
func (v *Vault) Refresh(ctx context.Context, userID, platformName string) error {
	if err := v.store.SetExpiry(ctx, userID, platformName, v.now().Add(TTL)); err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	v.logEvent(ctx, userID, platformName, EventRefreshed, "")
	return nil
}

// Delete removes the (userID, platform) record.
func (v *Vault) Delete(ctx context.Context, userID, platformName string) error {
	if err := v.store.Delete(ctx, userID, platformName); err != nil {
		return err
	}
	v.logEvent(ctx, userID, platformName, EventDeleted, "")
	return nil
}

// DeleteAll removes every session for the user (logout everywhere).
func (v *Vault) DeleteAll(ctx context.Context, userID string) (int, error) {
	n, err := v.store.DeleteAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	v.logEvent(ctx, userID, "", EventLogout, fmt.Sprintf("%d sessions removed", n))
	return n, nil
}

// HasValid is a thin wrapper over Get that swallows errors.
func (v *Vault) HasValid(ctx context.Context, userID, platformName string) bool {
	_, err := v.Get(ctx, userID, platformName)
	return err == nil
}

// CleanupExpired bulk-deletes expired records. Pure garbage collection:
// reads already evict lazily.
func (v *Vault) CleanupExpired(ctx context.Context) (int, error) {
	return v.store.DeleteExpired(ctx, v.now())
}

// LogEvent appends a lifecycle event outside the vault's own transitions
// (login_required, login_success, login_failure come from the orchestrator).
func (v *Vault) LogEvent(ctx context.Context, userID, platformName string, t EventType, detail string) {
	v.logEvent(ctx, userID, platformName, t, detail)
}

func (v *Vault) logEvent(ctx context.Context, userID, platformName string, t EventType, detail string) {
	e := AuthEvent{
		ID:       uuid.NewString(),
		UserID:   userID,
		Platform: platformName,
		Type:     t,
		Detail:   detail,
		At:       v.now(),
	}
	if err := v.store.AppendEvent(ctx, e); err != nil {
		log.Printf("⚠️ Failed to append auth event %s: %v", t, err)
	}
}

// deriveKey gives each user their own 32-byte AES key so a leaked record
// cannot be opened without the server-side master secret.
func (v *Vault) deriveKey(userID string) []byte {
	mac := hmac.New(sha256.New, v.masterSecret)
	mac.Write([]byte(userID))
	return mac.Sum(nil)
}

func (v *Vault) encrypt(userID string, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(v.deriveKey(userID))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	//nonce prefixes the sealed payload
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (v *Vault) decrypt(userID string, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(v.deriveKey(userID))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext shorter than nonce")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}
