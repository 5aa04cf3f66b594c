package auth

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"gorm.io/gorm"

	"github.com/adway7103/broker-demo/internal/apperr"
)

// ErrPasskeyNotFound is returned when deleting a credential the admin does
// not own.
var ErrPasskeyNotFound = apperr.New(apperr.CodeNotFound, "Passkey not found")

// PasskeyUser implements webauthn.User for a single admin email.
type PasskeyUser struct {
	email       string
	credentials []webauthn.Credential
}

// NewPasskeyUser creates a PasskeyUser for the given email.
func NewPasskeyUser(email string, credentials []webauthn.Credential) *PasskeyUser {
	return &PasskeyUser{email: normalizeEmail(email), credentials: credentials}
}

// WebAuthnID returns a stable user ID derived from the email.
func (u *PasskeyUser) WebAuthnID() []byte {
	h := sha256.Sum256([]byte(u.email))
	return h[:]
}

// WebAuthnName returns the email.
func (u *PasskeyUser) WebAuthnName() string { return u.email }

// WebAuthnDisplayName returns the email.
func (u *PasskeyUser) WebAuthnDisplayName() string { return u.email }

// WebAuthnCredentials returns the stored credentials.
func (u *PasskeyUser) WebAuthnCredentials() []webauthn.Credential { return u.credentials }

// Email returns the account the passkey belongs to.
func (u *PasskeyUser) Email() string { return u.email }

// PasskeyCredential is a stored passkey with its owner and label.
type PasskeyCredential struct {
	ID             string `gorm:"primaryKey;type:varchar(255)"`
	Email          string `gorm:"type:varchar(255);not null;index"`
	Name           string
	CredentialJSON string `gorm:"type:text;not null"`
	CreatedAt      time.Time
}

// StoredCredential is a decoded passkey credential with metadata.
type StoredCredential struct {
	ID         string
	Email      string
	Name       string
	CreatedAt  time.Time
	Credential webauthn.Credential
}

// PasskeyStore manages passkey credentials.
type PasskeyStore struct {
	db *gorm.DB
}

// NewPasskeyStore creates a passkey store.
func NewPasskeyStore(gdb *gorm.DB) *PasskeyStore {
	return &PasskeyStore{db: gdb}
}

// Save stores a new passkey credential.
func (s *PasskeyStore) Save(ctx context.Context, email, name string, cred *webauthn.Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshaling credential: %w", err)
	}

	row := &PasskeyCredential{
		ID:             fmt.Sprintf("%x", cred.ID),
		Email:          normalizeEmail(email),
		Name:           name,
		CredentialJSON: string(data),
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("storing credential: %w", err)
	}
	return nil
}

// ListByEmail returns all credentials for the given email.
func (s *PasskeyStore) ListByEmail(ctx context.Context, email string) ([]StoredCredential, error) {
	var rows []PasskeyCredential
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Order("created_at").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying credentials: %w", err)
	}

	result := make([]StoredCredential, 0, len(rows))
	for _, row := range rows {
		sc := StoredCredential{ID: row.ID, Email: row.Email, Name: row.Name, CreatedAt: row.CreatedAt}
		if err := json.Unmarshal([]byte(row.CredentialJSON), &sc.Credential); err != nil {
			return nil, fmt.Errorf("unmarshaling credential: %w", err)
		}
		result = append(result, sc)
	}
	return result, nil
}

// WebAuthnCredentials returns just the webauthn.Credential slice for the given email.
func (s *PasskeyStore) WebAuthnCredentials(ctx context.Context, email string) ([]webauthn.Credential, error) {
	stored, err := s.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	creds := make([]webauthn.Credential, len(stored))
	for i, sc := range stored {
		creds[i] = sc.Credential
	}
	return creds, nil
}

// Delete removes a credential by ID.
func (s *PasskeyStore) Delete(ctx context.Context, id, email string) error {
	result := s.db.WithContext(ctx).Delete(&PasskeyCredential{}, "id = ? AND email = ?", id, normalizeEmail(email))
	if result.Error != nil {
		return fmt.Errorf("deleting credential: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPasskeyNotFound
	}
	return nil
}
