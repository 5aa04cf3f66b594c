package auth

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/go-webauthn/webauthn/webauthn"
)

func TestPasskeySaveAndList(t *testing.T) {
	store := NewPasskeyStore(testDB(t))
	ctx := context.Background()

	cred := &webauthn.Credential{
		ID:        []byte("test-credential-id"),
		PublicKey: []byte("test-public-key"),
	}

	if err := store.Save(ctx, "Admin@example.com", "My Laptop", cred); err != nil {
		t.Fatalf("save: %v", err)
	}

	stored, err := store.ListByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("got %d credentials, want 1", len(stored))
	}
	if stored[0].Name != "My Laptop" {
		t.Errorf("name = %q, want %q", stored[0].Name, "My Laptop")
	}
	if stored[0].ID != fmt.Sprintf("%x", cred.ID) {
		t.Errorf("id = %q", stored[0].ID)
	}
	if !bytes.Equal(stored[0].Credential.PublicKey, cred.PublicKey) {
		t.Errorf("public key mismatch")
	}
}

func TestPasskeyWebAuthnCredentialsAndDelete(t *testing.T) {
	store := NewPasskeyStore(testDB(t))
	ctx := context.Background()

	for i, name := range []string{"Key 1", "Key 2"} {
		cred := &webauthn.Credential{ID: []byte(fmt.Sprintf("cred-%d", i)), PublicKey: []byte("k")}
		if err := store.Save(ctx, "admin@example.com", name, cred); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}

	creds, err := store.WebAuthnCredentials(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("webauthn credentials: %v", err)
	}
	if len(creds) != 2 {
		t.Fatalf("got %d credentials, want 2", len(creds))
	}

	id := fmt.Sprintf("%x", []byte("cred-0"))
	if err := store.Delete(ctx, id, "someone@example.com"); err == nil {
		t.Error("deleting another user's credential should fail")
	}
	if err := store.Delete(ctx, id, "admin@example.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	creds, _ = store.WebAuthnCredentials(ctx, "admin@example.com")
	if len(creds) != 1 {
		t.Errorf("got %d credentials after delete, want 1", len(creds))
	}
}

func TestPasskeyUser(t *testing.T) {
	u := NewPasskeyUser("Admin@Example.com", nil)

	want := sha256.Sum256([]byte("admin@example.com"))
	if !bytes.Equal(u.WebAuthnID(), want[:]) {
		t.Error("WebAuthnID should be the sha256 of the lowercased email")
	}
	if u.WebAuthnName() != "admin@example.com" || u.Email() != "admin@example.com" {
		t.Errorf("name = %q", u.WebAuthnName())
	}
}
