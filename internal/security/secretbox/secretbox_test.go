package secretbox

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func testKey(seed byte) string {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i) + seed
	}
	return base64.StdEncoding.EncodeToString(key)
}

func TestEncryptDecrypt(t *testing.T) {
	box, err := New(testKey(1))
	if err != nil {
		t.Fatalf("failed to create box: %v", err)
	}
	ciphertext, err := box.Encrypt("super-secret")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if strings.Contains(ciphertext, "super-secret") {
		t.Fatalf("ciphertext leaks plaintext: %s", ciphertext)
	}
	plaintext, err := box.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if plaintext != "super-secret" {
		t.Fatalf("unexpected plaintext: %s", plaintext)
	}
}

func TestNewRejectsBadKeys(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty key")
	}
	if _, err := New("not base64!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	_, err := New(base64.StdEncoding.EncodeToString([]byte("short")))
	if err == nil || !strings.Contains(err.Error(), "32 bytes") {
		t.Fatalf("expected key length error, got %v", err)
	}
}

func TestSealOpen(t *testing.T) {
	box, err := New(testKey(1))
	if err != nil {
		t.Fatalf("failed to create box: %v", err)
	}

	sealed, err := box.Seal("pw-123")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if !IsSealed(sealed) {
		t.Fatalf("sealed value lacks prefix: %s", sealed)
	}

	again, err := box.Seal(sealed)
	if err != nil {
		t.Fatalf("reseal failed: %v", err)
	}
	if again != sealed {
		t.Fatalf("sealing twice changed the value: %s != %s", again, sealed)
	}

	opened, err := box.Open(sealed)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if opened != "pw-123" {
		t.Fatalf("opened = %q, want %q", opened, "pw-123")
	}

	plain, err := box.Open("legacy-plaintext")
	if err != nil {
		t.Fatalf("open plaintext failed: %v", err)
	}
	if plain != "legacy-plaintext" {
		t.Fatalf("plaintext changed: %q", plain)
	}

	empty, err := box.Seal("")
	if err != nil {
		t.Fatalf("seal empty failed: %v", err)
	}
	if empty != "" {
		t.Fatalf("empty value sealed to %q", empty)
	}
}

func TestOpenWithWrongKeyFails(t *testing.T) {
	a, err := New(testKey(1))
	if err != nil {
		t.Fatalf("failed to create box: %v", err)
	}
	b, err := New(testKey(9))
	if err != nil {
		t.Fatalf("failed to create box: %v", err)
	}

	sealed, err := a.Seal("pw")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if _, err := b.Open(sealed); !errors.Is(err, ErrInvalidCiphertext) {
		t.Fatalf("expected ErrInvalidCiphertext, got %v", err)
	}
}
