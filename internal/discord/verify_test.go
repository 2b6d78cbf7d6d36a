package discord

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"
)

func TestVerifySignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	timestamp := "1756700000"
	body := []byte(`{"type":1}`)
	sig := ed25519.Sign(priv, append([]byte(timestamp), body...))
	sigHex := hex.EncodeToString(sig)

	if !VerifySignature(pub, timestamp, sigHex, body) {
		t.Fatal("expected valid signature to verify")
	}

	if VerifySignature(pub, timestamp, sigHex, []byte(`{"type":2}`)) {
		t.Fatal("tampered body must not verify")
	}
	if VerifySignature(pub, "1756700001", sigHex, body) {
		t.Fatal("tampered timestamp must not verify")
	}

	badSig := []byte(sigHex)
	badSig[0] ^= 1
	if VerifySignature(pub, timestamp, string(badSig), body) {
		t.Fatal("tampered signature must not verify")
	}
}

func TestVerifySignature_MalformedInput(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	if VerifySignature(pub, "", "abcd", []byte("x")) {
		t.Fatal("missing timestamp must not verify")
	}
	if VerifySignature(pub, "123", "", []byte("x")) {
		t.Fatal("missing signature must not verify")
	}
	if VerifySignature(pub, "123", "not-hex!", []byte("x")) {
		t.Fatal("malformed hex must not verify")
	}
	if VerifySignature(pub, "123", "dead", []byte("x")) {
		t.Fatal("short signature must not verify")
	}
	if VerifySignature(nil, "123", strings.Repeat("ab", ed25519.SignatureSize), []byte("x")) {
		t.Fatal("missing public key must not verify")
	}
}

func TestParsePublicKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	parsed, err := ParsePublicKey(hex.EncodeToString(pub))
	if err != nil {
		t.Fatalf("ParsePublicKey failed: %v", err)
	}
	if !parsed.Equal(pub) {
		t.Fatal("parsed key differs from original")
	}

	if _, err := ParsePublicKey("zz"); err == nil {
		t.Fatal("expected error for non-hex key")
	}
	if _, err := ParsePublicKey("abcd"); err == nil {
		t.Fatal("expected error for short key")
	}
}
