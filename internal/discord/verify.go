package discord

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

// ParsePublicKey decodes the hex-encoded ed25519 public key Discord
// shows in the application settings.
func ParsePublicKey(hexKey string) (ed25519.PublicKey, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("public key is not valid hex: %w", err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(key))
	}
	return ed25519.PublicKey(key), nil
}

// VerifySignature checks the ed25519 signature Discord sends with
// every interaction: the signed message is timestamp || rawBody.
// Missing headers, malformed hex, or a failed verification all
// return false.
func VerifySignature(publicKey ed25519.PublicKey, timestamp, signatureHex string, body []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || timestamp == "" || signatureHex == "" {
		return false
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	return ed25519.Verify(publicKey, msg, sig)
}
