// Package wallet loads the funder signing key from one of two secret
// encodings: a base58 string (the usual export format of browser wallets)
// or a raw 64-byte array (the solana-keygen JSON file format).
package wallet

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

const secretKeyLen = 64

// SecretKind tags the encoding a Secret was supplied in.
type SecretKind int

const (
	SecretBase58Text SecretKind = iota
	SecretRawBytes
)

// Secret is a tagged variant over the two accepted secret-key encodings.
// The encoding is decided explicitly when the secret is loaded, never
// inferred from the runtime shape of the value.
type Secret struct {
	kind SecretKind
	text string
	raw  []byte
}

// Base58Text wraps a base58-encoded secret key string.
func Base58Text(s string) Secret {
	return Secret{kind: SecretBase58Text, text: s}
}

// RawBytes wraps a raw secret key byte array.
func RawBytes(b []byte) Secret {
	return Secret{kind: SecretRawBytes, raw: b}
}

// FromKeygenFile reads a solana-keygen style JSON byte-array file and wraps
// it as a RawBytes secret.
func FromKeygenFile(path string) (Secret, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Secret{}, fmt.Errorf("read keygen file: %w", err)
	}
	// solana-keygen writes the key as a JSON array of byte values.
	var vals []int
	if err := json.Unmarshal(data, &vals); err != nil {
		return Secret{}, fmt.Errorf("parse keygen file %s: %w", path, err)
	}
	raw := make([]byte, len(vals))
	for i, v := range vals {
		if v < 0 || v > 255 {
			return Secret{}, fmt.Errorf("keygen file %s: value %d out of byte range", path, v)
		}
		raw[i] = byte(v)
	}
	return RawBytes(raw), nil
}

// Kind reports which encoding the secret carries.
func (s Secret) Kind() SecretKind { return s.kind }

// Keypair decodes the secret into a signing keypair. A malformed secret is a
// configuration error; nothing touches the ledger before this succeeds.
func (s Secret) Keypair() (solana.PrivateKey, error) {
	switch s.kind {
	case SecretBase58Text:
		if s.text == "" {
			return nil, fmt.Errorf("empty base58 secret key")
		}
		key, err := solana.PrivateKeyFromBase58(s.text)
		if err != nil {
			return nil, fmt.Errorf("decode base58 secret key: %w", err)
		}
		if len(key) != secretKeyLen {
			return nil, fmt.Errorf("secret key is %d bytes, want %d", len(key), secretKeyLen)
		}
		return key, nil
	case SecretRawBytes:
		if len(s.raw) != secretKeyLen {
			return nil, fmt.Errorf("secret key is %d bytes, want %d", len(s.raw), secretKeyLen)
		}
		key := make(solana.PrivateKey, secretKeyLen)
		copy(key, s.raw)
		return key, nil
	default:
		return nil, fmt.Errorf("unknown secret encoding %d", s.kind)
	}
}
