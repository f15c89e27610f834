package wallet

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

const signatureLen = 64

// Wallet holds the trading keypair. The secret is the standard Solana
// 64-byte secret key (seed || public key), base58 encoded.
type Wallet struct {
	private ed25519.PrivateKey
	pubkey  string
}

func NewFromBase58(secret string) (*Wallet, error) {
	raw, err := base58.Decode(secret)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}

	private := ed25519.PrivateKey(raw)
	public := private.Public().(ed25519.PublicKey)

	return &Wallet{
		private: private,
		pubkey:  base58.Encode(public),
	}, nil
}

// PublicKey returns the base58 wallet address.
func (w *Wallet) PublicKey() string {
	return w.pubkey
}

// SignTransaction signs a base64-serialized Solana transaction in which this
// wallet is the fee payer (signature slot 0) and returns the signed
// transaction, base64 encoded. The wire format is a compact-u16 signature
// count, the signature table, then the message bytes.
func (w *Wallet) SignTransaction(txBase64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txBase64)
	if err != nil {
		return "", fmt.Errorf("decode transaction: %w", err)
	}

	numSignatures, offset, err := decodeCompactU16(raw)
	if err != nil {
		return "", fmt.Errorf("parse signature count: %w", err)
	}
	if numSignatures == 0 {
		return "", errors.New("transaction requires no signatures")
	}

	messageStart := offset + numSignatures*signatureLen
	if messageStart >= len(raw) {
		return "", errors.New("transaction shorter than its signature table")
	}

	signature := ed25519.Sign(w.private, raw[messageStart:])
	copy(raw[offset:offset+signatureLen], signature)

	return base64.StdEncoding.EncodeToString(raw), nil
}

// decodeCompactU16 reads Solana's compact-u16 length prefix and returns the
// value plus the number of bytes consumed.
func decodeCompactU16(data []byte) (int, int, error) {
	value := 0
	for i := 0; i < 3; i++ {
		if i >= len(data) {
			return 0, 0, errors.New("truncated compact-u16")
		}
		b := int(data[i])
		value |= (b & 0x7f) << (7 * i)
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, 0, errors.New("compact-u16 too long")
}
