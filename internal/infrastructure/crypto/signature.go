package crypto

import (
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	apperrors "github.com/immanchand/demo-base-onchain-app-sub000/pkg/errors"
)

// SignaturePayload mirrors the gameSig cookie produced by the wallet:
// a personal-sign message plus the 65-byte signature, both hex/plain.
type SignaturePayload struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// IdentityBinder proves a caller controls the wallet address it claims
// to act as, by recovering the signer of an EIP-191 prefixed message.
type IdentityBinder struct {
	// expectedMessage is the fixed message wallets must have signed.
	// It carries no nonce, so a captured payload stays valid until
	// the session expires.
	expectedMessage string
}

// NewIdentityBinder creates a binder for the configured message.
func NewIdentityBinder(expectedMessage string) *IdentityBinder {
	return &IdentityBinder{expectedMessage: expectedMessage}
}

// BindAndVerify parses the raw cookie payload, recovers the signing
// address and compares it case-insensitively to claimedAddress.
// Returns the recovered address in checksum form. No retry happens
// server-side; every failure means the client must re-sign.
func (b *IdentityBinder) BindAndVerify(rawPayload, claimedAddress string) (string, error) {
	if rawPayload == "" {
		return "", apperrors.ErrMissingSignature
	}

	var payload SignaturePayload
	if err := json.Unmarshal([]byte(rawPayload), &payload); err != nil {
		return "", apperrors.Wrap(apperrors.ErrMalformedPayload, err.Error())
	}
	if payload.Signature == "" {
		return "", apperrors.ErrMissingSignature
	}
	if b.expectedMessage != "" && payload.Message != b.expectedMessage {
		return "", apperrors.ErrMalformedPayload
	}

	sig, err := hexutil.Decode(payload.Signature)
	if err != nil || len(sig) != 65 {
		return "", apperrors.ErrMalformedPayload
	}

	// Wallets return V as 27/28; go-ethereum expects 0/1.
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	hash := accounts.TextHash([]byte(payload.Message))
	pub, err := ethcrypto.SigToPub(hash, sig)
	if err != nil {
		return "", apperrors.ErrMalformedPayload
	}

	recovered := ethcrypto.PubkeyToAddress(*pub)
	if claimedAddress == "" || !strings.EqualFold(recovered.Hex(), claimedAddress) {
		return "", apperrors.ErrAddressMismatch
	}

	return recovered.Hex(), nil
}
