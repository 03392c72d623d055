package crypto

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/immanchand/demo-base-onchain-app-sub000/pkg/errors"
)

const testMessage = "I agree to the arcade terms"

func signPayload(t *testing.T, message string, walletV bool) (string, string) {
	t.Helper()
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	sig, err := ethcrypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	if walletV {
		sig[64] += 27
	}

	raw, err := json.Marshal(SignaturePayload{Message: message, Signature: hexutil.Encode(sig)})
	require.NoError(t, err)

	return string(raw), ethcrypto.PubkeyToAddress(key.PublicKey).Hex()
}

func TestBindAndVerify(t *testing.T) {
	binder := NewIdentityBinder(testMessage)
	payload, address := signPayload(t, testMessage, true)

	recovered, err := binder.BindAndVerify(payload, address)
	require.NoError(t, err)
	assert.Equal(t, address, recovered)

	// Address comparison is case-insensitive; the result is checksummed.
	recovered, err = binder.BindAndVerify(payload, strings.ToLower(address))
	require.NoError(t, err)
	assert.Equal(t, address, recovered)
}

func TestBindAndVerifyRawV(t *testing.T) {
	// Some signers return V as 0/1 already.
	binder := NewIdentityBinder(testMessage)
	payload, address := signPayload(t, testMessage, false)

	recovered, err := binder.BindAndVerify(payload, address)
	require.NoError(t, err)
	assert.Equal(t, address, recovered)
}

func TestBindAndVerifyRejections(t *testing.T) {
	binder := NewIdentityBinder(testMessage)
	payload, address := signPayload(t, testMessage, true)

	_, err := binder.BindAndVerify("", address)
	assert.ErrorIs(t, err, apperrors.ErrMissingSignature)

	_, err = binder.BindAndVerify("not json", address)
	assert.ErrorIs(t, err, apperrors.ErrMalformedPayload)

	_, err = binder.BindAndVerify(`{"message":"x","signature":""}`, address)
	assert.ErrorIs(t, err, apperrors.ErrMissingSignature)

	_, err = binder.BindAndVerify(`{"message":"x","signature":"0x00"}`, address)
	assert.ErrorIs(t, err, apperrors.ErrMalformedPayload)

	// Signing a different message than the binder expects.
	other, otherAddr := signPayload(t, "something else", true)
	_, err = binder.BindAndVerify(other, otherAddr)
	assert.ErrorIs(t, err, apperrors.ErrMalformedPayload)

	// Valid signature, wrong claimed address.
	_, err = binder.BindAndVerify(payload, "0x0000000000000000000000000000000000000001")
	assert.ErrorIs(t, err, apperrors.ErrAddressMismatch)

	_, err = binder.BindAndVerify(payload, "")
	assert.ErrorIs(t, err, apperrors.ErrAddressMismatch)
}

func TestTokenGenerator(t *testing.T) {
	gen := NewTokenGenerator()

	a, err := gen.GenerateCSRFToken(32)
	require.NoError(t, err)
	b, err := gen.GenerateCSRFToken(32)
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
