package bundle

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// Well-known test key, never funded on a real network.
const (
	testKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testKeyAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testChainID = uint64(9496)
)

func testSigner(t *testing.T) *KeySigner {
	t.Helper()
	signer, err := NewKeySigner(testKey)
	require.NoError(t, err)
	return signer
}

func TestNewKeySigner(t *testing.T) {
	signer := testSigner(t)
	require.Equal(t, common.HexToAddress(testKeyAddr), signer.Address())

	prefixed, err := NewKeySigner("0x" + testKey)
	require.NoError(t, err)
	require.Equal(t, signer.Address(), prefixed.Address())

	_, err = NewKeySigner("not a key")
	require.ErrorIs(t, err, ErrSignerInvalid)
}

func TestBuildEnvelope(t *testing.T) {
	signer := testSigner(t)
	target := "0x5FbDB2315678afecb367f032d93F642f64180aa3"

	env, err := BuildEnvelope(EnvelopeSpec{Target: target, Data: []byte("hello")}, signer, testChainID)
	require.NoError(t, err)

	require.Zero(t, env.Nonce)
	require.Zero(t, env.GasLimit)
	require.Zero(t, env.GasPrice)
	require.Zero(t, env.Value.Sign())
	require.Equal(t, testChainID, env.ChainID)
	require.Equal(t, common.HexToAddress(target), env.Target)
	require.Equal(t, []byte("hello"), []byte(env.Data))
	require.Len(t, env.Signature, 65)

	recovered, err := env.SignerAddress()
	require.NoError(t, err)
	require.Equal(t, signer.Address(), recovered)
}

func TestBuildEnvelopeTargetDefaultsToZero(t *testing.T) {
	signer := testSigner(t)

	for _, target := range []string{"", "not-an-address", "0x123"} {
		env, err := BuildEnvelope(EnvelopeSpec{Target: target, Data: []byte{1}}, signer, testChainID)
		require.NoError(t, err, "target %q", target)
		require.Equal(t, common.Address{}, env.Target)
	}
}

func TestBuildEnvelopeErrors(t *testing.T) {
	signer := testSigner(t)

	_, err := BuildEnvelope(EnvelopeSpec{Target: "0x5FbDB2315678afecb367f032d93F642f64180aa3"}, signer, testChainID)
	require.ErrorIs(t, err, ErrDataRequired)

	_, err = BuildEnvelope(EnvelopeSpec{Data: []byte{1}}, nil, testChainID)
	require.ErrorIs(t, err, ErrSignerRequired)
}

func TestBuildEnvelopeDoesNotAliasSpecData(t *testing.T) {
	signer := testSigner(t)
	data := []byte{1, 2, 3}

	env, err := BuildEnvelope(EnvelopeSpec{Data: data}, signer, testChainID)
	require.NoError(t, err)

	data[0] = 9
	require.Equal(t, []byte{1, 2, 3}, []byte(env.Data))
}

func TestSigHashCoversAllFields(t *testing.T) {
	base := SignedEnvelope{Data: []byte{1}, ChainID: testChainID}
	mutations := map[string]SignedEnvelope{
		"nonce":    {Nonce: 1, Data: []byte{1}, ChainID: testChainID},
		"gasLimit": {GasLimit: 1, Data: []byte{1}, ChainID: testChainID},
		"gasPrice": {GasPrice: 1, Data: []byte{1}, ChainID: testChainID},
		"target":   {Target: common.HexToAddress("0x01"), Data: []byte{1}, ChainID: testChainID},
		"data":     {Data: []byte{2}, ChainID: testChainID},
		"chainId":  {Data: []byte{1}, ChainID: testChainID + 1},
	}
	for field, mutated := range mutations {
		require.NotEqual(t, base.SigHash(), mutated.SigHash(), "changing %s must change the signing hash", field)
	}
}
