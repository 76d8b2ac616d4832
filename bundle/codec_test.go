package bundle

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

var bundleCmpOpts = []cmp.Option{
	cmp.Comparer(func(a, b *big.Int) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.Cmp(b) == 0
	}),
	cmpopts.EquateEmpty(),
}

func testBundle() *Bundle {
	return &Bundle{Envelopes: []SignedEnvelope{
		{
			Target:    common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
			Value:     new(big.Int),
			ChainID:   testChainID,
			Data:      []byte("first payload"),
			Signature: make([]byte, 65),
		},
		{
			// zero target, duplicate payloads are allowed
			Value:     big.NewInt(42),
			ChainID:   testChainID,
			Data:      []byte("first payload"),
			Signature: []byte{0xaa, 0xbb},
		},
		{
			Nonce:    7,
			GasLimit: 21000,
			GasPrice: 1,
			Target:   common.HexToAddress("0x01"),
			Value:    new(big.Int).Lsh(big.NewInt(1), 200),
			ChainID:  testChainID,
			Data:     []byte{0x00},
		},
	}}
}

func TestBundleCodecRoundTrip(t *testing.T) {
	b := testBundle()
	encoded, err := EncodeBundle(b)
	require.NoError(t, err)

	decoded, err := DecodeBundle(encoded)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(b, decoded, bundleCmpOpts...))
}

func TestBundleCodecEmpty(t *testing.T) {
	encoded, err := EncodeBundle(&Bundle{})
	require.NoError(t, err)
	require.Len(t, encoded, 4)

	decoded, err := DecodeBundle(encoded)
	require.NoError(t, err)
	require.Empty(t, decoded.Envelopes)
	require.Empty(t, cmp.Diff(&Bundle{}, decoded, bundleCmpOpts...))
}

func TestBundleCodecPreservesOrder(t *testing.T) {
	b := testBundle()
	encoded, err := EncodeBundle(b)
	require.NoError(t, err)

	decoded, err := DecodeBundle(encoded)
	require.NoError(t, err)
	require.Len(t, decoded.Envelopes, len(b.Envelopes))
	for i := range b.Envelopes {
		require.Equal(t, b.Envelopes[i].Target, decoded.Envelopes[i].Target, "envelope %d", i)
	}
}

func TestDecodeBundleTruncated(t *testing.T) {
	encoded, err := EncodeBundle(testBundle())
	require.NoError(t, err)

	// every strict prefix of a valid encoding must fail cleanly
	for _, cut := range []int{0, 2, 4, 12, 30, len(encoded) / 2, len(encoded) - 1} {
		_, err := DecodeBundle(encoded[:cut])
		var decErr *DecodeError
		require.ErrorAs(t, err, &decErr, "cut at %d", cut)
	}
}

func TestDecodeBundleTrailingBytes(t *testing.T) {
	encoded, err := EncodeBundle(testBundle())
	require.NoError(t, err)

	_, err = DecodeBundle(append(encoded, 0x00))
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	require.Contains(t, decErr.Error(), "trailing")
}

func TestDecodeBundleAbsurdCount(t *testing.T) {
	// count prefix claims 4 billion envelopes with no body behind it
	data := binary.LittleEndian.AppendUint32(nil, 0xffffffff)
	_, err := DecodeBundle(data)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
}

func TestDecodeBundleGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, {0x01}, {0xde, 0xad, 0xbe, 0xef, 0x01}} {
		_, err := DecodeBundle(data)
		require.Error(t, err)
	}
}

func TestEncodeBundleValueOutOfRange(t *testing.T) {
	b := &Bundle{Envelopes: []SignedEnvelope{{
		Value:   new(big.Int).Lsh(big.NewInt(1), 256),
		ChainID: testChainID,
		Data:    []byte{1},
	}}}
	_, err := EncodeBundle(b)
	require.Error(t, err)

	b.Envelopes[0].Value = big.NewInt(-1)
	_, err = EncodeBundle(b)
	require.Error(t, err)
}
