package bundle

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// EnvelopeSpec describes one leaf payload to be signed into a bundle. Target
// is optional; anything that does not parse as an address resolves to the
// zero address.
type EnvelopeSpec struct {
	Target string        `json:"target,omitempty"`
	Data   hexutil.Bytes `json:"data"`
}

// SignedEnvelope is one leaf transaction inside a bundle. Leaves are never
// broadcast on their own: nonce, gas limit and gas price stay zero as
// sentinels, with fees paid by the wrapping transaction. An envelope is
// immutable once built.
type SignedEnvelope struct {
	Nonce     uint64         `json:"nonce"`
	GasLimit  uint64         `json:"gasLimit"`
	GasPrice  uint64         `json:"gasPrice"`
	Target    common.Address `json:"target"`
	Value     *big.Int       `json:"value"`
	ChainID   uint64         `json:"chainId"`
	Data      hexutil.Bytes  `json:"data"`
	Signature hexutil.Bytes  `json:"signature"`
}

// Bundle is an ordered sequence of signed envelopes. Order is the insertion
// order produced by the assembler; duplicate targets and payloads are
// allowed.
type Bundle struct {
	Envelopes []SignedEnvelope `json:"envelopes"`
}

type sigHashFields struct {
	Nonce    uint64
	GasPrice uint64
	Gas      uint64
	To       common.Address
	Value    *big.Int
	Data     []byte
	ChainID  uint64
}

// SigHash is the signing preimage for the envelope: the keccak256 of the RLP
// encoding of all fields except the signature itself.
func (e *SignedEnvelope) SigHash() common.Hash {
	value := e.Value
	if value == nil {
		value = new(big.Int)
	}
	enc, err := rlp.EncodeToBytes(&sigHashFields{
		Nonce:    e.Nonce,
		GasPrice: e.GasPrice,
		Gas:      e.GasLimit,
		To:       e.Target,
		Value:    value,
		Data:     e.Data,
		ChainID:  e.ChainID,
	})
	if err != nil {
		// All field types are RLP-encodable; this cannot fail at runtime.
		panic(err)
	}
	return crypto.Keccak256Hash(enc)
}

// SignerAddress recovers the address that signed the envelope.
func (e *SignedEnvelope) SignerAddress() (common.Address, error) {
	pub, err := crypto.SigToPub(e.SigHash().Bytes(), e.Signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover envelope signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// BuildEnvelope signs one leaf spec into an envelope carrying the sentinel
// zero fields. It performs a signature but has no other observable side
// effect.
func BuildEnvelope(spec EnvelopeSpec, signer Signer, chainID uint64) (*SignedEnvelope, error) {
	if signer == nil {
		return nil, ErrSignerRequired
	}
	if len(spec.Data) == 0 {
		return nil, ErrDataRequired
	}

	var target common.Address
	if common.IsHexAddress(spec.Target) {
		target = common.HexToAddress(spec.Target)
	}

	env := &SignedEnvelope{
		Target:  target,
		Value:   new(big.Int),
		ChainID: chainID,
		Data:    append(hexutil.Bytes(nil), spec.Data...),
	}
	sig, err := signer.SignHash(env.SigHash())
	if err != nil {
		return nil, fmt.Errorf("failed to sign envelope: %w", err)
	}
	env.Signature = sig
	return env, nil
}
