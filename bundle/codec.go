package bundle

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Wire layout, all integers little-endian:
//
//	u32 envelope count
//	per envelope:
//	  u64 nonce | u64 gas limit | u64 gas price
//	  20-byte target | 32-byte big-endian value | u64 chain id
//	  u32 payload length | payload
//	  u32 signature length | signature
//
// The format is a structural mirror of the Bundle: no reordering, no
// deduplication, no reinterpretation.

const valueSize = 32

// minimum bytes one record can occupy, used to reject absurd counts before
// allocating.
const minRecordSize = 8*4 + common.AddressLength + valueSize + 4 + 4

// EncodeBundle serializes a bundle, empty included, into the wire layout.
func EncodeBundle(b *Bundle) ([]byte, error) {
	if uint64(len(b.Envelopes)) > math.MaxUint32 {
		return nil, fmt.Errorf("encode bundle: %d envelopes exceed the count prefix", len(b.Envelopes))
	}
	buf := binary.LittleEndian.AppendUint32(nil, uint32(len(b.Envelopes)))
	for i := range b.Envelopes {
		var err error
		buf, err = appendEnvelope(buf, &b.Envelopes[i])
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func appendEnvelope(buf []byte, e *SignedEnvelope) ([]byte, error) {
	buf = binary.LittleEndian.AppendUint64(buf, e.Nonce)
	buf = binary.LittleEndian.AppendUint64(buf, e.GasLimit)
	buf = binary.LittleEndian.AppendUint64(buf, e.GasPrice)
	buf = append(buf, e.Target.Bytes()...)

	value := e.Value
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 || value.BitLen() > 8*valueSize {
		return nil, fmt.Errorf("encode bundle: envelope value out of range")
	}
	var val [valueSize]byte
	value.FillBytes(val[:])
	buf = append(buf, val[:]...)

	buf = binary.LittleEndian.AppendUint64(buf, e.ChainID)
	var err error
	if buf, err = appendBytes(buf, e.Data, "payload"); err != nil {
		return nil, err
	}
	if buf, err = appendBytes(buf, e.Signature, "signature"); err != nil {
		return nil, err
	}
	return buf, nil
}

func appendBytes(buf, b []byte, field string) ([]byte, error) {
	if uint64(len(b)) > math.MaxUint32 {
		return nil, fmt.Errorf("encode bundle: %s exceeds the length prefix", field)
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(b)))
	return append(buf, b...), nil
}

// DecodeBundle reconstructs the ordered envelope list from wire bytes. Input
// may be adversarial; truncated or trailing data yields a *DecodeError,
// never a panic.
func DecodeBundle(data []byte) (*Bundle, error) {
	d := &decoder{buf: data}
	count, err := d.u32("envelope count")
	if err != nil {
		return nil, err
	}
	if uint64(count)*minRecordSize > uint64(len(data)) {
		return nil, &DecodeError{Field: "envelope count too large", Offset: 0}
	}

	b := &Bundle{Envelopes: make([]SignedEnvelope, 0, count)}
	for i := uint32(0); i < count; i++ {
		env, err := d.envelope()
		if err != nil {
			return nil, err
		}
		b.Envelopes = append(b.Envelopes, *env)
	}
	if d.off != len(data) {
		return nil, &DecodeError{Field: "trailing bytes", Offset: d.off}
	}
	return b, nil
}

type decoder struct {
	buf []byte
	off int
}

func (d *decoder) take(n int, field string) ([]byte, error) {
	if len(d.buf)-d.off < n {
		return nil, &DecodeError{Field: field + " truncated", Offset: d.off}
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) u32(field string) (uint32, error) {
	b, err := d.take(4, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *decoder) u64(field string) (uint64, error) {
	b, err := d.take(8, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *decoder) bytes(field string) ([]byte, error) {
	n, err := d.u32(field + " length")
	if err != nil {
		return nil, err
	}
	b, err := d.take(int(n), field)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

func (d *decoder) envelope() (*SignedEnvelope, error) {
	var env SignedEnvelope
	var err error
	if env.Nonce, err = d.u64("nonce"); err != nil {
		return nil, err
	}
	if env.GasLimit, err = d.u64("gas limit"); err != nil {
		return nil, err
	}
	if env.GasPrice, err = d.u64("gas price"); err != nil {
		return nil, err
	}
	target, err := d.take(common.AddressLength, "target")
	if err != nil {
		return nil, err
	}
	env.Target = common.BytesToAddress(target)
	value, err := d.take(valueSize, "value")
	if err != nil {
		return nil, err
	}
	env.Value = new(big.Int).SetBytes(value)
	if env.ChainID, err = d.u64("chain id"); err != nil {
		return nil, err
	}
	data, err := d.bytes("payload")
	if err != nil {
		return nil, err
	}
	env.Data = data
	sig, err := d.bytes("signature")
	if err != nil {
		return nil, err
	}
	env.Signature = sig
	return &env, nil
}
