package gateway

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/xylophonez/bundler/bundle"
)

// ErrNotFound is returned by Fetch when the transaction hash does not
// resolve on chain.
var ErrNotFound = errors.New("transaction not found")

// OuterTxMetadata is the raw shape of any fetched transaction, bundle or
// not. BlockNumber is a decimal string; BlockHash and Calldata keep their
// 0x-prefixed hex form.
type OuterTxMetadata struct {
	BlockHash   string `json:"blockHash"`
	BlockNumber string `json:"blockNumber"`
	Calldata    string `json:"calldata"`
	To          string `json:"to"`
}

// Gateway is the chain boundary the core depends on: one broadcast, one
// fetch. Transport, retries and chain-state interpretation live behind it.
type Gateway interface {
	// Broadcast submits blob as the calldata of a new outer transaction to
	// the configured recipient with the configured gas parameters.
	Broadcast(ctx context.Context, blob []byte, signer bundle.Signer) (common.Hash, error)
	// Fetch returns the metadata of any transaction by hash, ErrNotFound if
	// the hash does not resolve.
	Fetch(ctx context.Context, txid common.Hash) (*OuterTxMetadata, error)
}

// Config carries the fixed outer-transaction parameters. They are not
// caller-tunable: every bundle transaction on a deployment uses the same
// recipient and gas settings.
type Config struct {
	ChainID   uint64
	Recipient common.Address
	GasLimit  uint64
	GasTipCap *big.Int
	GasFeeCap *big.Int
}

// Default outer-transaction parameters for the Load Network bundle inbox.
var (
	DefaultRecipient = common.HexToAddress("0xbabe1d25501157043c7b4ea7cbc877b9b4d8a057")

	DefaultChainID   = uint64(9496)
	DefaultGasLimit  = uint64(490_000_000)
	DefaultGasTipCap = big.NewInt(1_000_000_000)
	DefaultGasFeeCap = big.NewInt(2_000_000_000)
)

// DefaultConfig returns the deployment defaults; callers override per network.
func DefaultConfig() Config {
	return Config{
		ChainID:   DefaultChainID,
		Recipient: DefaultRecipient,
		GasLimit:  DefaultGasLimit,
		GasTipCap: DefaultGasTipCap,
		GasFeeCap: DefaultGasFeeCap,
	}
}
