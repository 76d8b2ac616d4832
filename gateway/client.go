package gateway

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/xylophonez/bundler/bundle"
)

// Client implements Gateway over a single JSON-RPC endpoint.
type Client struct {
	cfg Config
	log log.Logger
	rpc *rpc.Client
	eth *ethclient.Client
}

var _ Gateway = (*Client)(nil)

// Dial connects to rpcURL and wraps it as a gateway client.
func Dial(ctx context.Context, rpcURL string, cfg Config, logger log.Logger) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc endpoint: %w", err)
	}
	return NewClient(rpcClient, cfg, logger), nil
}

// NewClient wraps an existing rpc client; useful for tests and shared
// connections.
func NewClient(rpcClient *rpc.Client, cfg Config, logger log.Logger) *Client {
	return &Client{
		cfg: cfg,
		log: logger,
		rpc: rpcClient,
		eth: ethclient.NewClient(rpcClient),
	}
}

func (c *Client) Close() {
	c.rpc.Close()
}

// Broadcast sends blob as the calldata of one outer transaction. The nonce is
// the signer's pending nonce; everything else comes from the fixed config.
// Errors propagate unchanged, there is no retry.
func (c *Client) Broadcast(ctx context.Context, blob []byte, signer bundle.Signer) (common.Hash, error) {
	if signer == nil {
		return common.Hash{}, bundle.ErrSignerRequired
	}

	nonce, err := c.eth.PendingNonceAt(ctx, signer.Address())
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	chainID := new(big.Int).SetUint64(c.cfg.ChainID)
	recipient := c.cfg.Recipient
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: c.cfg.GasTipCap,
		GasFeeCap: c.cfg.GasFeeCap,
		Gas:       c.cfg.GasLimit,
		To:        &recipient,
		Value:     new(big.Int),
		Data:      blob,
	})
	signed, err := signer.SignTx(tx, chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign outer transaction: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to broadcast outer transaction: %w", err)
	}
	c.log.Info("broadcast bundle transaction", "tx", signed.Hash(), "size", len(blob), "to", recipient)
	return signed.Hash(), nil
}

// rpcTransaction is the subset of eth_getTransactionByHash we care about.
// Block fields are pointers: they stay nil while the transaction is pending.
type rpcTransaction struct {
	BlockHash   *common.Hash    `json:"blockHash"`
	BlockNumber *hexutil.Big    `json:"blockNumber"`
	Input       hexutil.Bytes   `json:"input"`
	To          *common.Address `json:"to"`
}

// Fetch returns the metadata of any transaction by hash, whether or not it
// carries a bundle.
func (c *Client) Fetch(ctx context.Context, txid common.Hash) (*OuterTxMetadata, error) {
	var result *rpcTransaction
	if err := c.rpc.CallContext(ctx, &result, "eth_getTransactionByHash", txid); err != nil {
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", txid, err)
	}
	if result == nil {
		return nil, fmt.Errorf("transaction %s: %w", txid, ErrNotFound)
	}

	meta := &OuterTxMetadata{
		BlockHash:   "0x",
		BlockNumber: "0",
		Calldata:    hexutil.Encode(result.Input),
		To:          common.Address{}.Hex(),
	}
	if result.BlockHash != nil {
		meta.BlockHash = result.BlockHash.Hex()
	}
	if result.BlockNumber != nil {
		meta.BlockNumber = result.BlockNumber.ToInt().String()
	}
	if result.To != nil {
		meta.To = result.To.Hex()
	}
	return meta, nil
}
