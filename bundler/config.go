package bundler

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/xylophonez/bundler/bundle"
	"github.com/xylophonez/bundler/flags"
	"github.com/xylophonez/bundler/gateway"
)

type CLIConfig struct {
	RPCURL     string
	PrivateKey string

	ChainID   uint64
	Recipient string
	GasLimit  uint64
	GasTipCap uint64
	GasFeeCap uint64

	Compression string
	Concurrency int

	RPCEnabled    bool
	RPCListenAddr string
	RPCListenPort int
}

func NewConfig(ctx *cli.Context) *CLIConfig {
	return &CLIConfig{
		RPCURL:     ctx.String(flags.RPCURLFlag.Name),
		PrivateKey: ctx.String(flags.PrivateKeyFlag.Name),

		ChainID:   ctx.Uint64(flags.ChainIDFlag.Name),
		Recipient: ctx.String(flags.RecipientFlag.Name),
		GasLimit:  ctx.Uint64(flags.GasLimitFlag.Name),
		GasTipCap: ctx.Uint64(flags.GasTipCapFlag.Name),
		GasFeeCap: ctx.Uint64(flags.GasFeeCapFlag.Name),

		Compression: ctx.String(flags.CompressionFlag.Name),
		Concurrency: ctx.Int(flags.ConcurrencyFlag.Name),

		RPCEnabled:    ctx.Bool(flags.RPCEnabledFlag.Name),
		RPCListenAddr: ctx.String(flags.RPCListenAddrFlag.Name),
		RPCListenPort: ctx.Int(flags.RPCListenPortFlag.Name),
	}
}

func (c *CLIConfig) Check() error {
	if c.RPCURL == "" {
		return errors.New("rpc url is required")
	}
	if c.PrivateKey == "" {
		return errors.New("private key is required")
	}
	if !common.IsHexAddress(c.Recipient) {
		return fmt.Errorf("invalid recipient address %q", c.Recipient)
	}
	if _, err := bundle.CodecByName(c.Compression); err != nil {
		return err
	}
	return nil
}

// GatewayConfig projects the CLI config onto the fixed outer-transaction
// parameters.
func (c *CLIConfig) GatewayConfig() gateway.Config {
	return gateway.Config{
		ChainID:   c.ChainID,
		Recipient: common.HexToAddress(c.Recipient),
		GasLimit:  c.GasLimit,
		GasTipCap: new(big.Int).SetUint64(c.GasTipCap),
		GasFeeCap: new(big.Int).SetUint64(c.GasFeeCap),
	}
}
