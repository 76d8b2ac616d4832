package flags

import (
	"github.com/urfave/cli/v2"

	"github.com/xylophonez/bundler/bundle"
	"github.com/xylophonez/bundler/gateway"
)

const EnvVarPrefix = "BUNDLER"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	RPCURLFlag = &cli.StringFlag{
		Name:    "rpc-url",
		Usage:   "JSON-RPC endpoint of the target network",
		EnvVars: prefixEnvVars("RPC_URL"),
	}
	PrivateKeyFlag = &cli.StringFlag{
		Name:    "private-key",
		Usage:   "Hex-encoded private key used to sign envelopes and the outer transaction",
		EnvVars: prefixEnvVars("PRIVATE_KEY"),
	}
	ChainIDFlag = &cli.Uint64Flag{
		Name:    "chain-id",
		Usage:   "Chain id stamped on every envelope and the outer transaction",
		Value:   gateway.DefaultChainID,
		EnvVars: prefixEnvVars("CHAIN_ID"),
	}
	RecipientFlag = &cli.StringFlag{
		Name:    "recipient",
		Usage:   "Well-known address every bundle transaction is sent to",
		Value:   gateway.DefaultRecipient.Hex(),
		EnvVars: prefixEnvVars("RECIPIENT"),
	}
	GasLimitFlag = &cli.Uint64Flag{
		Name:    "gas-limit",
		Usage:   "Fixed gas limit of the outer transaction",
		Value:   gateway.DefaultGasLimit,
		EnvVars: prefixEnvVars("GAS_LIMIT"),
	}
	GasTipCapFlag = &cli.Uint64Flag{
		Name:    "gas-tip-cap",
		Usage:   "Fixed priority fee of the outer transaction, in wei",
		Value:   gateway.DefaultGasTipCap.Uint64(),
		EnvVars: prefixEnvVars("GAS_TIP_CAP"),
	}
	GasFeeCapFlag = &cli.Uint64Flag{
		Name:    "gas-fee-cap",
		Usage:   "Fixed max fee of the outer transaction, in wei",
		Value:   gateway.DefaultGasFeeCap.Uint64(),
		EnvVars: prefixEnvVars("GAS_FEE_CAP"),
	}
	CompressionFlag = &cli.StringFlag{
		Name:    "compression",
		Usage:   "Compression codec for bundle calldata (brotli or snappy)",
		Value:   bundle.CodecBrotli.String(),
		EnvVars: prefixEnvVars("COMPRESSION"),
	}
	ConcurrencyFlag = &cli.IntFlag{
		Name:    "concurrency",
		Usage:   "Max concurrent envelope signings, <=0 for unbounded",
		Value:   bundle.DefaultConcurrency,
		EnvVars: prefixEnvVars("CONCURRENCY"),
	}
	RPCEnabledFlag = &cli.BoolFlag{
		Name:    "rpc.enabled",
		Usage:   "Serve the bundler JSON-RPC API",
		EnvVars: prefixEnvVars("RPC_ENABLED"),
	}
	RPCListenAddrFlag = &cli.StringFlag{
		Name:    "rpc.addr",
		Usage:   "RPC listening address",
		Value:   "0.0.0.0",
		EnvVars: prefixEnvVars("RPC_ADDR"),
	}
	RPCListenPortFlag = &cli.IntFlag{
		Name:    "rpc.port",
		Usage:   "RPC listening port",
		Value:   8552,
		EnvVars: prefixEnvVars("RPC_PORT"),
	}
	LogLevelFlag = &cli.StringFlag{
		Name:    "log.level",
		Usage:   "Lowest log level that will be output",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
	}
)

var Flags []cli.Flag

func init() {
	Flags = []cli.Flag{
		RPCURLFlag,
		PrivateKeyFlag,
		ChainIDFlag,
		RecipientFlag,
		GasLimitFlag,
		GasTipCapFlag,
		GasFeeCapFlag,
		CompressionFlag,
		ConcurrencyFlag,
		RPCEnabledFlag,
		RPCListenAddrFlag,
		RPCListenPortFlag,
		LogLevelFlag,
	}
}
