package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/slog"

	"github.com/xylophonez/bundler/bundle"
	"github.com/xylophonez/bundler/bundler"
	"github.com/xylophonez/bundler/flags"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
)

func main() {
	app := cli.NewApp()
	app.Name = "bundler"
	app.Usage = "packs independently-signed envelopes into single-transaction bundles"
	app.Version = version()
	app.Flags = flags.Flags
	app.Commands = []*cli.Command{
		{
			Name:      "send",
			Usage:     "sign the given envelopes and broadcast them as one bundle",
			ArgsUsage: "[address=]0xdata ...",
			Flags:     flags.Flags,
			Action:    sendBundle,
		},
		{
			Name:      "get",
			Usage:     "fetch a bundle transaction and print the decoded envelopes",
			ArgsUsage: "txhash",
			Flags:     flags.Flags,
			Action:    getBundle,
		},
		{
			Name:      "tx",
			Usage:     "fetch the raw metadata of any transaction",
			ArgsUsage: "txhash",
			Flags:     flags.Flags,
			Action:    getTransaction,
		},
		{
			Name:      "calldata",
			Usage:     "generate random calldata of the given length for synthetic traffic",
			ArgsUsage: "length",
			Action:    randomCalldata,
		},
	}
	app.Action = serve

	if err := app.Run(os.Args); err != nil {
		log.Crit("application failed", "message", err)
	}
}

func version() string {
	v := Version
	if GitCommit != "" {
		v += "-" + GitCommit[:8]
	}
	return v
}

func setupLogger(ctx *cli.Context) log.Logger {
	lvl := logLevel(ctx.String(flags.LogLevelFlag.Name))
	color := isatty.IsTerminal(os.Stderr.Fd())
	logger := log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, lvl, color))
	log.SetDefault(logger)
	return logger
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	case "crit":
		return log.LevelCrit
	default:
		return log.LevelInfo
	}
}

func newService(ctx *cli.Context) (*bundler.Service, error) {
	logger := setupLogger(ctx)
	return bundler.NewService(ctx.Context, version(), bundler.NewConfig(ctx), logger)
}

func serve(ctx *cli.Context) error {
	s, err := newService(ctx)
	if err != nil {
		return err
	}
	if err := s.Start(ctx.Context); err != nil {
		return err
	}

	interrupted, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-interrupted.Done()
	return s.Stop(context.Background())
}

func sendBundle(ctx *cli.Context) error {
	specs, err := parseSpecs(ctx.Args().Slice())
	if err != nil {
		return err
	}
	s, err := newService(ctx)
	if err != nil {
		return err
	}
	defer s.Stop(context.Background())

	txid, err := s.CreateBundle(ctx.Context, specs)
	if err != nil {
		return err
	}
	fmt.Println(txid.Hex())
	return nil
}

// parseSpecs reads leaf specs of the form "address=0xdata", or bare "0xdata"
// for envelopes addressed to the zero address.
func parseSpecs(args []string) ([]bundle.EnvelopeSpec, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one envelope is required")
	}
	specs := make([]bundle.EnvelopeSpec, 0, len(args))
	for _, arg := range args {
		var spec bundle.EnvelopeSpec
		raw := arg
		if target, data, found := strings.Cut(arg, "="); found {
			spec.Target = target
			raw = data
		}
		data, err := hexutil.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid envelope data %q: %w", raw, err)
		}
		spec.Data = data
		specs = append(specs, spec)
	}
	return specs, nil
}

func getBundle(ctx *cli.Context) error {
	txid, err := parseTxID(ctx)
	if err != nil {
		return err
	}
	s, err := newService(ctx)
	if err != nil {
		return err
	}
	defer s.Stop(context.Background())

	b, err := s.RetrieveBundle(ctx.Context, txid)
	if err != nil {
		return err
	}
	return printJSON(b)
}

func getTransaction(ctx *cli.Context) error {
	txid, err := parseTxID(ctx)
	if err != nil {
		return err
	}
	s, err := newService(ctx)
	if err != nil {
		return err
	}
	defer s.Stop(context.Background())

	meta, err := s.RetrieveTransaction(ctx.Context, txid)
	if err != nil {
		return err
	}
	return printJSON(meta)
}

func parseTxID(ctx *cli.Context) (common.Hash, error) {
	arg := ctx.Args().First()
	if arg == "" {
		return common.Hash{}, fmt.Errorf("transaction hash is required")
	}
	raw, err := hexutil.Decode(arg)
	if err != nil || len(raw) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid transaction hash %q", arg)
	}
	return common.BytesToHash(raw), nil
}

func randomCalldata(ctx *cli.Context) error {
	length := 10
	if arg := ctx.Args().First(); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid length %q: %w", arg, err)
		}
		length = n
	}
	fmt.Println(bundle.RandomCalldata(length))
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
