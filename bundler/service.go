package bundler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/xylophonez/bundler/bundle"
	"github.com/xylophonez/bundler/gateway"
)

// Service wires the assembly pipeline to the chain gateway: sign, encode,
// compress, broadcast on the way out; fetch, decompress, decode, validate on
// the way back.
type Service struct {
	Log     log.Logger
	Version string

	signer    bundle.Signer
	assembler *bundle.Assembler
	gateway   gateway.Gateway
	codec     bundle.Codec

	client     *gateway.Client
	rpcServer  *gethrpc.Server
	httpServer *http.Server

	stopped atomic.Bool
}

func NewService(ctx context.Context, version string, cfg *CLIConfig, logger log.Logger) (*Service, error) {
	var s Service
	if err := s.initFromCLIConfig(ctx, version, cfg, logger); err != nil {
		return nil, errors.Join(err, s.Stop(ctx))
	}
	return &s, nil
}

func (s *Service) initFromCLIConfig(ctx context.Context, version string, cfg *CLIConfig, logger log.Logger) error {
	s.Version = version
	s.Log = logger

	if err := cfg.Check(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	signer, err := bundle.NewKeySigner(cfg.PrivateKey)
	if err != nil {
		return err
	}
	s.signer = signer
	s.codec, _ = bundle.CodecByName(cfg.Compression)
	s.assembler = bundle.NewAssembler(logger, cfg.ChainID, cfg.Concurrency)

	client, err := gateway.Dial(ctx, cfg.RPCURL, cfg.GatewayConfig(), logger)
	if err != nil {
		return err
	}
	s.client = client
	s.gateway = client

	if err := s.initRPCServer(cfg); err != nil {
		return fmt.Errorf("failed to start RPC server: %w", err)
	}
	return nil
}

func (s *Service) initRPCServer(cfg *CLIConfig) error {
	if !cfg.RPCEnabled {
		return nil
	}
	server := gethrpc.NewServer()
	api := GetBundlerAPI(NewBundlerAPI(s))
	if err := server.RegisterName(api.Namespace, api.Service); err != nil {
		return fmt.Errorf("failed to register %s namespace: %w", api.Namespace, err)
	}

	addr := net.JoinHostPort(cfg.RPCListenAddr, strconv.Itoa(cfg.RPCListenPort))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.rpcServer = server
	s.httpServer = &http.Server{Handler: server}
	s.Log.Info("starting RPC server", "addr", addr)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Log.Error("RPC server failed", "err", err)
		}
	}()
	return nil
}

func (s *Service) Start(ctx context.Context) error {
	s.Log.Info("starting bundler", "version", s.Version)
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	s.Log.Info("stopping bundler")
	var result error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			result = errors.Join(result, fmt.Errorf("failed to stop RPC server: %w", err))
		}
	}
	if s.rpcServer != nil {
		s.rpcServer.Stop()
	}
	if s.client != nil {
		s.client.Close()
	}
	if result == nil {
		s.stopped.Store(true)
		s.Log.Info("bundler stopped")
	}
	return result
}

func (s *Service) Stopped() bool {
	return s.stopped.Load()
}

// CreateBundle signs the specs, packs the survivors into one compressed blob
// and broadcasts it. Per-leaf signing failures shrink the bundle and are
// logged; the call only errors when nothing signed or when the broadcast
// itself fails. The call blocks until every signing task and the broadcast
// have completed.
func (s *Service) CreateBundle(ctx context.Context, specs []bundle.EnvelopeSpec) (common.Hash, error) {
	b, signErr := s.assembler.Assemble(ctx, specs, s.signer)
	if signErr != nil {
		if len(b.Envelopes) == 0 {
			return common.Hash{}, fmt.Errorf("no envelope could be signed: %w", signErr)
		}
		s.Log.Warn("continuing with partial bundle", "signed", len(b.Envelopes), "requested", len(specs), "err", signErr)
	}

	encoded, err := bundle.EncodeBundle(b)
	if err != nil {
		return common.Hash{}, err
	}
	blob, err := bundle.Compress(s.codec, encoded)
	if err != nil {
		return common.Hash{}, err
	}
	s.Log.Info("assembled bundle", "envelopes", len(b.Envelopes), "encoded", len(encoded), "compressed", len(blob), "codec", s.codec)

	return s.gateway.Broadcast(ctx, blob, s.signer)
}

// RetrieveBundle fetches an outer transaction and recovers the bundle from
// its calldata: decompress, decode, validate.
func (s *Service) RetrieveBundle(ctx context.Context, txid common.Hash) (*bundle.Bundle, error) {
	meta, err := s.gateway.Fetch(ctx, txid)
	if err != nil {
		return nil, err
	}
	raw, err := hexutil.Decode(meta.Calldata)
	if err != nil {
		return nil, fmt.Errorf("transaction %s carries non-hex calldata: %w", txid, err)
	}
	decompressed, err := bundle.Decompress(raw)
	if err != nil {
		return nil, err
	}
	b, err := bundle.DecodeBundle(decompressed)
	if err != nil {
		return nil, err
	}
	if err := bundle.ValidateBundle(b); err != nil {
		return nil, err
	}
	return b, nil
}

// RetrieveTransaction returns the raw metadata of any transaction, bundle or
// not.
func (s *Service) RetrieveTransaction(ctx context.Context, txid common.Hash) (*gateway.OuterTxMetadata, error) {
	return s.gateway.Fetch(ctx, txid)
}
