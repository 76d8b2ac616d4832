package bundler

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/xylophonez/bundler/bundle"
	"github.com/xylophonez/bundler/gateway"
)

const APINamespace = "bundler"

type Backend interface {
	CreateBundle(ctx context.Context, specs []bundle.EnvelopeSpec) (common.Hash, error)
	RetrieveBundle(ctx context.Context, txid common.Hash) (*bundle.Bundle, error)
	RetrieveTransaction(ctx context.Context, txid common.Hash) (*gateway.OuterTxMetadata, error)
}

type bundlerAPI struct {
	b Backend
}

func NewBundlerAPI(b Backend) *bundlerAPI {
	return &bundlerAPI{b: b}
}

func GetBundlerAPI(api *bundlerAPI) gethrpc.API {
	return gethrpc.API{
		Namespace: APINamespace,
		Service:   api,
	}
}

func (api *bundlerAPI) SendBundle(ctx context.Context, specs []bundle.EnvelopeSpec) (common.Hash, error) {
	return api.b.CreateBundle(ctx, specs)
}

func (api *bundlerAPI) GetBundle(ctx context.Context, txid common.Hash) (*bundle.Bundle, error) {
	return api.b.RetrieveBundle(ctx, txid)
}

func (api *bundlerAPI) GetTransaction(ctx context.Context, txid common.Hash) (*gateway.OuterTxMetadata, error) {
	return api.b.RetrieveTransaction(ctx, txid)
}
