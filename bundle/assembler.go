package bundle

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the signing fan-out when no explicit limit is
// configured.
const DefaultConcurrency = 16

// Assembler signs leaf specs concurrently and collects the survivors into a
// bundle. The signer and chain id are read-only during assembly, so signing
// tasks share them without locking.
type Assembler struct {
	log         log.Logger
	chainID     uint64
	concurrency int
}

// NewAssembler builds an assembler with the given fan-out bound. A
// non-positive concurrency removes the bound, one task per spec.
func NewAssembler(logger log.Logger, chainID uint64, concurrency int) *Assembler {
	return &Assembler{
		log:         logger,
		chainID:     chainID,
		concurrency: concurrency,
	}
}

// Assemble signs every spec and returns the bundle of envelopes that signed
// successfully, preserving the relative input order. Failed leaves shrink the
// bundle instead of aborting it; they are reported through the returned
// *multierror.Error, indexed by their position in specs. The bundle is always
// non-nil, even when every leaf fails. Assemble waits for all in-flight tasks
// before returning; ctx cancellation only stops tasks that have not started.
func (a *Assembler) Assemble(ctx context.Context, specs []EnvelopeSpec, signer Signer) (*Bundle, error) {
	envelopes := make([]*SignedEnvelope, len(specs))
	failures := make([]error, len(specs))

	var g errgroup.Group
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}
	for i := range specs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				failures[i] = err
				return nil
			}
			env, err := BuildEnvelope(specs[i], signer, a.chainID)
			if err != nil {
				failures[i] = err
				return nil
			}
			envelopes[i] = env
			a.log.Debug("signed envelope", "index", i, "target", env.Target)
			return nil
		})
	}
	// Goroutines record failures instead of returning them, so Wait always
	// joins the full fan-out.
	_ = g.Wait()

	bundle := &Bundle{Envelopes: make([]SignedEnvelope, 0, len(specs))}
	var merr *multierror.Error
	for i, env := range envelopes {
		if failures[i] != nil {
			a.log.Warn("dropping envelope from bundle", "index", i, "err", failures[i])
			merr = multierror.Append(merr, fmt.Errorf("envelope %d: %w", i, failures[i]))
			continue
		}
		bundle.Envelopes = append(bundle.Envelopes, *env)
	}
	return bundle, merr.ErrorOrNil()
}
