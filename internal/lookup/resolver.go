package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultTimeout bounds each provider call when ResolverConfig.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// ResolverConfig tunes a Resolver.
type ResolverConfig struct {
	// Timeout bounds each provider call.
	Timeout time.Duration
	// MaxInFlight caps concurrent lookups per kind. Zero means 1.
	MaxInFlight int64
}

// Resolver runs a query through the provider chain of its kind.
type Resolver struct {
	chains  map[Kind][]Provider
	slots   map[Kind]*semaphore.Weighted
	timeout time.Duration
	logger  *slog.Logger
}

// NewResolver creates a resolver. Providers of a chain are tried in order;
// the next one is only asked when the previous answered with no data.
func NewResolver(logger *slog.Logger, cfg ResolverConfig, chains map[Kind][]Provider) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 1
	}

	slots := make(map[Kind]*semaphore.Weighted, len(chains))
	for kind := range chains {
		slots[kind] = semaphore.NewWeighted(cfg.MaxInFlight)
	}

	return &Resolver{
		chains:  chains,
		slots:   slots,
		timeout: cfg.Timeout,
		logger:  logger.With("component", "lookup_resolver"),
	}
}

// Resolve looks q up. A query nobody has data for is a Result with Found
// false and a nil error. An error, always matching ErrProviderUnavailable
// or a context error, is returned only when a provider failed; failures are
// not retried and never trigger the fallback provider.
func (r *Resolver) Resolve(ctx context.Context, q Query) (Result, error) {
	result := Result{Query: q}
	log := r.logger.With("kind", q.Kind.String())

	if !q.Valid() {
		log.WarnContext(ctx, "Rejected invalid query before calling providers")
		return result, nil
	}

	chain := r.chains[q.Kind]
	if len(chain) == 0 {
		return result, fmt.Errorf("%w: no providers configured for %s", ErrProviderUnavailable, q.Kind)
	}

	slot := r.slots[q.Kind]
	if err := slot.Acquire(ctx, 1); err != nil {
		return result, fmt.Errorf("waiting for %s lookup slot: %w", q.Kind, err)
	}
	defer slot.Release(1)

	for i, provider := range chain {
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		record, err := provider.Lookup(callCtx, q.Value)
		cancel()

		if errors.Is(err, ErrNoData) {
			log.InfoContext(ctx, "Provider has no data", "provider", provider.Name(), "position", i)
			continue
		}
		if err != nil {
			if !errors.Is(err, ErrProviderUnavailable) {
				err = &ProviderError{Provider: provider.Name(), Err: err}
			}
			log.WarnContext(ctx, "Provider failed, not falling back", "provider", provider.Name(), "error", err)
			return result, err
		}

		result.Found = true
		result.Fields = canonicalize(q.Kind, record)
		result.Source = provider.Name()
		result.Fallback = i > 0
		log.InfoContext(ctx, "Lookup resolved", "provider", provider.Name(), "fallback", result.Fallback)
		return result, nil
	}

	log.InfoContext(ctx, "No provider had data for query", "providers", len(chain))
	return result, nil
}
