// Package batch provides parallel retrieval of liveboards for many stations
// through one shared client. Workers share the client's admission bucket, so
// overall throughput stays within the iRail rate guideline no matter how
// many workers run.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/beltransit/irail-go/pkg/client"
	"github.com/beltransit/irail-go/pkg/logging"
	"github.com/beltransit/irail-go/pkg/models"
)

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency is the number of parallel workers. More workers than
	// the admission bucket's burst capacity only deepens the admission
	// queue.
	MaxConcurrency int

	// Timeout per liveboard fetch.
	Timeout time.Duration
}

// DefaultConfig returns defaults sized to the admission bucket.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 5,
		Timeout:        30 * time.Second,
	}
}

// LiveboardFetcher is the single-station operation the batch runs; the
// iRail client satisfies it.
type LiveboardFetcher interface {
	GetLiveboard(ctx context.Context, opts client.LiveboardOptions) (*models.LiveboardResponse, error)
}

// Result is the outcome for one station.
type Result struct {
	Station   string
	Liveboard *models.LiveboardResponse
	Err       error
}

// Fetcher retrieves liveboards for many stations concurrently.
type Fetcher struct {
	client LiveboardFetcher
	config Config
}

// NewFetcher creates a batch fetcher over the given client.
func NewFetcher(c LiveboardFetcher, cfg Config) *Fetcher {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Fetcher{client: c, config: cfg}
}

// FetchLiveboards retrieves the departure liveboard for every station name
// given, in parallel, and returns one Result per station. Stations that
// fail are reported in their Result; one station failing does not abort the
// others. Cancellation of ctx stops the remaining work.
func (f *Fetcher) FetchLiveboards(ctx context.Context, stations []string) []Result {
	logger := logging.NewLogger("irail-batch")
	start := time.Now()

	jobs := make(chan int)
	results := make([]Result, len(stations))

	var wg sync.WaitGroup
	workers := f.config.MaxConcurrency
	if workers > len(stations) {
		workers = len(stations)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				station := stations[idx]

				fetchCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
				board, err := f.client.GetLiveboard(fetchCtx, client.LiveboardOptions{Station: station})
				cancel()

				results[idx] = Result{Station: station, Liveboard: board, Err: err}
				if err != nil {
					logger.Warn().Err(err).Str("station", station).Msg("Liveboard fetch failed")
				}
			}
		}()
	}

	feed := func() {
		defer close(jobs)
		for idx := range stations {
			select {
			case jobs <- idx:
			case <-ctx.Done():
				// Everything from idx on was never handed to a worker.
				for rest := idx; rest < len(stations); rest++ {
					results[rest] = Result{Station: stations[rest], Err: ctx.Err()}
				}
				return
			}
		}
	}
	feed()

	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	logger.Info().
		Int("stations", len(stations)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Batch liveboard fetch complete")

	return results
}
