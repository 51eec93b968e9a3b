package source

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/vitalguard/vitalguard/internal/errors"
	"github.com/vitalguard/vitalguard/internal/logger"
	"github.com/vitalguard/vitalguard/internal/sample"
	"github.com/vitalguard/vitalguard/internal/stream"
)

const requestTimeout = 10 * time.Second

var errFactory = errors.New()

// Status is a read-only diagnostic snapshot of the adapter.
type Status struct {
	Streaming       bool
	Configured      bool
	Endpoint        string
	PollingInterval time.Duration
	RetryCount      int
	MaxRetries      int
}

// Adapter polls the wearable endpoint on a fixed period, maps payloads into
// vital samples and fans them out to subscribers. Transient fetch failures
// are absorbed by a bounded, fixed-delay retry policy; nothing escapes the
// adapter boundary.
type Adapter struct {
	mu         sync.Mutex
	cfg        Config
	client     *http.Client
	vitals     *stream.Registry[sample.VitalSample]
	configured bool
	streaming  bool
	generation uint64
	retryCount int
	retryTimer *time.Timer
	cancel     context.CancelFunc
}

func NewAdapter() *Adapter {
	return &Adapter{
		client: &http.Client{Timeout: requestTimeout},
		vitals: stream.NewRegistry[sample.VitalSample](),
	}
}

// Configure sets the endpoint and polling policy. Unset fields keep their
// defaults. Reconfiguring while streaming affects the next Start.
func (a *Adapter) Configure(cfg Config) {
	cfg.applyDefaults()

	a.mu.Lock()
	defer a.mu.Unlock()

	a.cfg = cfg
	a.configured = true
}

// Subscribe registers a listener for incoming vital samples and returns its
// unsubscribe function. Dispatch order is registration order.
func (a *Adapter) Subscribe(fn func(sample.VitalSample)) func() {
	return a.vitals.Subscribe(fn)
}

// Start begins polling: one immediate fetch, then one per polling interval.
// Starting an already-streaming adapter is a no-op.
func (a *Adapter) Start() {
	a.mu.Lock()

	if a.streaming {
		a.mu.Unlock()
		return
	}

	if !a.configured {
		cfg := Config{}
		cfg.applyDefaults()
		a.cfg = cfg
		a.configured = true
		logger.Warn().Msg("Starting unconfigured source adapter with defaults")
	}

	a.streaming = true
	a.generation++
	a.retryCount = 0
	gen := a.generation
	interval := a.cfg.PollingInterval
	endpoint := a.cfg.Endpoint

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.mu.Unlock()

	logger.Info().
		Str("endpoint", endpoint).
		Dur("interval", interval).
		Msg("Source adapter streaming started")

	go a.run(ctx, gen, interval)
}

// Stop halts the periodic timer and cancels any pending scheduled retry.
// A fetch already in flight is discarded on completion by the generation
// guard. Stopping a stopped adapter is a no-op.
func (a *Adapter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.streaming {
		return
	}

	a.streaming = false
	a.generation++
	a.cancel()
	a.cancel = nil

	if a.retryTimer != nil {
		a.retryTimer.Stop()
		a.retryTimer = nil
	}

	logger.Info().Msg("Source adapter streaming stopped")
}

// Status returns a diagnostic snapshot.
func (a *Adapter) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	return Status{
		Streaming:       a.streaming,
		Configured:      a.configured,
		Endpoint:        a.cfg.Endpoint,
		PollingInterval: a.cfg.PollingInterval,
		RetryCount:      a.retryCount,
		MaxRetries:      a.cfg.RetryAttempts,
	}
}

func (a *Adapter) run(ctx context.Context, gen uint64, interval time.Duration) {
	a.poll(gen)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.poll(gen)
		}
	}
}

// poll performs one fetch and routes its outcome. Called from the periodic
// loop and from scheduled retries; both may run near-simultaneously, which
// is accepted best-effort recovery.
func (a *Adapter) poll(gen uint64) {
	a.mu.Lock()
	if !a.streaming || a.generation != gen {
		a.mu.Unlock()
		return
	}
	cfg := a.cfg
	a.mu.Unlock()

	s, err := a.fetch(cfg)
	if err != nil {
		a.handleFailure(gen, err)
		return
	}

	a.handleSuccess(gen, s)
}

func (a *Adapter) fetch(cfg Config) (sample.VitalSample, error) {
	req, err := http.NewRequest(http.MethodGet, cfg.Endpoint, nil)
	if err != nil {
		return sample.VitalSample{}, errFactory.Wrap(ErrRequestFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return sample.VitalSample{}, errFactory.Wrap(ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return sample.VitalSample{}, errFactory.WithData(ErrBadStatus, resp.StatusCode)
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return sample.VitalSample{}, errFactory.Wrap(ErrDecodePayload, err)
	}

	return p.toSample(), nil
}

func (a *Adapter) handleSuccess(gen uint64, s sample.VitalSample) {
	a.mu.Lock()
	if !a.streaming || a.generation != gen {
		a.mu.Unlock()
		return
	}
	a.retryCount = 0
	a.mu.Unlock()

	a.vitals.Dispatch(s)
}

func (a *Adapter) handleFailure(gen uint64, err error) {
	a.mu.Lock()

	if !a.streaming || a.generation != gen {
		a.mu.Unlock()
		return
	}

	maxRetries := a.cfg.RetryAttempts

	if a.retryCount >= maxRetries {
		a.mu.Unlock()
		logger.ErrorWithCode(errFactory.Wrap(ErrRetryExhausted, err)).
			Int("max_retries", maxRetries).
			Msg("Retries exhausted, waiting for next periodic poll")
		return
	}

	a.retryCount++
	attempt := a.retryCount
	delay := a.cfg.RetryDelay
	a.retryTimer = time.AfterFunc(delay, func() {
		a.poll(gen)
	})
	a.mu.Unlock()

	logger.Warn().
		Err(err).
		Int("attempt", attempt).
		Int("max_retries", maxRetries).
		Dur("retry_delay", delay).
		Msg("Fetch failed, retry scheduled")
}
