package engine

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/observability"
	"beanbee-engine/internal/storage"
)

// DispatcherOptions configures the worker pool and the pending buffer.
type DispatcherOptions struct {
	Workers       int
	QueueLen      int
	PendingMax    int           // retry budget per buffered event
	PendingTTL    time.Duration // drop buffered events older than this
	SweepInterval time.Duration // pending-buffer retry cadence
}

// pendingEvent is an event parked on an unresolved token/pair reference.
type pendingEvent struct {
	ev       domain.Event
	firstTs  time.Time
	attempts int
}

// Dispatcher routes events to per-token workers. Events for one token are
// applied in arrival order by exactly one worker; different tokens proceed
// in parallel. Routing hashes the token address, never the pair, so a swap
// and a reserve update for the same token cannot race.
type Dispatcher struct {
	applier *Applier
	opts    DispatcherOptions
	log     *logrus.Entry
	metrics *observability.Metrics

	queues []chan domain.Event

	mu      sync.Mutex
	pending map[string][]*pendingEvent // missing identity -> parked events

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewDispatcher creates a dispatcher. Metrics may be nil.
func NewDispatcher(applier *Applier, opts DispatcherOptions, metrics *observability.Metrics, log *logrus.Entry) *Dispatcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueLen < 1 {
		opts.QueueLen = 1024
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = 5 * time.Second
	}
	queues := make([]chan domain.Event, opts.Workers)
	for i := range queues {
		queues[i] = make(chan domain.Event, opts.QueueLen)
	}
	return &Dispatcher{
		applier: applier,
		opts:    opts,
		log:     log,
		metrics: metrics,
		queues:  queues,
		pending: make(map[string][]*pendingEvent),
	}
}

// Start launches the workers and the pending-buffer sweeper.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)

	for i := range d.queues {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}

	d.wg.Add(1)
	go d.sweeper(ctx)
}

// Stop cancels the workers and waits for them to drain.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}

// Enqueue routes an event to its token's worker. Blocks when the worker
// queue is full, which backpressures the ingestion source.
func (d *Dispatcher) Enqueue(ctx context.Context, ev domain.Event) error {
	key, err := d.partitionKey(ctx, ev)
	if err != nil {
		var unresolved *UnresolvedReferenceError
		if errors.As(err, &unresolved) {
			d.park(unresolved.Identity, ev)
			return nil
		}
		return err
	}

	q := d.queues[partition(key, len(d.queues))]
	select {
	case q <- ev:
		if d.metrics != nil {
			d.metrics.EventsEnqueued.WithLabelValues(string(ev.Kind())).Inc()
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// partitionKey resolves the token address that serializes this event.
// Reserve updates and pair-only lock events need the pair resolved first;
// an unknown pair parks the event instead of routing it.
func (d *Dispatcher) partitionKey(ctx context.Context, ev domain.Event) (string, error) {
	switch e := ev.(type) {
	case *domain.SwapEvent:
		return domain.NormalizeAddress(e.TokenAddress), nil
	case *domain.HolderDeltaEvent:
		return domain.NormalizeAddress(e.TokenAddress), nil
	case *domain.MaintenanceEvent:
		return domain.NormalizeAddress(e.TokenAddress), nil
	case *domain.PairCreatedEvent:
		return d.applier.launchTokenAddress(e), nil
	case *domain.LockEvent:
		if addr := domain.NormalizeAddress(e.TokenAddress); addr != "" {
			return addr, nil
		}
		return d.resolvePair(ctx, domain.NormalizeAddress(e.PairAddress))
	case *domain.ReserveUpdateEvent:
		return d.resolvePair(ctx, domain.NormalizeAddress(e.PairAddress))
	default:
		return "", &UnresolvedReferenceError{Kind: "event", Identity: string(ev.Kind())}
	}
}

func (d *Dispatcher) resolvePair(ctx context.Context, pairAddress string) (string, error) {
	token, err := d.applier.gw.Tokens.GetByPairAddress(ctx, pairAddress)
	if errors.Is(err, storage.ErrNotFound) {
		return "", &UnresolvedReferenceError{Kind: "pair", Identity: pairAddress}
	} else if err != nil {
		return "", err
	}
	return token.Address, nil
}

func partition(key string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

func (d *Dispatcher) worker(ctx context.Context, idx int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.queues[idx]:
			d.process(ctx, ev)
		}
	}
}

// process applies one event and classifies the outcome. Recoverable errors
// never stop the worker.
func (d *Dispatcher) process(ctx context.Context, ev domain.Event) {
	outcome, err := d.applier.Apply(ctx, ev)
	switch {
	case err == nil:
		if d.metrics != nil {
			if outcome == OutcomeApplied {
				d.metrics.EventsApplied.WithLabelValues(string(ev.Kind())).Inc()
			} else {
				d.metrics.EventsDuplicate.WithLabelValues(string(ev.Kind())).Inc()
			}
		}
	case isUnresolved(err):
		var unresolved *UnresolvedReferenceError
		errors.As(err, &unresolved)
		d.park(unresolved.Identity, ev)
	default:
		if d.metrics != nil {
			d.metrics.EventsFailed.WithLabelValues(string(ev.Kind())).Inc()
		}
		d.log.WithError(err).WithField("kind", ev.Kind()).Error("event application failed")
	}
}

func isUnresolved(err error) bool {
	var unresolved *UnresolvedReferenceError
	return errors.As(err, &unresolved)
}

// park buffers an event behind its missing identity.
func (d *Dispatcher) park(identity string, ev domain.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[identity] = append(d.pending[identity], &pendingEvent{
		ev:      ev,
		firstTs: time.Now(),
	})
	if d.metrics != nil {
		d.metrics.EventsPending.Set(float64(d.pendingCountLocked()))
	}
}

func (d *Dispatcher) pendingCountLocked() int {
	n := 0
	for _, evs := range d.pending {
		n += len(evs)
	}
	return n
}

// sweeper periodically retries parked events. It runs off the main event
// path so a stuck reference never blocks the dispatcher.
func (d *Dispatcher) sweeper(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.sweepPending(ctx)
		}
	}
}

func (d *Dispatcher) sweepPending(ctx context.Context) {
	d.mu.Lock()
	batch := d.pending
	d.pending = make(map[string][]*pendingEvent)
	d.mu.Unlock()

	now := time.Now()
	for identity, evs := range batch {
		for _, pe := range evs {
			pe.attempts++
			expired := d.opts.PendingTTL > 0 && now.Sub(pe.firstTs) > d.opts.PendingTTL
			exhausted := d.opts.PendingMax > 0 && pe.attempts > d.opts.PendingMax
			if expired || exhausted {
				d.log.WithFields(logrus.Fields{
					"identity": identity,
					"kind":     pe.ev.Kind(),
					"attempts": pe.attempts,
				}).Warn("dropping event with unresolved reference")
				if d.metrics != nil {
					d.metrics.EventsUnresolved.WithLabelValues(string(pe.ev.Kind())).Inc()
				}
				continue
			}

			key, err := d.partitionKey(ctx, pe.ev)
			if err != nil {
				// Still unresolved; keep it parked with its attempt count.
				d.mu.Lock()
				d.pending[identity] = append(d.pending[identity], pe)
				d.mu.Unlock()
				continue
			}
			select {
			case d.queues[partition(key, len(d.queues))] <- pe.ev:
			case <-ctx.Done():
				return
			}
		}
	}

	if d.metrics != nil {
		d.mu.Lock()
		d.metrics.EventsPending.Set(float64(d.pendingCountLocked()))
		d.mu.Unlock()
	}
}
