package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/memberdesk/accounts-api/internal/core/domain"
	"github.com/memberdesk/accounts-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Notification is one queued token delivery.
type Notification struct {
	ToEmail       string
	RecipientName string
	Token         string
	Kind          domain.TokenKind
}

// Dispatcher delivers notifications asynchronously through a fixed set of
// workers, sharded by recipient address so deliveries to the same recipient
// stay ordered. Used for fire-and-forget sends (password-reset mail); sign-up
// verification mail bypasses the queue because its failure must bubble to the
// caller.
type Dispatcher struct {
	workers  []chan Notification
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan Notification, numWorkers),
		notifier: notifier,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a notification to the worker responsible for its recipient.
// Non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(n Notification) {
	d.workers[d.shardIndex(n.ToEmail)] <- n
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(toEmail string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(toEmail))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			if err := d.notifier.Send(ctx, n.ToEmail, n.RecipientName, n.Token, n.Kind); err != nil {
				d.log.Error().Err(err).
					Str("kind", string(n.Kind)).
					Int("worker_id", id).
					Msg("notification delivery failed")
			}
		}
	}
}
