package operator

import (
	"context"
	"fmt"
	"sync"

	"github.com/carson-networks/ledger-forensics/internal/metrics"
	"github.com/carson-networks/ledger-forensics/internal/operator/actions"
	"github.com/carson-networks/ledger-forensics/internal/storage"
)

const queueSize = 1000

// OperatorDelegator manages the queue, starts/stops Operators (workers), and enqueues items.
// The number of workers bounds how many analyses and imports run at once.
type OperatorDelegator struct {
	storage    *storage.Storage
	queue      chan ActionItem
	numWorkers int
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

// NewOperatorDelegator creates a delegator; s may be nil when no action
// writes to storage.
func NewOperatorDelegator(s *storage.Storage, numWorkers int) *OperatorDelegator {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &OperatorDelegator{
		storage:    s,
		queue:      make(chan ActionItem, queueSize),
		numWorkers: numWorkers,
	}
}

func (d *OperatorDelegator) Start() {
	for i := 0; i < d.numWorkers; i++ {
		d.wg.Add(1)
		op := NewOperator(i, d.storage, d.queue)
		go func() {
			defer d.wg.Done()
			op.Run()
		}()
	}
}

// Stop closes the queue and waits for queued items to finish. Process must
// not be called afterwards.
func (d *OperatorDelegator) Stop() {
	d.stopOnce.Do(func() {
		close(d.queue)
		d.wg.Wait()
	})
}

// Process queues action and waits for a worker to finish it or for ctx to
// end.
func (d *OperatorDelegator) Process(ctx context.Context, action actions.IAction) error {
	respCh := make(chan ActionItemResponse, 1)
	item := ActionItem{
		ctx:      ctx,
		name:     fmt.Sprintf("%T", action),
		action:   action,
		response: respCh,
	}

	metrics.QueuedJobs.Inc()
	select {
	case d.queue <- item:
	case <-ctx.Done():
		metrics.QueuedJobs.Dec()
		return ctx.Err()
	}

	select {
	case resp := <-respCh:
		return resp.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
