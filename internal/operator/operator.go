package operator

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-forensics/internal/metrics"
	"github.com/carson-networks/ledger-forensics/internal/operator/actions"
	"github.com/carson-networks/ledger-forensics/internal/storage"
)

// ErrNoStorage is returned for a writing action when the operator has no
// storage.
var ErrNoStorage = errors.New("operator: action needs storage but none is configured")

// Operator is the worker that processes items from the queue.
type Operator struct {
	id      int
	storage *storage.Storage
	queue   chan ActionItem
}

func NewOperator(id int, s *storage.Storage, queue chan ActionItem) *Operator {
	return &Operator{
		id:      id,
		storage: s,
		queue:   queue,
	}
}

// Run listens to the queue and processes items. Exits when the queue is closed.
func (o *Operator) Run() {
	for item := range o.queue {
		metrics.QueuedJobs.Dec()
		item.response <- ActionItemResponse{err: o.processItem(item)}
	}
}

func (o *Operator) processItem(item ActionItem) error {
	// the submitter already gave up
	if err := item.ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		logrus.WithFields(logrus.Fields{
			"worker":      o.id,
			"action":      item.name,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("Operator.processItem.Done")
	}()

	if !item.action.Writes() {
		return item.action.Perform(item.ctx, nil)
	}

	if o.storage == nil {
		return ErrNoStorage
	}
	writer, err := o.storage.Write(item.ctx)
	if err != nil {
		return err
	}

	if err := item.action.Perform(item.ctx, writer); err != nil {
		_ = writer.Rollback()
		return err
	}

	return writer.Commit()
}

type ActionItem struct {
	ctx      context.Context
	name     string
	action   actions.IAction
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}
