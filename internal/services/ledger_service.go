// Package services wires the durable ledger to the async export
// pipeline: every mutation persists locally first, then publishes a
// change event for the export worker.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/ledger"
)

// Repository is the durable store the service writes through.
type Repository interface {
	ledger.Store
	ledger.Querier
	Close() error
}

// EventPublisher publishes ledger change events. Satisfied by
// *amqp.Client; nil disables publishing.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, kind string, id int64) error
	Close() error
}

// LedgerService implements the ledger ports over a repository and
// mirrors every mutation onto the event queue. Publish failures are
// logged but never fail the request: the local write already happened.
type LedgerService struct {
	repo      Repository
	publisher EventPublisher
}

var (
	_ ledger.Store   = (*LedgerService)(nil)
	_ ledger.Querier = (*LedgerService)(nil)
)

func NewLedgerService(repo Repository, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		repo:      repo,
		publisher: publisher,
	}
}

// Add persists the record, then publishes a created event.
func (s *LedgerService) Add(ctx context.Context, r core.Record) (int64, error) {
	id, err := s.repo.Add(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("save record: %w", err)
	}
	s.publish(ctx, amqp.EventRecordCreated, id)
	return id, nil
}

// Remove deletes the record, publishing a deleted event only when a
// record was actually removed.
func (s *LedgerService) Remove(ctx context.Context, id int64) (bool, error) {
	ok, err := s.repo.Remove(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	if ok {
		s.publish(ctx, amqp.EventRecordDeleted, id)
	}
	return ok, nil
}

// Clear empties the ledger and publishes a cleared event.
func (s *LedgerService) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	s.publish(ctx, amqp.EventLedgerCleared, 0)
	return nil
}

func (s *LedgerService) All(ctx context.Context) ([]core.Record, error) {
	return s.repo.All(ctx)
}

func (s *LedgerService) ListByCategory(ctx context.Context, category string) ([]core.Record, error) {
	return s.repo.ListByCategory(ctx, category)
}

func (s *LedgerService) ListByMonth(ctx context.Context, year, month int) ([]core.Record, error) {
	return s.repo.ListByMonth(ctx, year, month)
}

func (s *LedgerService) Overview(ctx context.Context) (core.Overview, error) {
	return s.repo.Overview(ctx)
}

func (s *LedgerService) Trend(ctx context.Context) ([]core.MonthTotal, error) {
	return s.repo.Trend(ctx)
}

func (s *LedgerService) publish(ctx context.Context, kind string, id int64) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping", "kind", kind, "id", id)
		return
	}
	if err := s.publisher.PublishRecordEvent(ctx, kind, id); err != nil {
		// The record is already persisted locally; the worker's
		// periodic sweep will still pick it up.
		slog.ErrorContext(ctx, "Failed to publish record event",
			"kind", kind, "id", id, "error", err)
	}
}

// Close closes the repository and, when configured, the publisher.
func (s *LedgerService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
