// Package ingest turns operator-submitted audio into validated Track
// rows, one item at a time or from a whole archive.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/otabekh/minbar/internal/constants"
	"github.com/otabekh/minbar/internal/logger"
	"github.com/otabekh/minbar/internal/media"
	"github.com/otabekh/minbar/internal/reference"
	"github.com/otabekh/minbar/internal/store"
)

type BatchState int

const (
	StateAwaiting BatchState = iota
	StateCompleted
	StateCancelled
)

func (s BatchState) String() string {
	switch s {
	case StateAwaiting:
		return "awaiting"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// StagedItem is a submission accepted into a sequential batch but not
// yet persisted. Handle may be an ephemeral reference that only the
// media host can resolve.
type StagedItem struct {
	Position int
	Handle   string
}

// Batch is the sequential-mode state machine. The operator submits
// items one by one; each submission is staged at the next expected
// position, and nothing touches the store until Finish. Batch is not
// safe for concurrent use; the session registry owns one per operator.
type Batch struct {
	ID          string
	PerformerID int64
	maxPosition int
	next        int
	staged      []StagedItem
	state       BatchState
}

func NewBatch(performerID int64, maxPosition int) *Batch {
	if maxPosition <= 0 {
		maxPosition = constants.MaxTrackPosition
	}
	return &Batch{
		ID:          uuid.New().String(),
		PerformerID: performerID,
		maxPosition: maxPosition,
		next:        1,
	}
}

// NextPosition returns the position the next submission will be
// staged at, or 0 when the batch is no longer accepting items.
func (b *Batch) NextPosition() int {
	if b.state != StateAwaiting || b.next > b.maxPosition {
		return 0
	}
	return b.next
}

// Stage accepts one submission at the next expected position. full
// reports that every position up to the maximum has been staged.
func (b *Batch) Stage(handle string) (position int, full bool, err error) {
	if b.state != StateAwaiting {
		return 0, false, fmt.Errorf("batch is %s, not accepting items", b.state)
	}
	if b.next > b.maxPosition {
		return 0, true, fmt.Errorf("all %d positions already staged", b.maxPosition)
	}
	position = b.next
	b.staged = append(b.staged, StagedItem{Position: position, Handle: handle})
	b.next++
	return position, b.next > b.maxPosition, nil
}

// Finish seals the batch and hands back the staged items for commit.
func (b *Batch) Finish() ([]StagedItem, error) {
	if b.state != StateAwaiting {
		return nil, fmt.Errorf("batch is already %s", b.state)
	}
	b.state = StateCompleted
	return b.staged, nil
}

// Cancel discards all staged, uncommitted items. Items already
// committed by an earlier Finish are never rolled back.
func (b *Batch) Cancel() {
	if b.state == StateAwaiting {
		b.state = StateCancelled
		b.staged = nil
	}
}

func (b *Batch) State() BatchState { return b.state }

func (b *Batch) StagedCount() int { return len(b.staged) }

// Summary is the outcome of committing one sequential batch.
type Summary struct {
	Attempted int
	Succeeded int
	Failed    int
	Failures  []string
}

// Committer persists staged batches, pacing relays so the media host
// is not hammered. Pacing fields may be lowered for tests.
type Committer struct {
	store *store.DB
	host  media.Host
	log   *logger.Logger

	BatchSize  int
	BatchPause time.Duration
	ItemDelay  time.Duration
}

func NewCommitter(db *store.DB, host media.Host, log *logger.Logger) *Committer {
	return &Committer{
		store:      db,
		host:       host,
		log:        log.WithComponent("ingest"),
		BatchSize:  constants.IngestBatchSize,
		BatchPause: constants.IngestBatchPause,
		ItemDelay:  constants.IngestItemDelay,
	}
}

// Commit relays and persists every staged item in input order. One
// item's failure never aborts the batch; failures reduce the success
// count and are listed in the summary. Successes are never rolled
// back.
func (c *Committer) Commit(ctx context.Context, batch *Batch) (*Summary, error) {
	items, err := batch.Finish()
	if err != nil {
		return nil, err
	}

	log := c.log.WithBatch(batch.ID, batch.PerformerID)
	log.Info("committing batch", "items", len(items))

	summary := &Summary{Attempted: len(items)}
	relayed := 0
	for i, item := range items {
		if i > 0 {
			if err := sleepCtx(ctx, c.ItemDelay); err != nil {
				return summary, err
			}
		}
		if relayed > 0 && relayed%c.BatchSize == 0 {
			log.Info("pausing between batches", "relayed", relayed)
			if err := sleepCtx(ctx, c.BatchPause); err != nil {
				return summary, err
			}
		}

		result, err := c.host.Relay(ctx, item.Handle)
		if err != nil {
			log.Warn("relay failed", "position", item.Position, "error", err)
			summary.Failed++
			summary.Failures = append(summary.Failures, fmt.Sprintf("position %d: %v", item.Position, err))
			continue
		}
		relayed++

		names := reference.Names(item.Position)
		if err := c.store.UpsertTrack(batch.PerformerID, item.Position, result.DurableHandle, names); err != nil {
			log.Error("failed to persist track", "position", item.Position, "error", err)
			summary.Failed++
			summary.Failures = append(summary.Failures, fmt.Sprintf("position %d: %v", item.Position, err))
			continue
		}
		summary.Succeeded++
	}

	log.Info("batch committed",
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed)
	return summary, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
