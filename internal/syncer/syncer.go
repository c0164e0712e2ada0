// Package syncer implements the fetch-and-replace synchronization
// cycle and the scheduler that drives it.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fullstack/catalog-sync/internal/catalog"
	"github.com/fullstack/catalog-sync/internal/progress"
	"github.com/fullstack/catalog-sync/internal/snapshot"
	"github.com/fullstack/catalog-sync/internal/store"
)

// DefaultMaxProducts bounds how many fetched products one cycle
// persists.
const DefaultMaxProducts = 50

// Fetcher retrieves the remote catalog plus the raw payload bytes. A
// single call performs one blocking request with no retries.
type Fetcher interface {
	FetchProductsRaw(ctx context.Context) ([]catalog.RemoteProduct, []byte, error)
}

// Summary reports the outcome of one sync cycle.
type Summary struct {
	CycleID     uuid.UUID     `json:"cycle_id"`
	Fetched     int           `json:"fetched"`
	Saved       int           `json:"saved"`
	Errors      int           `json:"errors"`
	Skipped     bool          `json:"skipped"`
	Duration    time.Duration `json:"-"`
	SnapshotURI string        `json:"snapshot_uri,omitempty"`
}

// Syncer replaces the stored catalog with the remote one. Fetch and
// parse failures abort a cycle before any store mutation; per-product
// failures are counted and skipped.
type Syncer struct {
	fetcher     Fetcher
	store       store.Store
	archive     snapshot.Archive
	emitter     progress.Emitter
	clock       catalog.Clock
	maxProducts int
	logger      *zap.Logger
}

// Config carries the optional Syncer knobs.
type Config struct {
	MaxProducts int
	Archive     snapshot.Archive
	Emitter     progress.Emitter
	Logger      *zap.Logger
}

// New constructs a Syncer. MaxProducts defaults to 50; archive,
// emitter and logger default to no-ops.
func New(fetcher Fetcher, st store.Store, clock catalog.Clock, cfg Config) *Syncer {
	if cfg.MaxProducts <= 0 {
		cfg.MaxProducts = DefaultMaxProducts
	}
	if cfg.Archive == nil {
		cfg.Archive = snapshot.Noop{}
	}
	if cfg.Emitter == nil {
		cfg.Emitter = progress.NopEmitter{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Syncer{
		fetcher:     fetcher,
		store:       st,
		archive:     cfg.Archive,
		emitter:     cfg.Emitter,
		clock:       clock,
		maxProducts: cfg.MaxProducts,
		logger:      cfg.Logger,
	}
}

// ClearOnStart removes every stored product. Intended for startup,
// before the first cycle, when the operator asked for a clean slate.
func (s *Syncer) ClearOnStart(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear existing products: %w", err)
	}
	s.logger.Info("cleared existing products on start")
	return nil
}

// RunCycle executes one fetch → transform → replace-all cycle. The
// read happens before any write, so a failed fetch never wipes the
// table. A non-nil error means the store was left untouched except
// for the truncate-failed case, which aborts before any insert.
func (s *Syncer) RunCycle(ctx context.Context) (Summary, error) {
	cycleID := uuid.New()
	start := s.clock.Now()
	summary := Summary{CycleID: cycleID}

	s.emit(progress.Event{CycleID: cycleID, TS: start, Stage: progress.StageCycleStart})
	s.logger.Info("sync cycle starting", zap.String("cycle_id", cycleID.String()))

	remote, raw, err := s.fetcher.FetchProductsRaw(ctx)
	if err != nil {
		return summary, s.fail(cycleID, start, summary, fmt.Errorf("fetch remote catalog: %w", err))
	}
	summary.Fetched = len(remote)

	if len(remote) == 0 {
		s.logger.Warn("no products received from upstream, leaving store untouched",
			zap.String("cycle_id", cycleID.String()))
		summary.Skipped = true
		summary.Duration = s.clock.Now().Sub(start)
		s.emit(progress.Event{
			CycleID: cycleID, TS: s.clock.Now(), Stage: progress.StageCycleSkipped,
			Dur: summary.Duration,
		})
		return summary, nil
	}

	// Archiving is diagnostics only; a failed upload never blocks the
	// cycle.
	if uri, archiveErr := s.archive.Put(ctx, start, raw); archiveErr != nil {
		s.logger.Warn("snapshot archive failed", zap.Error(archiveErr))
	} else {
		summary.SnapshotURI = uri
	}

	if err := s.store.DeleteAll(ctx); err != nil {
		return summary, s.fail(cycleID, start, summary, fmt.Errorf("clear existing products: %w", err))
	}

	selected := remote
	if len(selected) > s.maxProducts {
		selected = selected[:s.maxProducts]
	}

	for _, rp := range selected {
		product := catalog.FromRemote(rp)
		if _, saveErr := s.store.Save(ctx, product); saveErr != nil {
			summary.Errors++
			s.logger.Warn("failed to save product",
				zap.String("cycle_id", cycleID.String()),
				zap.Int64("remote_id", rp.ID),
				zap.String("title", rp.Title),
				zap.Error(saveErr),
			)
			s.emit(progress.Event{
				CycleID: cycleID, TS: s.clock.Now(), Stage: progress.StageProductError,
				ProductTitle: eventTitle(rp), Note: saveErr.Error(),
			})
			continue
		}
		summary.Saved++
		s.emit(progress.Event{
			CycleID: cycleID, TS: s.clock.Now(), Stage: progress.StageProductSaved,
			ProductTitle: eventTitle(rp),
		})
	}

	summary.Duration = s.clock.Now().Sub(start)
	s.emit(progress.Event{
		CycleID: cycleID, TS: s.clock.Now(), Stage: progress.StageCycleDone,
		Fetched: summary.Fetched, Saved: summary.Saved, Errors: summary.Errors,
		Dur: summary.Duration,
	})
	s.logger.Info("sync cycle finished",
		zap.String("cycle_id", cycleID.String()),
		zap.Int("fetched", summary.Fetched),
		zap.Int("saved", summary.Saved),
		zap.Int("errors", summary.Errors),
		zap.Duration("dur", summary.Duration),
	)
	return summary, nil
}

func (s *Syncer) fail(cycleID uuid.UUID, start time.Time, summary Summary, err error) error {
	dur := s.clock.Now().Sub(start)
	s.logger.Error("sync cycle failed", zap.String("cycle_id", cycleID.String()), zap.Error(err))
	s.emit(progress.Event{
		CycleID: cycleID, TS: s.clock.Now(), Stage: progress.StageCycleError,
		Fetched: summary.Fetched, Saved: summary.Saved, Errors: summary.Errors,
		Dur: dur, Note: err.Error(),
	})
	return err
}

func (s *Syncer) emit(evt progress.Event) {
	s.emitter.Emit(evt)
}

// eventTitle labels product events. Untitled remote records fall back
// to their remote id so the event still passes validation and reaches
// the sinks.
func eventTitle(rp catalog.RemoteProduct) string {
	if rp.Title != "" {
		return rp.Title
	}
	return fmt.Sprintf("remote-%d", rp.ID)
}
