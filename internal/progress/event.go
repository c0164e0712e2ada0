// Package progress defines the event stream emitted by sync cycles
// and the hub that fans it out to sinks.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone an Event represents.
type Stage string

// Supported stages. A cycle emits CYCLE_START, then zero or more
// product events, then exactly one of CYCLE_DONE, CYCLE_SKIPPED or
// CYCLE_ERROR.
const (
	StageCycleStart   Stage = "CYCLE_START"
	StageCycleDone    Stage = "CYCLE_DONE"
	StageCycleSkipped Stage = "CYCLE_SKIPPED"
	StageCycleError   Stage = "CYCLE_ERROR"
	StageProductSaved Stage = "PRODUCT_SAVED"
	StageProductError Stage = "PRODUCT_ERROR"
)

// Event captures a single sync-cycle milestone.
type Event struct {
	// CycleID identifies the sync cycle this event belongs to.
	CycleID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Fetched/Saved/Errors carry cycle totals on CYCLE_DONE.
	Fetched int
	Saved   int
	Errors  int
	// Dur is the cycle wall time on completion events.
	Dur time.Duration
	// ProductTitle scopes product-level events.
	ProductTitle string
	// Note carries low-volume context such as error text.
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.CycleID == uuid.Nil {
		return errors.New("cycle id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageCycleStart, StageCycleDone, StageCycleSkipped, StageCycleError:
	case StageProductSaved, StageProductError:
		if e.ProductTitle == "" {
			return errors.New("product events require a product title")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}
