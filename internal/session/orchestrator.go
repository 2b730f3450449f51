package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/cropdoc/internal/errors"
	"github.com/myrjola/cropdoc/internal/models"
	"github.com/myrjola/cropdoc/internal/repositories"
)

// Status is the phase of the diagnostic session. Every status is re-enterable,
// there is no terminal one.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

const (
	errorHeadline       = "Analysis Interrupted"
	genericErrorDetails = "An unexpected error occurred during neural network analysis."

	// callTimeout bounds every external call so a hung capability cannot pin the
	// session in loading forever.
	callTimeout = 60 * time.Second
)

var ErrNotReady = errors.NewSentinel("session is not in the required state")

// DiagnosticClient is the narrow surface the orchestrator needs from the image
// analysis capability.
type DiagnosticClient interface {
	Analyze(ctx context.Context, image models.Image) (models.Diagnosis, error)
	DeepDive(ctx context.Context, crop, subject string) (models.DeepDive, error)
}

// HistoryStore persists completed diagnoses. Store failures are best-effort:
// the orchestrator logs them and keeps its in-memory view.
type HistoryStore interface {
	Load(ctx context.Context, scope string) []models.HistoryEntry
	Append(ctx context.Context, scope string, entry models.HistoryEntry) error
	Clear(ctx context.Context, scope string) error
}

// ErrorState is the user-facing failure of an analysis: a fixed short headline
// paired with a longer detail string.
type ErrorState struct {
	Message string
	Details string
}

// State is an immutable snapshot of the session for rendering. Slices are
// copies, the caller may not mutate the orchestrator through it.
type State struct {
	Status          Status
	Image           *models.Image
	Result          *models.Diagnosis
	Error           *ErrorState
	History         []models.HistoryEntry
	DeepDive        *models.DeepDive
	DeepDivePending bool
}

// Orchestrator sequences image intake, analysis, per-recommendation deep dives,
// and history writes for one session. All external calls run outside the lock;
// each dispatch is tagged with a generation so that a resolution arriving after
// a newer state transition is discarded instead of clobbering current state.
type Orchestrator struct {
	mu     sync.Mutex
	client DiagnosticClient
	store  HistoryStore
	logger *slog.Logger
	scope  string

	status   Status
	image    *models.Image
	result   *models.Diagnosis
	errState *ErrorState
	history  []models.HistoryEntry

	deepDive        *models.DeepDive
	deepDivePending bool

	generation         uint64
	deepDiveGeneration uint64
}

// New creates an orchestrator for the given scope and loads its persisted
// history. A corrupt or missing store yields an empty history, never an error.
func New(ctx context.Context, client DiagnosticClient, store HistoryStore, logger *slog.Logger, scope string) *Orchestrator {
	return &Orchestrator{
		client:  client,
		store:   store,
		logger:  logger.With("source", "Orchestrator"),
		scope:   scope,
		status:  StatusIdle,
		history: store.Load(ctx, scope),
	}
}

// State returns a snapshot of the current session.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot()
}

// snapshot must be called with the lock held.
func (o *Orchestrator) snapshot() State {
	history := make([]models.HistoryEntry, len(o.history))
	copy(history, o.history)
	return State{
		Status:          o.status,
		Image:           o.image,
		Result:          o.result,
		Error:           o.errState,
		History:         history,
		DeepDive:        o.deepDive,
		DeepDivePending: o.deepDivePending,
	}
}

// Submit records the image, moves the session to loading, and runs the analysis.
// The image is recorded before the call is dispatched so retry has a reference
// even when the call fails. On success with a plant in frame, the diagnosis is
// appended to history; a non-plant result still succeeds but is not recorded.
func (o *Orchestrator) Submit(ctx context.Context, image models.Image) State {
	o.mu.Lock()
	o.generation++
	generation := o.generation
	o.status = StatusLoading
	o.image = &image
	o.result = nil
	o.errState = nil
	o.clearDeepDiveLocked()
	o.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	diagnosis, err := o.client.Analyze(callCtx, image)

	o.mu.Lock()
	defer o.mu.Unlock()
	if generation != o.generation {
		// A newer action superseded this analysis while it was in flight.
		o.logger.LogAttrs(ctx, slog.LevelDebug, "discarding stale analysis resolution",
			slog.Uint64("generation", generation))
		return o.snapshot()
	}

	if err != nil {
		o.logger.LogAttrs(ctx, slog.LevelError, "analysis failed", errors.SlogError(err))
		o.status = StatusError
		o.errState = &ErrorState{Message: errorHeadline, Details: errorDetails(err)}
		return o.snapshot()
	}

	o.status = StatusSuccess
	o.result = &diagnosis

	if diagnosis.IsPlant {
		entry := models.HistoryEntry{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Image:     image.Encode(),
			Result:    diagnosis,
		}
		o.history = append([]models.HistoryEntry{entry}, o.history...)
		if len(o.history) > repositories.HistoryLimit {
			o.history = o.history[:repositories.HistoryLimit]
		}
		if storeErr := o.store.Append(ctx, o.scope, entry); storeErr != nil {
			// Persistence is best-effort caching. The in-memory view stands.
			o.logger.LogAttrs(ctx, slog.LevelError, "could not persist history entry", errors.SlogError(storeErr))
		}
	}

	return o.snapshot()
}

// Retry re-submits the previously recorded image after a failure. If no image is
// recorded, which should not normally occur, the session falls back to idle.
func (o *Orchestrator) Retry(ctx context.Context) State {
	o.mu.Lock()
	if o.status != StatusError {
		defer o.mu.Unlock()
		return o.snapshot()
	}
	if o.image == nil {
		o.generation++
		o.status = StatusIdle
		o.errState = nil
		defer o.mu.Unlock()
		return o.snapshot()
	}
	image := *o.image
	o.mu.Unlock()

	return o.Submit(ctx, image)
}

// Reset returns the session to idle, discarding the current image, result,
// error, and deep dive. History is untouched. Covers both the error-screen
// reset and the "new scan" action from success.
func (o *Orchestrator) Reset() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	o.status = StatusIdle
	o.image = nil
	o.result = nil
	o.errState = nil
	o.clearDeepDiveLocked()
	return o.snapshot()
}

// SelectHistory loads a stored entry straight into success without invoking the
// diagnostic client. The entry is the cached result by definition.
func (o *Orchestrator) SelectHistory(id string) (State, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, entry := range o.history {
		if entry.ID != id {
			continue
		}
		image, err := models.DecodeImage(entry.Image)
		if err != nil {
			return o.snapshot(), errors.Wrap(err, "decode stored image", slog.String("id", id))
		}
		result := entry.Result
		o.generation++
		o.status = StatusSuccess
		o.image = &image
		o.result = &result
		o.errState = nil
		o.clearDeepDiveLocked()
		return o.snapshot(), nil
	}
	return o.snapshot(), errors.Wrap(ErrNotReady, "history entry not found", slog.String("id", id))
}

// ClearHistory empties the collection and its persisted record. A failed
// persist is logged; the in-memory collection is cleared regardless.
func (o *Orchestrator) ClearHistory(ctx context.Context) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = []models.HistoryEntry{}
	if err := o.store.Clear(ctx, o.scope); err != nil {
		o.logger.LogAttrs(ctx, slog.LevelError, "could not clear persisted history", errors.SlogError(err))
	}
	return o.snapshot()
}

// StartDeepDive looks up grounded treatment detail for the recommendation at
// the given index. A failed lookup is non-fatal: the session stays in success
// and the recommendation list remains in place.
func (o *Orchestrator) StartDeepDive(ctx context.Context, recommendationIndex int) (State, error) {
	o.mu.Lock()
	if o.status != StatusSuccess || o.result == nil {
		defer o.mu.Unlock()
		return o.snapshot(), errors.Wrap(ErrNotReady, "deep dive requires a completed analysis")
	}
	if recommendationIndex < 0 || recommendationIndex >= len(o.result.Recommendations) {
		defer o.mu.Unlock()
		return o.snapshot(), errors.Wrap(ErrNotReady, "recommendation index out of range",
			slog.Int("index", recommendationIndex))
	}
	crop := o.result.Crop
	subject := fmt.Sprintf("%s treatment: %s", o.result.Disease, o.result.Recommendations[recommendationIndex])
	o.deepDiveGeneration++
	generation := o.deepDiveGeneration
	o.deepDivePending = true
	o.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	deepDive, err := o.client.DeepDive(callCtx, crop, subject)

	o.mu.Lock()
	defer o.mu.Unlock()
	if generation != o.deepDiveGeneration || o.status != StatusSuccess {
		o.logger.LogAttrs(ctx, slog.LevelDebug, "discarding stale deep-dive resolution",
			slog.Uint64("generation", generation))
		return o.snapshot(), nil
	}
	o.deepDivePending = false
	if err != nil {
		// The recommendation list view stays in place.
		o.logger.LogAttrs(ctx, slog.LevelWarn, "deep-dive lookup failed", errors.SlogError(err))
		return o.snapshot(), nil
	}
	o.deepDive = &deepDive
	return o.snapshot(), nil
}

// ResetDeepDive discards the deep-dive result and restores the recommendation
// list view.
func (o *Orchestrator) ResetDeepDive() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clearDeepDiveLocked()
	return o.snapshot()
}

// clearDeepDiveLocked must be called with the lock held. Bumping the generation
// makes any in-flight lookup resolve as stale.
func (o *Orchestrator) clearDeepDiveLocked() {
	o.deepDiveGeneration++
	o.deepDive = nil
	o.deepDivePending = false
}

// errorDetails derives the user-facing detail string from an analysis failure,
// falling back to a generic message when the failure carries no usable text.
func errorDetails(err error) string {
	if err == nil || err.Error() == "" {
		return genericErrorDetails
	}
	return err.Error()
}
