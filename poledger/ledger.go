/*
Package poledger maintains, per project, the collection of PO amendments
and which one (if any) is currently active.

PURPOSE:
  Wraps the staffing rule functions with store-backed operations. Every
  mutating operation validates first, persists second, then triggers the
  active-record recomputation inline - there is no partial-write state:
  either the validated record is written and recomputation runs, or
  nothing happens.

INVARIANT:
  At most one amendment per project has IsActive=true. Activeness is a
  derived property recomputed from dates (staffing.RecomputeActive), not a
  free-standing flag - though a manual override path exists (below).

MANUAL OVERRIDE:
  SetActive does NOT automatically deactivate sibling amendments.
  Deactivating siblings is a separate explicit step the caller must invoke
  (DeactivateAllForProject) before activating a new one, if single-active
  semantics are desired for that workflow. The two-step pattern exists
  because both automatic (date-driven) and manual activation flows are
  supported; callers choosing manual activation own clearing conflicting
  flags first.

TESTING:
  The current date is injected via WithClock so tests can pin "today"
  across date boundaries; production uses staffing.Today.

SEE ALSO:
  - staffing/amendment.go: validation and recomputation rules
  - staffing/store.go: AmendmentStore interface
*/
package poledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/warp/staffing-engine/staffing"
)

// =============================================================================
// LEDGER SERVICE
// =============================================================================

// Ledger is the store-backed PO amendment ledger.
type Ledger struct {
	store staffing.AmendmentStore
	now   func() staffing.DatePoint
}

// New creates a ledger over the given store, using the wall clock for
// recomputation.
func New(store staffing.AmendmentStore) *Ledger {
	return &Ledger{store: store, now: staffing.Today}
}

// WithClock overrides the "today" source. For tests.
func (l *Ledger) WithClock(now func() staffing.DatePoint) *Ledger {
	l.now = now
	return l
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Create validates and inserts a new amendment for the project, then
// recomputes which amendment is active. The record is inserted inactive;
// recomputation decides whether it becomes active today.
func (l *Ledger) Create(ctx context.Context, projectID staffing.ProjectID, poNumber string, start, end *staffing.DatePoint) (*staffing.POAmendment, error) {
	if err := staffing.ValidateAmendment(poNumber, start, end); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	amendment := staffing.POAmendment{
		ID:        staffing.AmendmentID(uuid.NewString()),
		ProjectID: projectID,
		PONumber:  poNumber,
		StartDate: start,
		EndDate:   end,
		IsActive:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := l.store.SaveAmendment(ctx, amendment); err != nil {
		return nil, err
	}
	if _, err := l.Recompute(ctx, projectID); err != nil {
		return nil, err
	}

	saved, err := l.store.GetAmendment(ctx, amendment.ID)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Update validates and persists changes to an existing amendment, then
// recomputes the project's active record.
func (l *Ledger) Update(ctx context.Context, id staffing.AmendmentID, poNumber string, start, end *staffing.DatePoint) (*staffing.POAmendment, error) {
	if err := staffing.ValidateAmendment(poNumber, start, end); err != nil {
		return nil, err
	}

	existing, err := l.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.PONumber = poNumber
	existing.StartDate = start
	existing.EndDate = end
	existing.UpdatedAt = time.Now().UTC()

	if err := l.store.SaveAmendment(ctx, *existing); err != nil {
		return nil, err
	}
	if _, err := l.Recompute(ctx, existing.ProjectID); err != nil {
		return nil, err
	}

	return l.store.GetAmendment(ctx, id)
}

// Delete removes the amendment. No recomputation of other records is
// required here: recomputation is idempotent and callers may re-trigger
// explicitly (the API layer recomputes on read anyway).
func (l *Ledger) Delete(ctx context.Context, id staffing.AmendmentID) error {
	if _, err := l.getExisting(ctx, id); err != nil {
		return err
	}
	return l.store.DeleteAmendment(ctx, id)
}

// SetActive manually flags one amendment active. Siblings are untouched;
// see the package comment for the two-step override pattern.
func (l *Ledger) SetActive(ctx context.Context, id staffing.AmendmentID) error {
	return l.setActiveFlag(ctx, id, true)
}

// SetInactive manually clears one amendment's active flag.
func (l *Ledger) SetInactive(ctx context.Context, id staffing.AmendmentID) error {
	return l.setActiveFlag(ctx, id, false)
}

func (l *Ledger) setActiveFlag(ctx context.Context, id staffing.AmendmentID, active bool) error {
	existing, err := l.getExisting(ctx, id)
	if err != nil {
		return err
	}
	existing.IsActive = active
	existing.UpdatedAt = time.Now().UTC()
	return l.store.SaveAmendment(ctx, *existing)
}

// DeactivateAllForProject clears every active flag in the project's ledger.
// The explicit first step of the manual activation workflow.
func (l *Ledger) DeactivateAllForProject(ctx context.Context, projectID staffing.ProjectID) error {
	amendments, err := l.store.ListAmendments(ctx, projectID)
	if err != nil {
		return err
	}
	for i := range amendments {
		if !amendments[i].IsActive {
			continue
		}
		amendments[i].IsActive = false
		amendments[i].UpdatedAt = time.Now().UTC()
		if err := l.store.SaveAmendment(ctx, amendments[i]); err != nil {
			return err
		}
	}
	return nil
}

// Recompute runs the date-driven recomputation for one project and persists
// the resulting flags. Returns the activated amendment, or nil when none is
// date-eligible today. Idempotent.
func (l *Ledger) Recompute(ctx context.Context, projectID staffing.ProjectID) (*staffing.POAmendment, error) {
	amendments, err := l.store.ListAmendments(ctx, projectID)
	if err != nil {
		return nil, err
	}

	before := make([]bool, len(amendments))
	for i, a := range amendments {
		before[i] = a.IsActive
	}

	winner := staffing.RecomputeActive(amendments, l.now())

	for i := range amendments {
		if amendments[i].IsActive == before[i] {
			continue
		}
		amendments[i].UpdatedAt = time.Now().UTC()
		if err := l.store.SaveAmendment(ctx, amendments[i]); err != nil {
			return nil, err
		}
	}

	if winner < 0 {
		return nil, nil
	}
	active := amendments[winner]
	return &active, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Amendments returns the project's ledger ordered by start date, with the
// active flags freshly recomputed. Derived flags are never trusted across
// sessions, so reads recompute defensively.
func (l *Ledger) Amendments(ctx context.Context, projectID staffing.ProjectID) ([]staffing.POAmendment, error) {
	if _, err := l.Recompute(ctx, projectID); err != nil {
		return nil, err
	}
	return l.store.ListAmendments(ctx, projectID)
}

// SuggestedStartDate returns the advisory next start date for the project,
// or nil when the ledger carries no end dates.
func (l *Ledger) SuggestedStartDate(ctx context.Context, projectID staffing.ProjectID) (*staffing.DatePoint, error) {
	amendments, err := l.store.ListAmendments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return staffing.SuggestedStartDate(amendments), nil
}

func (l *Ledger) getExisting(ctx context.Context, id staffing.AmendmentID) (*staffing.POAmendment, error) {
	existing, err := l.store.GetAmendment(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, staffing.NewNotFoundError("amendment", string(id))
	}
	return existing, nil
}
