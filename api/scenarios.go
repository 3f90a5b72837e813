/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Seeds the store with small, recognizable data sets so the frontend demo
  and manual API exploration have something to show. Each scenario wipes
  the store first (when the store supports Reset) and rebuilds from scratch,
  so loading is repeatable.

SCENARIOS:
  bench-and-billable:     One billable consultant, one bench consultant
  overlapping-amendments: A project whose PO amendments overlap today
  fully-allocated:        An employee at exactly 100% across two projects
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/warp/staffing-engine/staffing"
)

// Resetter is implemented by stores that can wipe all records.
type Resetter interface {
	Reset(ctx context.Context) error
}

// scenario couples metadata with its loader.
type scenario struct {
	ID          string
	Name        string
	Description string
	Load        func(ctx context.Context, h *Handler) error
}

var scenarios = []scenario{
	{
		ID:          "bench-and-billable",
		Name:        "Bench and Billable",
		Description: "Two consultants: one covered by an active PO amendment, one without any PO.",
		Load:        loadBenchAndBillable,
	},
	{
		ID:          "overlapping-amendments",
		Name:        "Overlapping Amendments",
		Description: "A project with two date-eligible PO amendments; the later start date wins.",
		Load:        loadOverlappingAmendments,
	},
	{
		ID:          "fully-allocated",
		Name:        "Fully Allocated",
		Description: "An employee at exactly 100% across two projects, zero headroom left.",
		Load:        loadFullyAllocated,
	},
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the id of the last loaded scenario.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"id": h.currentScenario})
}

// LoadScenario wipes the store and seeds the selected scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var selected *scenario
	for i := range scenarios {
		if scenarios[i].ID == req.ID {
			selected = &scenarios[i]
			break
		}
	}
	if selected == nil {
		writeError(w, http.StatusNotFound, "Unknown scenario: "+req.ID, nil)
		return
	}

	ctx := r.Context()
	if resetter, ok := h.Store.(Resetter); ok {
		if err := resetter.Reset(ctx); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
			return
		}
	}

	if err := selected.Load(ctx, h); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = selected.ID
	writeJSON(w, http.StatusOK, map[string]string{"loaded": selected.ID})
}

// =============================================================================
// LOADERS
// =============================================================================

func loadBenchAndBillable(ctx context.Context, h *Handler) error {
	today := h.now()

	billable := staffing.Employee{ID: "emp-ana", Name: "Ana Duarte", Email: "ana@example.com"}
	bench := staffing.Employee{ID: "emp-noor", Name: "Noor Haddad", Email: "noor@example.com"}
	for _, e := range []staffing.Employee{billable, bench} {
		if err := h.Store.SaveEmployee(ctx, e); err != nil {
			return err
		}
	}

	start := today.AddDays(-90)
	assignment := staffing.Assignment{
		ID:                   staffing.AssignmentID(uuid.NewString()),
		EmployeeID:           billable.ID,
		ProjectID:            "proj-atlas",
		ProjectName:          "Atlas Migration",
		Client:               "Northwind",
		AllocationPercentage: staffing.Percent(80),
		StartDate:            start.Ptr(),
		RoleInProject:        "Backend engineer",
		Billing:              staffing.BillingMonthly,
		Rate:                 staffing.Percent(120),
	}
	if err := h.Store.SaveAssignment(ctx, assignment); err != nil {
		return err
	}
	if _, err := h.Ledger.Create(ctx, "proj-atlas", "PO-2024-017",
		start.Ptr(), today.AddDays(60).Ptr()); err != nil {
		return err
	}

	benchAssignment := staffing.Assignment{
		ID:                   staffing.AssignmentID(uuid.NewString()),
		EmployeeID:           bench.ID,
		ProjectID:            "proj-internal",
		ProjectName:          "Internal Tooling",
		AllocationPercentage: staffing.Percent(50),
		StartDate:            today.AddDays(-30).Ptr(),
		Billing:              staffing.BillingFixed,
		Rate:                 staffing.Percent(0),
	}
	return h.Store.SaveAssignment(ctx, benchAssignment)
}

func loadOverlappingAmendments(ctx context.Context, h *Handler) error {
	today := h.now()

	emp := staffing.Employee{ID: "emp-kai", Name: "Kai Tanaka", Email: "kai@example.com"}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}
	assignment := staffing.Assignment{
		ID:                   staffing.AssignmentID(uuid.NewString()),
		EmployeeID:           emp.ID,
		ProjectID:            "proj-helios",
		ProjectName:          "Helios Platform",
		Client:               "Contoso",
		AllocationPercentage: staffing.Percent(100),
		StartDate:            today.AddDays(-180).Ptr(),
		Billing:              staffing.BillingDaily,
		Rate:                 staffing.Percent(950),
	}
	if err := h.Store.SaveAssignment(ctx, assignment); err != nil {
		return err
	}

	// Both ranges contain today; recomputation picks the later start.
	if _, err := h.Ledger.Create(ctx, "proj-helios", "PO-2024-001",
		today.AddDays(-120).Ptr(), today.AddDays(30).Ptr()); err != nil {
		return err
	}
	if _, err := h.Ledger.Create(ctx, "proj-helios", "PO-2024-009",
		today.AddDays(-10).Ptr(), today.AddDays(90).Ptr()); err != nil {
		return err
	}
	return nil
}

func loadFullyAllocated(ctx context.Context, h *Handler) error {
	today := h.now()

	emp := staffing.Employee{ID: "emp-lena", Name: "Lena Fischer", Email: "lena@example.com"}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	for i, split := range []struct {
		project    staffing.ProjectID
		name       string
		allocation float64
	}{
		{"proj-vega", "Vega Rollout", 60},
		{"proj-orion", "Orion Support", 40},
	} {
		assignment := staffing.Assignment{
			ID:                   staffing.AssignmentID(uuid.NewString()),
			EmployeeID:           emp.ID,
			ProjectID:            split.project,
			ProjectName:          split.name,
			AllocationPercentage: staffing.Percent(split.allocation),
			StartDate:            today.AddDays(-60 * (i + 1)).Ptr(),
			EndDate:              today.AddDays(120).Ptr(),
			PONumber:             fmt.Sprintf("PO-LEG-%03d", i+1),
			Billing:              staffing.BillingHourly,
			Rate:                 staffing.Percent(85),
		}
		if err := h.Store.SaveAssignment(ctx, assignment); err != nil {
			return err
		}
	}

	// Keep the derived last-active-date in sync with the seeded end dates.
	saved, err := h.Store.GetEmployee(ctx, emp.ID)
	if err != nil || saved == nil {
		return err
	}
	return h.saveEmployeeDerived(ctx, *saved)
}
