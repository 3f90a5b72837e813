/*
handlers.go - HTTP API handlers for the staffing engine

PURPOSE:
  Exposes the staffing rules engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                   List all employees
    POST   /api/employees                   Create employee
    GET    /api/employees/{id}              Get employee details
    PUT    /api/employees/{id}              Update employee
    DELETE /api/employees/{id}              Delete employee
    GET    /api/employees/{id}/assignments  List assignments (derived status)
    POST   /api/employees/{id}/assignments  Create assignment (validated)
    GET    /api/employees/{id}/allocation   Total/remaining allocation

  Assignments:
    PUT    /api/assignments/{id}             Update assignment (validated)
    DELETE /api/assignments/{id}             Delete assignment
    GET    /api/assignments/{id}/billability Derived Billable/Bench status

  PO Amendments:
    GET    /api/projects/{projectID}/amendments                 Ledger (recomputed)
    POST   /api/projects/{projectID}/amendments                 Amend PO
    GET    /api/projects/{projectID}/amendments/suggested-start Advisory guidance
    POST   /api/projects/{projectID}/amendments/deactivate-all  Manual flow step 1
    POST   /api/projects/{projectID}/amendments/recompute       Explicit recompute
    PUT    /api/amendments/{id}              Update amendment
    DELETE /api/amendments/{id}              Delete amendment
    POST   /api/amendments/{id}/activate     Manual flow step 2
    POST   /api/amendments/{id}/deactivate   Manual override

  Scenarios:
    GET    /api/scenarios                    List demo scenarios
    POST   /api/scenarios/load               Load a demo scenario

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (staffing rule functions, before any mutation)
  3. Persist via staffing.Store / poledger.Ledger
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/warp/staffing-engine/poledger"
	"github.com/warp/staffing-engine/staffing"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  staffing.Store
	Ledger *poledger.Ledger

	now func() staffing.DatePoint

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store staffing.Store) *Handler {
	return &Handler{
		Store:  store,
		Ledger: poledger.New(store),
		now:    staffing.Today,
	}
}

// WithClock overrides the "today" source for the handler and its ledger.
// For tests.
func (h *Handler) WithClock(now func() staffing.DatePoint) *Handler {
	h.now = now
	h.Ledger.WithClock(now)
	return h
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := staffing.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req SaveEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	emp := staffing.Employee{
		ID:             staffing.EmployeeID(req.ID),
		Name:           req.Name,
		Email:          req.Email,
		LastActiveDate: staffing.ParseDatePtr(req.LastActiveDate),
	}

	if err := h.saveEmployeeDerived(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}

	saved, err := h.Store.GetEmployee(r.Context(), emp.ID)
	if err != nil || saved == nil {
		writeError(w, http.StatusInternalServerError, "Failed to load created employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(*saved))
}

// UpdateEmployee updates an existing employee. The manually-entered
// last_active_date is kept only when no end date exists across the
// employee's assignments and their amendments.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := staffing.EmployeeID(chi.URLParam(r, "id"))

	existing, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	var req SaveEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Email != "" {
		existing.Email = req.Email
	}
	if req.LastActiveDate != "" {
		existing.LastActiveDate = staffing.ParseDatePtr(req.LastActiveDate)
	}

	if err := h.saveEmployeeDerived(r.Context(), *existing); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update employee", err)
		return
	}

	saved, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil || saved == nil {
		writeError(w, http.StatusInternalServerError, "Failed to load updated employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*saved))
}

// DeleteEmployee removes an employee and their assignments.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := staffing.EmployeeID(chi.URLParam(r, "id"))
	ctx := r.Context()

	existing, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	// Assignment lifecycle is tied to employee existence.
	assignments, err := h.Store.ListAssignments(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list assignments", err)
		return
	}
	for _, a := range assignments {
		if err := h.Store.DeleteAssignment(ctx, a.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to delete assignment", err)
			return
		}
	}

	if err := h.Store.DeleteEmployee(ctx, id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete employee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": string(id)})
}

// saveEmployeeDerived persists an employee with the latest-end-date rule
// applied: a derived date overrides the manual value, otherwise the manual
// value is kept as-is.
func (h *Handler) saveEmployeeDerived(ctx context.Context, emp staffing.Employee) error {
	assignments, err := h.Store.ListAssignments(ctx, emp.ID)
	if err != nil {
		return err
	}
	staffing.DeriveLastActiveDate(&emp, assignments)
	return h.Store.SaveEmployee(ctx, emp)
}

// =============================================================================
// ASSIGNMENT HANDLERS
// =============================================================================

// ListAssignments returns an employee's assignments with derived status.
// Supports ?sort= with the identifiers in assignmentSortKeys.
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	employeeID := staffing.EmployeeID(chi.URLParam(r, "id"))

	assignments, err := h.Store.ListAssignments(r.Context(), employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list assignments", err)
		return
	}

	if field := r.URL.Query().Get("sort"); field != "" {
		less, ok := assignmentLess(SortField(field))
		if !ok {
			writeError(w, http.StatusBadRequest, "Unknown sort field: "+field, nil)
			return
		}
		sort.SliceStable(assignments, func(i, j int) bool { return less(assignments[i], assignments[j]) })
	}

	today := h.now()
	dtos := make([]AssignmentDTO, len(assignments))
	for i, a := range assignments {
		dtos[i] = toAssignmentDTO(a, today)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAssignment creates an assignment after enforcing the allocation
// invariant against the employee's full current set.
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	employeeID := staffing.EmployeeID(chi.URLParam(r, "id"))
	ctx := r.Context()

	emp, err := h.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	var req SaveAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	assignment, err := h.assignmentFromRequest(employeeID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	assignment.ID = staffing.AssignmentID(uuid.NewString())

	// Re-read the authoritative current set before validating the sum.
	existing, err := h.Store.ListAssignments(ctx, employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list assignments", err)
		return
	}
	if err := staffing.ValidateNewAssignment(assignment.AllocationPercentage, existing); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Store.SaveAssignment(ctx, assignment); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save assignment", err)
		return
	}
	if err := h.saveEmployeeDerived(ctx, *emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to refresh employee", err)
		return
	}

	saved, err := h.Store.GetAssignment(ctx, assignment.ID)
	if err != nil || saved == nil {
		writeError(w, http.StatusInternalServerError, "Failed to load created assignment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssignmentDTO(*saved, h.now()))
}

// UpdateAssignment edits an assignment in place. The allocation check
// excludes the record being edited before adding the new percentage.
func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	id := staffing.AssignmentID(chi.URLParam(r, "id"))
	ctx := r.Context()

	existing, err := h.Store.GetAssignment(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get assignment", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Assignment not found", nil)
		return
	}

	var req SaveAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ProjectID == "" {
		req.ProjectID = string(existing.ProjectID)
	}

	updated, err := h.assignmentFromRequest(existing.EmployeeID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	all, err := h.Store.ListAssignments(ctx, existing.EmployeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list assignments", err)
		return
	}
	if err := staffing.ValidateEditedAssignment(id, updated.AllocationPercentage, all); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Store.SaveAssignment(ctx, updated); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save assignment", err)
		return
	}
	if emp, err := h.Store.GetEmployee(ctx, existing.EmployeeID); err == nil && emp != nil {
		if err := h.saveEmployeeDerived(ctx, *emp); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to refresh employee", err)
			return
		}
	}

	saved, err := h.Store.GetAssignment(ctx, id)
	if err != nil || saved == nil {
		writeError(w, http.StatusInternalServerError, "Failed to load updated assignment", err)
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentDTO(*saved, h.now()))
}

// DeleteAssignment removes an assignment.
func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id := staffing.AssignmentID(chi.URLParam(r, "id"))
	ctx := r.Context()

	existing, err := h.Store.GetAssignment(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get assignment", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Assignment not found", nil)
		return
	}

	if err := h.Store.DeleteAssignment(ctx, id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete assignment", err)
		return
	}
	if emp, err := h.Store.GetEmployee(ctx, existing.EmployeeID); err == nil && emp != nil {
		if err := h.saveEmployeeDerived(ctx, *emp); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to refresh employee", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": string(id)})
}

// GetBillability returns the derived Billable/Bench status of one
// assignment. Recomputed on every call, never persisted.
func (h *Handler) GetBillability(w http.ResponseWriter, r *http.Request) {
	id := staffing.AssignmentID(chi.URLParam(r, "id"))

	assignment, err := h.Store.GetAssignment(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get assignment", err)
		return
	}
	if assignment == nil {
		writeError(w, http.StatusNotFound, "Assignment not found", nil)
		return
	}

	billability := staffing.DeriveBillability(*assignment, h.now())
	writeJSON(w, http.StatusOK, BillabilityDTO{
		AssignmentID: string(id),
		Status:       string(billability.Status),
		IsActive:     billability.IsActive,
	})
}

// GetAllocation returns total and remaining allocation for an employee.
func (h *Handler) GetAllocation(w http.ResponseWriter, r *http.Request) {
	employeeID := staffing.EmployeeID(chi.URLParam(r, "id"))

	assignments, err := h.Store.ListAssignments(r.Context(), employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list assignments", err)
		return
	}

	total, _ := staffing.TotalAllocation(assignments).Float64()
	remaining, _ := staffing.RemainingAllocation(assignments).Float64()
	writeJSON(w, http.StatusOK, AllocationSummaryDTO{
		EmployeeID:          string(employeeID),
		TotalAllocation:     total,
		RemainingAllocation: remaining,
	})
}

// assignmentFromRequest parses and validates the writable assignment fields.
func (h *Handler) assignmentFromRequest(employeeID staffing.EmployeeID, req SaveAssignmentRequest) (staffing.Assignment, error) {
	if req.ProjectID == "" {
		return staffing.Assignment{}, &staffing.ValidationError{Field: "project_id", Message: "is required"}
	}
	start, ok := staffing.ParseDate(req.StartDate)
	if !ok {
		return staffing.Assignment{}, &staffing.ValidationError{Field: "start_date", Message: "is required (YYYY-MM-DD)"}
	}
	var end *staffing.DatePoint
	if req.EndDate != "" {
		parsed, ok := staffing.ParseDate(req.EndDate)
		if !ok {
			return staffing.Assignment{}, &staffing.ValidationError{Field: "end_date", Message: "invalid date (YYYY-MM-DD)"}
		}
		end = &parsed
	}
	billing := staffing.BillingCadence(req.Billing)
	if !staffing.ValidBillingCadence(billing) {
		return staffing.Assignment{}, &staffing.ValidationError{Field: "billing", Message: "must be one of Monthly, Fixed, Daily, Hourly"}
	}
	if req.Rate < 0 {
		return staffing.Assignment{}, &staffing.ValidationError{Field: "rate", Message: "must be >= 0"}
	}

	return staffing.Assignment{
		EmployeeID:           employeeID,
		ProjectID:            staffing.ProjectID(req.ProjectID),
		ProjectName:          req.ProjectName,
		Client:               req.Client,
		AllocationPercentage: staffing.Percent(req.AllocationPercentage),
		StartDate:            &start,
		EndDate:              end,
		RoleInProject:        req.RoleInProject,
		PONumber:             req.PONumber,
		Billing:              billing,
		Rate:                 staffing.Percent(req.Rate),
	}, nil
}

// =============================================================================
// PO AMENDMENT HANDLERS
// =============================================================================

// ListAmendments returns a project's ledger with freshly recomputed flags.
func (h *Handler) ListAmendments(w http.ResponseWriter, r *http.Request) {
	projectID := staffing.ProjectID(chi.URLParam(r, "projectID"))

	amendments, err := h.Ledger.Amendments(r.Context(), projectID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAmendmentDTOs(amendments))
}

// CreateAmendment amends a project's PO.
func (h *Handler) CreateAmendment(w http.ResponseWriter, r *http.Request) {
	projectID := staffing.ProjectID(chi.URLParam(r, "projectID"))

	var req SaveAmendmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amendment, err := h.Ledger.Create(r.Context(), projectID, req.PONumber,
		staffing.ParseDatePtr(req.StartDate), staffing.ParseDatePtr(req.EndDate))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAmendmentDTO(*amendment))
}

// UpdateAmendment edits an amendment via the explicit edit action.
func (h *Handler) UpdateAmendment(w http.ResponseWriter, r *http.Request) {
	id := staffing.AmendmentID(chi.URLParam(r, "id"))

	var req SaveAmendmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amendment, err := h.Ledger.Update(r.Context(), id, req.PONumber,
		staffing.ParseDatePtr(req.StartDate), staffing.ParseDatePtr(req.EndDate))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAmendmentDTO(*amendment))
}

// DeleteAmendment removes an amendment.
func (h *Handler) DeleteAmendment(w http.ResponseWriter, r *http.Request) {
	id := staffing.AmendmentID(chi.URLParam(r, "id"))

	if err := h.Ledger.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": string(id)})
}

// ActivateAmendment manually flags an amendment active. Does not touch
// siblings; call DeactivateAllAmendments first for single-active semantics.
func (h *Handler) ActivateAmendment(w http.ResponseWriter, r *http.Request) {
	id := staffing.AmendmentID(chi.URLParam(r, "id"))

	if err := h.Ledger.SetActive(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": string(id), "is_active": true})
}

// DeactivateAmendment manually clears an amendment's active flag.
func (h *Handler) DeactivateAmendment(w http.ResponseWriter, r *http.Request) {
	id := staffing.AmendmentID(chi.URLParam(r, "id"))

	if err := h.Ledger.SetInactive(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": string(id), "is_active": false})
}

// DeactivateAllAmendments clears every active flag in a project's ledger.
func (h *Handler) DeactivateAllAmendments(w http.ResponseWriter, r *http.Request) {
	projectID := staffing.ProjectID(chi.URLParam(r, "projectID"))

	if err := h.Ledger.DeactivateAllForProject(r.Context(), projectID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"project_id": string(projectID), "deactivated": true})
}

// RecomputeAmendments triggers the date-driven recomputation explicitly.
func (h *Handler) RecomputeAmendments(w http.ResponseWriter, r *http.Request) {
	projectID := staffing.ProjectID(chi.URLParam(r, "projectID"))

	active, err := h.Ledger.Recompute(r.Context(), projectID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := map[string]any{"project_id": string(projectID)}
	if active != nil {
		resp["active"] = toAmendmentDTO(*active)
	}
	writeJSON(w, http.StatusOK, resp)
}

// SuggestedStart returns the advisory next start date for a project's PO.
func (h *Handler) SuggestedStart(w http.ResponseWriter, r *http.Request) {
	projectID := staffing.ProjectID(chi.URLParam(r, "projectID"))

	suggested, err := h.Ledger.SuggestedStartDate(r.Context(), projectID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dto := SuggestedStartDTO{ProjectID: string(projectID)}
	if suggested != nil {
		dto.SuggestedStart = suggested.String()
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps staffing errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case staffing.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	case staffing.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
