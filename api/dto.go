/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DATES:
  Exchanged as ISO calendar dates (YYYY-MM-DD). Nullable end dates are
  omitted when absent. Malformed dates in requests are rejected with 400;
  malformed dates already in the store fail closed at evaluation time.

VALIDATION:
  Validation is done in handlers and the staffing package, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - staffing/types.go: Domain model
*/
package api

import (
	"time"

	"github.com/warp/staffing-engine/staffing"
)

// =============================================================================
// EMPLOYEE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	LastActiveDate string `json:"last_active_date,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// SaveEmployeeRequest creates or updates an employee. LastActiveDate is the
// manually-entered value; a derived latest end date overrides it at save
// time.
type SaveEmployeeRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	LastActiveDate string `json:"last_active_date,omitempty"`
}

// =============================================================================
// ASSIGNMENT TYPES
// =============================================================================

// AssignmentDTO represents an assignment with its derived billability and
// joined amendment ledger.
type AssignmentDTO struct {
	ID                   string           `json:"id"`
	EmployeeID           string           `json:"employee_id"`
	ProjectID            string           `json:"project_id"`
	ProjectName          string           `json:"project_name,omitempty"`
	Client               string           `json:"client,omitempty"`
	AllocationPercentage float64          `json:"allocation_percentage"`
	StartDate            string           `json:"start_date"`
	EndDate              string           `json:"end_date,omitempty"`
	RoleInProject        string           `json:"role_in_project,omitempty"`
	PONumber             string           `json:"po_number,omitempty"`
	Billing              string           `json:"billing"`
	Rate                 float64          `json:"rate"`
	POAmendments         []POAmendmentDTO `json:"po_amendments"`

	// Derived on every response, never persisted.
	Status   string `json:"status"`
	IsActive bool   `json:"is_active"`
}

// SaveAssignmentRequest creates or updates an assignment.
type SaveAssignmentRequest struct {
	ProjectID            string  `json:"project_id"`
	ProjectName          string  `json:"project_name,omitempty"`
	Client               string  `json:"client,omitempty"`
	AllocationPercentage float64 `json:"allocation_percentage"`
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date,omitempty"`
	RoleInProject        string  `json:"role_in_project,omitempty"`
	PONumber             string  `json:"po_number,omitempty"`
	Billing              string  `json:"billing"`
	Rate                 float64 `json:"rate"`
}

// AllocationSummaryDTO is the per-employee capacity view.
type AllocationSummaryDTO struct {
	EmployeeID          string  `json:"employee_id"`
	TotalAllocation     float64 `json:"total_allocation"`
	RemainingAllocation float64 `json:"remaining_allocation"`
}

// BillabilityDTO is the derived display status of one assignment.
type BillabilityDTO struct {
	AssignmentID string `json:"assignment_id"`
	Status       string `json:"status"`
	IsActive     bool   `json:"is_active"`
}

// =============================================================================
// PO AMENDMENT TYPES
// =============================================================================

// POAmendmentDTO represents a PO amendment in API responses.
type POAmendmentDTO struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	PONumber  string `json:"po_number"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// SaveAmendmentRequest creates or updates a PO amendment.
type SaveAmendmentRequest struct {
	PONumber  string `json:"po_number"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
}

// SuggestedStartDTO carries the advisory start-date guidance.
type SuggestedStartDTO struct {
	ProjectID      string `json:"project_id"`
	SuggestedStart string `json:"suggested_start,omitempty"`
}

// =============================================================================
// SCENARIO TYPES
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ID string `json:"id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// SORT FIELD LOOKUP - UI field identifiers mapped to model sort keys
// =============================================================================

// SortField identifies a client-facing sortable field. The UI sends its own
// field identifiers; this explicit enum-keyed table maps them onto model
// fields instead of transforming strings at runtime.
type SortField string

const (
	SortByStartDate  SortField = "start_date"
	SortByAllocation SortField = "allocation_percentage"
	SortByClient     SortField = "client"
	SortByProject    SortField = "project_name"
)

var assignmentSortKeys = map[SortField]func(a, b staffing.Assignment) bool{
	SortByStartDate: func(a, b staffing.Assignment) bool {
		if a.StartDate == nil || b.StartDate == nil {
			return a.ID < b.ID
		}
		return a.StartDate.Before(*b.StartDate)
	},
	SortByAllocation: func(a, b staffing.Assignment) bool {
		return a.AllocationPercentage.LessThan(b.AllocationPercentage)
	},
	SortByClient: func(a, b staffing.Assignment) bool {
		return a.Client < b.Client
	},
	SortByProject: func(a, b staffing.Assignment) bool {
		return a.ProjectName < b.ProjectName
	},
}

// assignmentLess returns the comparator for a sort field, or (nil, false)
// for unknown identifiers.
func assignmentLess(field SortField) (func(a, b staffing.Assignment) bool, bool) {
	less, ok := assignmentSortKeys[field]
	return less, ok
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e staffing.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:    string(e.ID),
		Name:  e.Name,
		Email: e.Email,
	}
	if e.LastActiveDate != nil {
		dto.LastActiveDate = e.LastActiveDate.String()
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toAssignmentDTO(a staffing.Assignment, today staffing.DatePoint) AssignmentDTO {
	allocation, _ := a.AllocationPercentage.Float64()
	rate, _ := a.Rate.Float64()
	billability := staffing.DeriveBillability(a, today)

	dto := AssignmentDTO{
		ID:                   string(a.ID),
		EmployeeID:           string(a.EmployeeID),
		ProjectID:            string(a.ProjectID),
		ProjectName:          a.ProjectName,
		Client:               a.Client,
		AllocationPercentage: allocation,
		RoleInProject:        a.RoleInProject,
		PONumber:             a.PONumber,
		Billing:              string(a.Billing),
		Rate:                 rate,
		POAmendments:         toAmendmentDTOs(a.POAmendments),
		Status:               string(billability.Status),
		IsActive:             billability.IsActive,
	}
	if a.StartDate != nil {
		dto.StartDate = a.StartDate.String()
	}
	if a.EndDate != nil {
		dto.EndDate = a.EndDate.String()
	}
	return dto
}

func toAmendmentDTO(a staffing.POAmendment) POAmendmentDTO {
	dto := POAmendmentDTO{
		ID:        string(a.ID),
		ProjectID: string(a.ProjectID),
		PONumber:  a.PONumber,
		IsActive:  a.IsActive,
	}
	if a.StartDate != nil {
		dto.StartDate = a.StartDate.String()
	}
	if a.EndDate != nil {
		dto.EndDate = a.EndDate.String()
	}
	if !a.CreatedAt.IsZero() {
		dto.CreatedAt = a.CreatedAt.Format(time.RFC3339)
	}
	if !a.UpdatedAt.IsZero() {
		dto.UpdatedAt = a.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toAmendmentDTOs(amendments []staffing.POAmendment) []POAmendmentDTO {
	dtos := make([]POAmendmentDTO, len(amendments))
	for i, a := range amendments {
		dtos[i] = toAmendmentDTO(a)
	}
	return dtos
}
