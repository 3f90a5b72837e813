// Package store provides an in-memory staffing.Store implementation
// for testing and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/staffing-engine/staffing"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	employees   map[staffing.EmployeeID]staffing.Employee
	assignments map[staffing.AssignmentID]staffing.Assignment
	amendments  map[staffing.AmendmentID]staffing.POAmendment
}

func NewMemory() *Memory {
	return &Memory{
		employees:   make(map[staffing.EmployeeID]staffing.Employee),
		assignments: make(map[staffing.AssignmentID]staffing.Assignment),
		amendments:  make(map[staffing.AmendmentID]staffing.POAmendment),
	}
}

var _ staffing.Store = (*Memory)(nil)

// Reset wipes all records. Used by the demo scenario loader.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = make(map[staffing.EmployeeID]staffing.Employee)
	m.assignments = make(map[staffing.AssignmentID]staffing.Assignment)
	m.amendments = make(map[staffing.AmendmentID]staffing.POAmendment)
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) ListEmployees(_ context.Context) ([]staffing.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]staffing.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) GetEmployee(_ context.Context, id staffing.EmployeeID) (*staffing.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *Memory) SaveEmployee(_ context.Context, e staffing.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) DeleteEmployee(_ context.Context, id staffing.EmployeeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.employees, id)
	return nil
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func (m *Memory) ListAssignments(_ context.Context, employeeID staffing.EmployeeID) ([]staffing.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []staffing.Assignment
	for _, a := range m.assignments {
		if a.EmployeeID != employeeID {
			continue
		}
		a.POAmendments = m.amendmentsForProjectLocked(a.ProjectID)
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		di, dj := result[i].StartDate, result[j].StartDate
		if di == nil || dj == nil {
			return result[i].ID < result[j].ID
		}
		if di.Equal(*dj) {
			return result[i].ID < result[j].ID
		}
		return di.Before(*dj)
	})
	return result, nil
}

func (m *Memory) GetAssignment(_ context.Context, id staffing.AssignmentID) (*staffing.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assignments[id]
	if !ok {
		return nil, nil
	}
	a.POAmendments = m.amendmentsForProjectLocked(a.ProjectID)
	return &a, nil
}

func (m *Memory) SaveAssignment(_ context.Context, a staffing.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// The ledger lives in the amendments map; don't persist the joined copy.
	a.POAmendments = nil
	m.assignments[a.ID] = a
	return nil
}

func (m *Memory) DeleteAssignment(_ context.Context, id staffing.AssignmentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assignments, id)
	return nil
}

// =============================================================================
// AMENDMENTS
// =============================================================================

func (m *Memory) ListAmendments(_ context.Context, projectID staffing.ProjectID) ([]staffing.POAmendment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.amendmentsForProjectLocked(projectID), nil
}

func (m *Memory) GetAmendment(_ context.Context, id staffing.AmendmentID) (*staffing.POAmendment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.amendments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *Memory) SaveAmendment(_ context.Context, a staffing.POAmendment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.amendments[a.ID] = a
	return nil
}

func (m *Memory) DeleteAmendment(_ context.Context, id staffing.AmendmentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.amendments, id)
	return nil
}

func (m *Memory) amendmentsForProjectLocked(projectID staffing.ProjectID) []staffing.POAmendment {
	var result []staffing.POAmendment
	for _, a := range m.amendments {
		if a.ProjectID == projectID {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		di, dj := result[i].StartDate, result[j].StartDate
		if di == nil || dj == nil {
			return result[i].ID < result[j].ID
		}
		if di.Equal(*dj) {
			return result[i].ID < result[j].ID
		}
		return di.Before(*dj)
	})
	return result
}
