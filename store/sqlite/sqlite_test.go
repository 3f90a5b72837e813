/*
sqlite_test.go - Round-trip tests against an in-memory database

Tests for:
- Employee persistence (nullable last_active_date)
- Assignment persistence (decimal allocation stored as text, ledger join)
- PO amendment persistence and upsert semantics
- Reset used by the scenario loader
*/
package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/warp/staffing-engine/staffing"
	"github.com/warp/staffing-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEmployee_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	lastActive := staffing.NewDate(2024, time.September, 30)
	emp := staffing.Employee{
		ID:             "emp-1",
		Name:           "Test User",
		Email:          "test@example.com",
		LastActiveDate: lastActive.Ptr(),
	}
	if err := store.SaveEmployee(ctx, emp); err != nil {
		t.Fatalf("Failed to save employee: %v", err)
	}

	fetched, err := store.GetEmployee(ctx, "emp-1")
	if err != nil {
		t.Fatalf("Failed to get employee: %v", err)
	}
	if fetched == nil {
		t.Fatal("Employee not found")
	}
	if fetched.Name != "Test User" {
		t.Errorf("Expected name 'Test User', got '%s'", fetched.Name)
	}
	if fetched.LastActiveDate == nil || fetched.LastActiveDate.String() != "2024-09-30" {
		t.Errorf("Expected last active 2024-09-30, got %v", fetched.LastActiveDate)
	}

	// Missing id returns (nil, nil), not an error
	missing, err := store.GetEmployee(ctx, "nope")
	if err != nil {
		t.Fatalf("Unexpected error for missing employee: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for missing employee")
	}
}

func TestEmployee_UpsertAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := staffing.Employee{ID: "emp-1", Name: "Before"}
	store.SaveEmployee(ctx, emp)

	emp.Name = "After"
	emp.LastActiveDate = staffing.NewDate(2024, time.December, 31).Ptr()
	if err := store.SaveEmployee(ctx, emp); err != nil {
		t.Fatalf("Failed to upsert employee: %v", err)
	}

	fetched, _ := store.GetEmployee(ctx, "emp-1")
	if fetched == nil || fetched.Name != "After" {
		t.Fatalf("Expected upserted name 'After', got %+v", fetched)
	}

	if err := store.DeleteEmployee(ctx, "emp-1"); err != nil {
		t.Fatalf("Failed to delete employee: %v", err)
	}
	fetched, _ = store.GetEmployee(ctx, "emp-1")
	if fetched != nil {
		t.Error("Employee should not exist after deletion")
	}
}

func TestAssignment_RoundTripWithLedgerJoin(t *testing.T) {
	// GIVEN: An assignment and an amendment on its project
	store := newTestStore(t)
	ctx := context.Background()

	assignment := staffing.Assignment{
		ID:                   "a-1",
		EmployeeID:           "emp-1",
		ProjectID:            "proj-1",
		ProjectName:          "Atlas",
		Client:               "Northwind",
		AllocationPercentage: staffing.Percent(33.33),
		StartDate:            staffing.NewDate(2024, time.January, 1).Ptr(),
		EndDate:              staffing.NewDate(2024, time.June, 30).Ptr(),
		PONumber:             "PO-1",
		Billing:              staffing.BillingMonthly,
		Rate:                 staffing.Percent(120),
	}
	if err := store.SaveAssignment(ctx, assignment); err != nil {
		t.Fatalf("Failed to save assignment: %v", err)
	}

	amendment := staffing.POAmendment{
		ID:        "am-1",
		ProjectID: "proj-1",
		PONumber:  "PO-2",
		StartDate: staffing.NewDate(2024, time.July, 1).Ptr(),
		IsActive:  true,
	}
	if err := store.SaveAmendment(ctx, amendment); err != nil {
		t.Fatalf("Failed to save amendment: %v", err)
	}

	// WHEN: Reading the assignment back
	fetched, err := store.GetAssignment(ctx, "a-1")
	if err != nil {
		t.Fatalf("Failed to get assignment: %v", err)
	}
	if fetched == nil {
		t.Fatal("Assignment not found")
	}

	// THEN: The decimal survives as text, exactly
	if fetched.AllocationPercentage.String() != "33.33" {
		t.Errorf("Expected allocation '33.33', got '%s'", fetched.AllocationPercentage.String())
	}
	if fetched.EndDate == nil || fetched.EndDate.String() != "2024-06-30" {
		t.Errorf("Expected end date 2024-06-30, got %v", fetched.EndDate)
	}

	// And the project ledger is joined in
	if len(fetched.POAmendments) != 1 {
		t.Fatalf("Expected 1 joined amendment, got %d", len(fetched.POAmendments))
	}
	if fetched.POAmendments[0].PONumber != "PO-2" {
		t.Errorf("Expected joined PO-2, got '%s'", fetched.POAmendments[0].PONumber)
	}
}

func TestAssignment_NullableEndDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assignment := staffing.Assignment{
		ID:                   "a-open",
		EmployeeID:           "emp-1",
		ProjectID:            "proj-1",
		AllocationPercentage: staffing.Percent(50),
		StartDate:            staffing.NewDate(2024, time.January, 1).Ptr(),
		Billing:              staffing.BillingFixed,
		Rate:                 staffing.Percent(0),
	}
	if err := store.SaveAssignment(ctx, assignment); err != nil {
		t.Fatalf("Failed to save assignment: %v", err)
	}

	fetched, _ := store.GetAssignment(ctx, "a-open")
	if fetched == nil {
		t.Fatal("Assignment not found")
	}
	if fetched.EndDate != nil {
		t.Errorf("Expected nil end date (ongoing), got %v", fetched.EndDate)
	}
}

func TestListAssignments_OrderedByStartDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	later := staffing.Assignment{
		ID:                   "a-later",
		EmployeeID:           "emp-1",
		ProjectID:            "proj-2",
		AllocationPercentage: staffing.Percent(40),
		StartDate:            staffing.NewDate(2024, time.March, 1).Ptr(),
		Billing:              staffing.BillingMonthly,
		Rate:                 staffing.Percent(0),
	}
	earlier := staffing.Assignment{
		ID:                   "a-earlier",
		EmployeeID:           "emp-1",
		ProjectID:            "proj-1",
		AllocationPercentage: staffing.Percent(60),
		StartDate:            staffing.NewDate(2024, time.January, 1).Ptr(),
		Billing:              staffing.BillingMonthly,
		Rate:                 staffing.Percent(0),
	}
	other := staffing.Assignment{
		ID:                   "a-other-emp",
		EmployeeID:           "emp-2",
		ProjectID:            "proj-1",
		AllocationPercentage: staffing.Percent(10),
		StartDate:            staffing.NewDate(2024, time.January, 1).Ptr(),
		Billing:              staffing.BillingMonthly,
		Rate:                 staffing.Percent(0),
	}
	for _, a := range []staffing.Assignment{later, earlier, other} {
		if err := store.SaveAssignment(ctx, a); err != nil {
			t.Fatalf("Failed to save assignment %s: %v", a.ID, err)
		}
	}

	assignments, err := store.ListAssignments(ctx, "emp-1")
	if err != nil {
		t.Fatalf("Failed to list assignments: %v", err)
	}
	if len(assignments) != 2 {
		t.Fatalf("Expected 2 assignments for emp-1, got %d", len(assignments))
	}
	if assignments[0].ID != "a-earlier" || assignments[1].ID != "a-later" {
		t.Errorf("Expected [a-earlier, a-later], got [%s, %s]", assignments[0].ID, assignments[1].ID)
	}
}

func TestAmendment_UpsertPreservesCreatedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	amendment := staffing.POAmendment{
		ID:        "am-1",
		ProjectID: "proj-1",
		PONumber:  "PO-1",
		StartDate: staffing.NewDate(2024, time.January, 1).Ptr(),
		CreatedAt: created,
		UpdatedAt: created,
	}
	if err := store.SaveAmendment(ctx, amendment); err != nil {
		t.Fatalf("Failed to save amendment: %v", err)
	}

	amendment.PONumber = "PO-1-REV"
	amendment.IsActive = true
	amendment.UpdatedAt = created.Add(24 * time.Hour)
	if err := store.SaveAmendment(ctx, amendment); err != nil {
		t.Fatalf("Failed to upsert amendment: %v", err)
	}

	fetched, err := store.GetAmendment(ctx, "am-1")
	if err != nil {
		t.Fatalf("Failed to get amendment: %v", err)
	}
	if fetched == nil {
		t.Fatal("Amendment not found")
	}
	if fetched.PONumber != "PO-1-REV" {
		t.Errorf("Expected PO-1-REV, got '%s'", fetched.PONumber)
	}
	if !fetched.IsActive {
		t.Error("Expected active flag to persist")
	}
	if !fetched.CreatedAt.Equal(created) {
		t.Errorf("Expected created_at preserved on upsert, got %v", fetched.CreatedAt)
	}
}

func TestListAmendments_PerProject(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, a := range []staffing.POAmendment{
		{ID: "am-1", ProjectID: "proj-1", PONumber: "PO-1", StartDate: staffing.NewDate(2024, time.April, 1).Ptr()},
		{ID: "am-2", ProjectID: "proj-1", PONumber: "PO-2", StartDate: staffing.NewDate(2024, time.January, 1).Ptr()},
		{ID: "am-3", ProjectID: "proj-2", PONumber: "PO-3", StartDate: staffing.NewDate(2024, time.January, 1).Ptr()},
	} {
		if err := store.SaveAmendment(ctx, a); err != nil {
			t.Fatalf("Failed to save amendment %s: %v", a.ID, err)
		}
	}

	amendments, err := store.ListAmendments(ctx, "proj-1")
	if err != nil {
		t.Fatalf("Failed to list amendments: %v", err)
	}
	if len(amendments) != 2 {
		t.Fatalf("Expected 2 amendments for proj-1, got %d", len(amendments))
	}
	// Ordered by start date
	if amendments[0].ID != "am-2" || amendments[1].ID != "am-1" {
		t.Errorf("Expected [am-2, am-1], got [%s, %s]", amendments[0].ID, amendments[1].ID)
	}

	if err := store.DeleteAmendment(ctx, "am-2"); err != nil {
		t.Fatalf("Failed to delete amendment: %v", err)
	}
	amendments, _ = store.ListAmendments(ctx, "proj-1")
	if len(amendments) != 1 {
		t.Errorf("Expected 1 amendment after delete, got %d", len(amendments))
	}
}

func TestReset_WipesAllTables(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.SaveEmployee(ctx, staffing.Employee{ID: "emp-1", Name: "X"})
	store.SaveAssignment(ctx, staffing.Assignment{
		ID: "a-1", EmployeeID: "emp-1", ProjectID: "proj-1",
		AllocationPercentage: staffing.Percent(10),
		StartDate:            staffing.NewDate(2024, time.January, 1).Ptr(),
		Billing:              staffing.BillingMonthly,
		Rate:                 staffing.Percent(0),
	})
	store.SaveAmendment(ctx, staffing.POAmendment{
		ID: "am-1", ProjectID: "proj-1", PONumber: "PO-1",
		StartDate: staffing.NewDate(2024, time.January, 1).Ptr(),
	})

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}

	employees, _ := store.ListEmployees(ctx)
	assignments, _ := store.ListAssignments(ctx, "emp-1")
	amendments, _ := store.ListAmendments(ctx, "proj-1")
	if len(employees)+len(assignments)+len(amendments) != 0 {
		t.Errorf("Expected empty store after reset, got %d/%d/%d",
			len(employees), len(assignments), len(amendments))
	}
}
