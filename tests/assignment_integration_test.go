package tests

import (
	"errors"
	"os"
	"testing"

	"github.com/langroom/api/model"
	"github.com/langroom/api/services"
)

func TestAssignmentOrdering(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	ctx := setupTestEnvironment(t)
	student := ctx.createStudent(t, "Ordered Student")
	defer ctx.cleanupStudent(t, student.ID)
	course := ctx.createCourse(t, "Ordering Course")

	enrollment, err := ctx.enrollmentService.Enroll(ctx.teacher, student.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}

	first := ctx.createResource(t, "Worksheet A")
	second := ctx.createResource(t, "Worksheet B")
	third := ctx.createResource(t, "Worksheet C")

	batch, err := ctx.assignmentService.Assign(ctx.teacher, enrollment.ID, []uint{first.ID, second.ID})
	if err != nil {
		t.Fatalf("first batch failed: %v", err)
	}
	if batch[0].Order != 1 || batch[1].Order != 2 {
		t.Errorf("first batch positions = %d, %d, want 1, 2", batch[0].Order, batch[1].Order)
	}

	// A later batch continues from the current maximum
	batch, err = ctx.assignmentService.Assign(ctx.teacher, enrollment.ID, []uint{third.ID})
	if err != nil {
		t.Fatalf("second batch failed: %v", err)
	}
	if batch[0].Order != 3 {
		t.Errorf("second batch position = %d, want 3", batch[0].Order)
	}

	listed, err := ctx.assignmentService.List(student, enrollment.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("listed %d assignments, want 3", len(listed))
	}
	for i, a := range listed {
		if a.Order != i+1 {
			t.Errorf("listed[%d].Order = %d, want %d", i, a.Order, i+1)
		}
	}
}

func TestAssignmentDuplicateResource(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	ctx := setupTestEnvironment(t)
	student := ctx.createStudent(t, "Dup Student")
	defer ctx.cleanupStudent(t, student.ID)
	course := ctx.createCourse(t, "Dup Course")

	enrollment, err := ctx.enrollmentService.Enroll(ctx.teacher, student.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}

	resource := ctx.createResource(t, "Dup Worksheet")
	other := ctx.createResource(t, "Other Worksheet")

	if _, err := ctx.assignmentService.Assign(ctx.teacher, enrollment.ID, []uint{resource.ID}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	// The whole batch fails when any resource is already assigned
	_, err = ctx.assignmentService.Assign(ctx.teacher, enrollment.ID, []uint{other.ID, resource.ID})
	if !errors.Is(err, services.ErrConflict) {
		t.Errorf("duplicate batch error = %v, want ErrConflict", err)
	}

	var count int64
	ctx.db.Model(&model.Assignment{}).Where("enrollment_id = ?", enrollment.ID).Count(&count)
	if count != 1 {
		t.Errorf("assignment rows = %d, want 1 (failed batch must not partially apply)", count)
	}
}

func TestAssignmentValidation(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	ctx := setupTestEnvironment(t)
	student := ctx.createStudent(t, "Valid Student")
	defer ctx.cleanupStudent(t, student.ID)
	course := ctx.createCourse(t, "Valid Course")

	enrollment, err := ctx.enrollmentService.Enroll(ctx.teacher, student.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}

	if _, err := ctx.assignmentService.Assign(ctx.teacher, enrollment.ID, nil); !errors.Is(err, services.ErrInvalid) {
		t.Errorf("empty batch error = %v, want ErrInvalid", err)
	}
	if _, err := ctx.assignmentService.Assign(ctx.teacher, enrollment.ID, []uint{999999999}); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("unknown resource error = %v, want ErrNotFound", err)
	}
	if _, err := ctx.assignmentService.Assign(student, enrollment.ID, []uint{1}); !errors.Is(err, services.ErrForbidden) {
		t.Errorf("student assigning error = %v, want ErrForbidden", err)
	}
}

func TestUnassignKeepsGaps(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	ctx := setupTestEnvironment(t)
	student := ctx.createStudent(t, "Gap Student")
	defer ctx.cleanupStudent(t, student.ID)
	course := ctx.createCourse(t, "Gap Course")

	enrollment, err := ctx.enrollmentService.Enroll(ctx.teacher, student.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}

	a := ctx.createResource(t, "Gap A")
	b := ctx.createResource(t, "Gap B")
	c := ctx.createResource(t, "Gap C")

	batch, err := ctx.assignmentService.Assign(ctx.teacher, enrollment.ID, []uint{a.ID, b.ID, c.ID})
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	if err := ctx.assignmentService.Unassign(ctx.teacher, batch[1].ID); err != nil {
		t.Fatalf("unassign failed: %v", err)
	}

	listed, err := ctx.assignmentService.List(ctx.teacher, enrollment.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("listed %d assignments, want 2", len(listed))
	}
	// Remaining positions are not renumbered
	if listed[0].Order != 1 || listed[1].Order != 3 {
		t.Errorf("positions after unassign = %d, %d, want 1, 3", listed[0].Order, listed[1].Order)
	}

	// New assignments continue after the surviving maximum
	d := ctx.createResource(t, "Gap D")
	batch, err = ctx.assignmentService.Assign(ctx.teacher, enrollment.ID, []uint{d.ID})
	if err != nil {
		t.Fatalf("assign after unassign failed: %v", err)
	}
	if batch[0].Order != 4 {
		t.Errorf("position after gap = %d, want 4", batch[0].Order)
	}
}
