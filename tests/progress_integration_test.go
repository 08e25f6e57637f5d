package tests

import (
	"errors"
	"os"
	"testing"

	"github.com/langroom/api/model"
	"github.com/langroom/api/services"
)

func TestProgressUpsert(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	ctx := setupTestEnvironment(t)
	student := ctx.createStudent(t, "Progress Student")
	defer ctx.cleanupStudent(t, student.ID)
	course := ctx.createCourse(t, "Progress Course")

	enrollment, err := ctx.enrollmentService.Enroll(ctx.teacher, student.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	resource := ctx.createResource(t, "Progress Worksheet")
	batch, err := ctx.assignmentService.Assign(ctx.teacher, enrollment.ID, []uint{resource.ID})
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	assignmentID := batch[0].ID

	first, err := ctx.progressService.Record(student, assignmentID, model.StatusInProgress, "halfway")
	if err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	if first.Status != model.StatusInProgress || first.CompletedAt != nil {
		t.Errorf("first record = %+v", first)
	}

	second, err := ctx.progressService.Record(student, assignmentID, model.StatusCompleted, "done")
	if err != nil {
		t.Fatalf("second record failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert created a new row: %d != %d", second.ID, first.ID)
	}
	if second.Status != model.StatusCompleted || second.CompletedAt == nil {
		t.Errorf("completed record = %+v", second)
	}

	// Regressing the status clears the completion timestamp
	third, err := ctx.progressService.Record(student, assignmentID, model.StatusInProgress, "reopened")
	if err != nil {
		t.Fatalf("third record failed: %v", err)
	}
	if third.ID != first.ID {
		t.Errorf("upsert created a new row: %d != %d", third.ID, first.ID)
	}
	if third.CompletedAt != nil {
		t.Errorf("CompletedAt survived regression: %v", third.CompletedAt)
	}

	var count int64
	ctx.db.Model(&model.Progress{}).
		Where("assignment_id = ? AND student_id = ?", assignmentID, student.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("progress rows = %d, want 1", count)
	}
}

func TestProgressValidation(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	ctx := setupTestEnvironment(t)
	student := ctx.createStudent(t, "Validation Student")
	intruder := ctx.createStudent(t, "Intruder")
	defer ctx.cleanupStudent(t, student.ID)
	defer ctx.cleanupStudent(t, intruder.ID)
	course := ctx.createCourse(t, "Validation Course")

	enrollment, err := ctx.enrollmentService.Enroll(ctx.teacher, student.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	resource := ctx.createResource(t, "Validation Worksheet")
	batch, err := ctx.assignmentService.Assign(ctx.teacher, enrollment.ID, []uint{resource.ID})
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	if _, err := ctx.progressService.Record(student, batch[0].ID, "FINISHED", ""); !errors.Is(err, services.ErrInvalid) {
		t.Errorf("bad status error = %v, want ErrInvalid", err)
	}
	if _, err := ctx.progressService.Record(intruder, batch[0].ID, model.StatusCompleted, ""); !errors.Is(err, services.ErrForbidden) {
		t.Errorf("other student error = %v, want ErrForbidden", err)
	}
	if _, err := ctx.progressService.Record(student, 999999999, model.StatusCompleted, ""); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("unknown assignment error = %v, want ErrNotFound", err)
	}
}

func TestMarkViewedDoesNotOverwrite(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	ctx := setupTestEnvironment(t)
	student := ctx.createStudent(t, "Viewer")
	defer ctx.cleanupStudent(t, student.ID)
	course := ctx.createCourse(t, "Viewed Course")

	enrollment, err := ctx.enrollmentService.Enroll(ctx.teacher, student.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	resource := ctx.createResource(t, "Viewed Worksheet")
	batch, err := ctx.assignmentService.Assign(ctx.teacher, enrollment.ID, []uint{resource.ID})
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	assignmentID := batch[0].ID

	// First view creates a NOT_STARTED row
	viewed, err := ctx.progressService.MarkViewed(student, assignmentID)
	if err != nil {
		t.Fatalf("mark viewed failed: %v", err)
	}
	if viewed.Status != model.StatusNotStarted {
		t.Errorf("viewed status = %q, want NOT_STARTED", viewed.Status)
	}

	// Viewing again after real progress must not reset the status
	if _, err := ctx.progressService.Record(student, assignmentID, model.StatusCompleted, ""); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	viewed, err = ctx.progressService.MarkViewed(student, assignmentID)
	if err != nil {
		t.Fatalf("second mark viewed failed: %v", err)
	}
	if viewed.Status != model.StatusCompleted {
		t.Errorf("status after re-view = %q, want COMPLETED", viewed.Status)
	}
	if viewed.CompletedAt == nil {
		t.Error("CompletedAt lost after re-view")
	}
}
