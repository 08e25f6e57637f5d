package tests

import (
	"errors"
	"os"
	"testing"

	"github.com/langroom/api/model"
	"github.com/langroom/api/services"
)

func TestEnrollmentUniqueness(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	ctx := setupTestEnvironment(t)
	student := ctx.createStudent(t, "Enroll Once")
	defer ctx.cleanupStudent(t, student.ID)
	course := ctx.createCourse(t, "Uniqueness Course")

	enrollment, err := ctx.enrollmentService.Enroll(ctx.teacher, student.ID, course.ID)
	if err != nil {
		t.Fatalf("first enroll failed: %v", err)
	}
	if enrollment.StudentID != student.ID || enrollment.CourseID != course.ID {
		t.Errorf("enrollment = %+v", enrollment)
	}

	_, err = ctx.enrollmentService.Enroll(ctx.teacher, student.ID, course.ID)
	if !errors.Is(err, services.ErrConflict) {
		t.Errorf("duplicate enroll error = %v, want ErrConflict", err)
	}

	var count int64
	ctx.db.Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ?", student.ID, course.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("enrollment rows = %d, want 1", count)
	}
}

func TestEnrollmentAccessControl(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	ctx := setupTestEnvironment(t)
	student := ctx.createStudent(t, "Enrolled")
	other := ctx.createStudent(t, "Outsider")
	defer ctx.cleanupStudent(t, student.ID)
	defer ctx.cleanupStudent(t, other.ID)
	course := ctx.createCourse(t, "Access Course")

	enrollment, err := ctx.enrollmentService.Enroll(ctx.teacher, student.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}

	if _, err := ctx.enrollmentService.Get(student, enrollment.ID); err != nil {
		t.Errorf("enrolled student denied: %v", err)
	}
	if _, err := ctx.enrollmentService.Get(other, enrollment.ID); !errors.Is(err, services.ErrForbidden) {
		t.Errorf("other student error = %v, want ErrForbidden", err)
	}

	if _, err := ctx.enrollmentService.Enroll(student, other.ID, course.ID); !errors.Is(err, services.ErrForbidden) {
		t.Errorf("student enrolling error = %v, want ErrForbidden", err)
	}
}

func TestUnenrollRemovesDependents(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	ctx := setupTestEnvironment(t)
	student := ctx.createStudent(t, "Unenroll Me")
	defer ctx.cleanupStudent(t, student.ID)
	course := ctx.createCourse(t, "Unenroll Course")
	resource := ctx.createResource(t, "Unenroll Worksheet")

	enrollment, err := ctx.enrollmentService.Enroll(ctx.teacher, student.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}

	assignments, err := ctx.assignmentService.Assign(ctx.teacher, enrollment.ID, []uint{resource.ID})
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, err := ctx.progressService.Record(student, assignments[0].ID, model.StatusInProgress, ""); err != nil {
		t.Fatalf("record progress failed: %v", err)
	}
	if _, err := ctx.enrollmentService.UpsertNote(ctx.teacher, enrollment.ID, "<p>note</p>"); err != nil {
		t.Fatalf("upsert note failed: %v", err)
	}

	if err := ctx.enrollmentService.Unenroll(ctx.teacher, enrollment.ID); err != nil {
		t.Fatalf("unenroll failed: %v", err)
	}

	var enrollments, assignmentRows, progressRows, noteRows int64
	ctx.db.Model(&model.Enrollment{}).Where("id = ?", enrollment.ID).Count(&enrollments)
	ctx.db.Model(&model.Assignment{}).Where("enrollment_id = ?", enrollment.ID).Count(&assignmentRows)
	ctx.db.Model(&model.Progress{}).Where("assignment_id = ?", assignments[0].ID).Count(&progressRows)
	ctx.db.Model(&model.CourseNote{}).Where("enrollment_id = ?", enrollment.ID).Count(&noteRows)

	if enrollments != 0 {
		t.Errorf("enrollment rows remaining: %d", enrollments)
	}
	if assignmentRows != 0 {
		t.Errorf("assignment rows remaining: %d", assignmentRows)
	}
	if progressRows != 0 {
		t.Errorf("progress rows remaining: %d", progressRows)
	}
	if noteRows != 0 {
		t.Errorf("course note rows remaining: %d", noteRows)
	}
}
