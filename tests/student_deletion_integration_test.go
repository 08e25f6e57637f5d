package tests

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/langroom/api/model"
	"github.com/langroom/api/services"
)

func TestDeleteStudentCascade(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	ctx := setupTestEnvironment(t)
	student := ctx.createStudent(t, "Doomed Student")
	course := ctx.createCourse(t, "Cascade Course")
	resource := ctx.createResource(t, "Cascade Worksheet")

	enrollment, err := ctx.enrollmentService.Enroll(ctx.teacher, student.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	batch, err := ctx.assignmentService.Assign(ctx.teacher, enrollment.ID, []uint{resource.ID})
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, err := ctx.progressService.Record(student, batch[0].ID, model.StatusCompleted, "done"); err != nil {
		t.Fatalf("record progress failed: %v", err)
	}
	if _, err := ctx.enrollmentService.UpsertNote(ctx.teacher, enrollment.ID, "<p>strong reader</p>"); err != nil {
		t.Fatalf("upsert note failed: %v", err)
	}
	if _, err := ctx.vocabularyService.RecordChallenge(student, "b1", "Weather",
		services.ChallengeResult{Bronze: true}); err != nil {
		t.Fatalf("record vocabulary failed: %v", err)
	}

	if err := ctx.userService.DeleteStudent(context.Background(), ctx.teacher, student.ID); err != nil {
		t.Fatalf("delete student failed: %v", err)
	}

	checks := []struct {
		name  string
		model interface{}
		query string
		args  []interface{}
	}{
		{"enrollments", &model.Enrollment{}, "student_id = ?", []interface{}{student.ID}},
		{"assignments", &model.Assignment{}, "enrollment_id = ?", []interface{}{enrollment.ID}},
		{"progress", &model.Progress{}, "student_id = ?", []interface{}{student.ID}},
		{"course_notes", &model.CourseNote{}, "enrollment_id = ?", []interface{}{enrollment.ID}},
		{"vocabulary_progress", &model.VocabularyProgress{}, "student_id = ?", []interface{}{student.ID}},
		{"student_documents", &model.StudentDocument{}, "student_id = ?", []interface{}{student.ID}},
		{"password_reset_tokens", &model.PasswordResetToken{}, "user_id = ?", []interface{}{student.ID}},
		{"jwt_token_blacklist", &model.JWTTokenBlacklist{}, "user_id = ?", []interface{}{student.ID}},
	}
	for _, check := range checks {
		var count int64
		ctx.db.Model(check.model).Where(check.query, check.args...).Count(&count)
		if count != 0 {
			t.Errorf("%s rows remaining after delete: %d", check.name, count)
		}
	}

	// The user row is gone for real, not soft-deleted
	var userCount int64
	ctx.db.Unscoped().Model(&model.User{}).Where("id = ?", student.ID).Count(&userCount)
	if userCount != 0 {
		t.Errorf("user rows remaining after delete: %d", userCount)
	}

	// The course and resource survive
	var courseCount, resourceCount int64
	ctx.db.Model(&model.Course{}).Where("id = ?", course.ID).Count(&courseCount)
	ctx.db.Model(&model.Resource{}).Where("id = ?", resource.ID).Count(&resourceCount)
	if courseCount != 1 {
		t.Errorf("course rows = %d, want 1", courseCount)
	}
	if resourceCount != 1 {
		t.Errorf("resource rows = %d, want 1", resourceCount)
	}
}

func TestDeleteStudentGuards(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	ctx := setupTestEnvironment(t)
	student := ctx.createStudent(t, "Guarded Student")
	defer ctx.cleanupStudent(t, student.ID)

	err := ctx.userService.DeleteStudent(context.Background(), student, student.ID)
	if !errors.Is(err, services.ErrForbidden) {
		t.Errorf("self-delete error = %v, want ErrForbidden", err)
	}

	err = ctx.userService.DeleteStudent(context.Background(), ctx.teacher, 999999999)
	if !errors.Is(err, services.ErrNotFound) {
		t.Errorf("unknown student error = %v, want ErrNotFound", err)
	}

	// Deleting a teacher through the student endpoint is refused
	err = ctx.userService.DeleteStudent(context.Background(), ctx.teacher, ctx.teacher.ID)
	if !errors.Is(err, services.ErrNotFound) {
		t.Errorf("teacher-as-student error = %v, want ErrNotFound", err)
	}
}
