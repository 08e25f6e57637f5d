package tests

import (
	"errors"
	"os"
	"testing"

	"github.com/langroom/api/model"
	"github.com/langroom/api/services"
)

func TestVocabularyChallengeProgression(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	ctx := setupTestEnvironment(t)
	student := ctx.createStudent(t, "Vocab Student")
	defer ctx.cleanupStudent(t, student.ID)

	row, err := ctx.vocabularyService.RecordChallenge(student, "b1", "Food and Drink",
		services.ChallengeResult{Bronze: true})
	if err != nil {
		t.Fatalf("bronze failed: %v", err)
	}
	if !row.Bronze || row.Silver || row.Gold || row.CompletedAt != nil {
		t.Errorf("after bronze = %+v", row)
	}

	row, err = ctx.vocabularyService.RecordChallenge(student, "b1", "Food and Drink",
		services.ChallengeResult{Silver: true})
	if err != nil {
		t.Fatalf("silver failed: %v", err)
	}
	if !row.Bronze || !row.Silver || row.Gold {
		t.Errorf("after silver = %+v", row)
	}
	if row.CompletedAt != nil {
		t.Error("CompletedAt set before gold")
	}

	row, err = ctx.vocabularyService.RecordChallenge(student, "b1", "Food and Drink",
		services.ChallengeResult{Gold: true})
	if err != nil {
		t.Fatalf("gold failed: %v", err)
	}
	if !row.Bronze || !row.Silver || !row.Gold {
		t.Errorf("after gold = %+v", row)
	}
	if row.CompletedAt == nil {
		t.Error("CompletedAt not set with all three medals")
	}
	firstCompleted := *row.CompletedAt

	// Replaying a passed challenge never unsets medals or moves CompletedAt
	row, err = ctx.vocabularyService.RecordChallenge(student, "b1", "Food and Drink",
		services.ChallengeResult{Bronze: true})
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !row.Bronze || !row.Silver || !row.Gold {
		t.Errorf("medals lost on replay: %+v", row)
	}
	if row.CompletedAt == nil || !row.CompletedAt.Equal(firstCompleted) {
		t.Errorf("CompletedAt moved on replay: %v != %v", row.CompletedAt, firstCompleted)
	}

	var count int64
	ctx.db.Model(&model.VocabularyProgress{}).Where("student_id = ?", student.ID).Count(&count)
	if count != 1 {
		t.Errorf("vocabulary rows = %d, want 1", count)
	}
}

func TestVocabularyMonotonicOrder(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	ctx := setupTestEnvironment(t)
	student := ctx.createStudent(t, "Skipper")
	defer ctx.cleanupStudent(t, student.ID)

	_, err := ctx.vocabularyService.RecordChallenge(student, "a2", "Travel",
		services.ChallengeResult{Silver: true})
	if !errors.Is(err, services.ErrInvalid) {
		t.Errorf("silver without bronze error = %v, want ErrInvalid", err)
	}

	if _, err := ctx.vocabularyService.RecordChallenge(student, "a2", "Travel",
		services.ChallengeResult{Bronze: true}); err != nil {
		t.Fatalf("bronze failed: %v", err)
	}

	_, err = ctx.vocabularyService.RecordChallenge(student, "a2", "Travel",
		services.ChallengeResult{Gold: true})
	if !errors.Is(err, services.ErrInvalid) {
		t.Errorf("gold without silver error = %v, want ErrInvalid", err)
	}

	// A single call claiming all three at once is allowed
	row, err := ctx.vocabularyService.RecordChallenge(student, "a2", "Airport",
		services.ChallengeResult{Bronze: true, Silver: true, Gold: true})
	if err != nil {
		t.Fatalf("all-at-once failed: %v", err)
	}
	if row.CompletedAt == nil {
		t.Error("CompletedAt not set for all-at-once completion")
	}
}

func TestVocabularyNormalizationCollapsesRows(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	ctx := setupTestEnvironment(t)
	student := ctx.createStudent(t, "Normalizer")
	defer ctx.cleanupStudent(t, student.ID)

	variants := []struct {
		level string
		topic string
	}{
		{"B2", "At the Airport"},
		{" b2 ", "At  the   Airport"},
		{"b2", "  at the airport  "},
		{"b2", "AT THE AIRPORT"},
	}
	for _, v := range variants {
		if _, err := ctx.vocabularyService.RecordChallenge(student, v.level, v.topic,
			services.ChallengeResult{Bronze: true}); err != nil {
			t.Fatalf("record (%q, %q) failed: %v", v.level, v.topic, err)
		}
	}

	rows, err := ctx.vocabularyService.List(student, 0, "", "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("vocabulary rows = %d, want 1", len(rows))
	}
	if rows[0].Level != "b2" || rows[0].Topic != "at the airport" {
		t.Errorf("stored row = (%q, %q)", rows[0].Level, rows[0].Topic)
	}

	// A case-variant read resolves to the same row
	rows, err = ctx.vocabularyService.List(student, 0, "B2", "At The Airport")
	if err != nil {
		t.Fatalf("case-variant list failed: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("case-variant read found %d rows, want 1", len(rows))
	}
}

func TestVocabularyVisibility(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	ctx := setupTestEnvironment(t)
	student := ctx.createStudent(t, "Visible")
	other := ctx.createStudent(t, "Peeker")
	defer ctx.cleanupStudent(t, student.ID)
	defer ctx.cleanupStudent(t, other.ID)

	if _, err := ctx.vocabularyService.RecordChallenge(student, "c1", "Idioms",
		services.ChallengeResult{Bronze: true}); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	if _, err := ctx.vocabularyService.List(ctx.teacher, student.ID, "", ""); err != nil {
		t.Errorf("teacher denied: %v", err)
	}
	if _, err := ctx.vocabularyService.List(other, student.ID, "", ""); !errors.Is(err, services.ErrForbidden) {
		t.Errorf("other student error = %v, want ErrForbidden", err)
	}
	if _, err := ctx.vocabularyService.RecordChallenge(ctx.teacher, "c1", "Idioms",
		services.ChallengeResult{Bronze: true}); !errors.Is(err, services.ErrForbidden) {
		t.Errorf("teacher recording error = %v, want ErrForbidden", err)
	}
}
