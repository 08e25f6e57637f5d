package tests

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/langroom/api/model"
	"github.com/langroom/api/services"
	"github.com/langroom/api/utils/auth"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestContext holds all resources needed for the integration tests
type TestContext struct {
	db *gorm.DB

	enrollmentService *services.EnrollmentService
	assignmentService *services.AssignmentService
	progressService   *services.ProgressService
	vocabularyService *services.VocabularyService
	userService       *services.UserService
	resourceService   *services.ResourceService

	teacher *model.User

	startTime time.Time
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setupTestEnvironment connects to the test database and builds the services.
// Requires DB_HOST, DB_USER_NAME, DB_PASSWORD, DB_NAME and DB_PORT.
func setupTestEnvironment(t *testing.T) *TestContext {
	t.Helper()

	ctx := &TestContext{startTime: time.Now()}

	requiredEnvVars := []string{
		"DB_HOST",
		"DB_USER_NAME",
		"DB_PASSWORD",
		"DB_NAME",
		"DB_PORT",
	}

	missingVars := []string{}
	for _, v := range requiredEnvVars {
		if os.Getenv(v) == "" {
			missingVars = append(missingVars, v)
		}
	}
	if len(missingVars) > 0 {
		t.Fatalf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER_NAME"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		getEnvOrDefault("DB_SSL_MODE", "disable"),
	)

	// TranslateError matches the production connection so unique-constraint
	// violations surface as gorm.ErrDuplicatedKey.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	ctx.db = db
	log.Println("✓ Database connection established")

	if err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Enrollment{},
		&model.CourseNote{},
		&model.Resource{},
		&model.Assignment{},
		&model.Progress{},
		&model.VocabularyProgress{},
		&model.StudentDocument{},
		&model.PasswordResetToken{},
		&model.JWTTokenBlacklist{},
		&model.CronJobLog{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	ctx.enrollmentService = services.NewEnrollmentService(db)
	ctx.assignmentService = services.NewAssignmentService(db)
	ctx.progressService = services.NewProgressService(db)
	ctx.vocabularyService = services.NewVocabularyService(db)
	ctx.userService = services.NewUserService(db, nil)
	ctx.resourceService = services.NewResourceService(db, nil)
	log.Println("✓ Services initialized")

	ctx.teacher = ctx.createUser(t, model.RoleTeacher, "Integration Teacher")

	log.Printf("✓ Test environment setup complete (%.2fs)", time.Since(ctx.startTime).Seconds())
	return ctx
}

// createUser inserts a user with a unique email for this run
func (ctx *TestContext) createUser(t *testing.T, role, name string) *model.User {
	t.Helper()

	hash, err := auth.HashPassword("integration-test-pw1")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &model.User{
		Email:        fmt.Sprintf("it_%s_%d@test.local", role, time.Now().UnixNano()),
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	}
	if err := ctx.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create %s: %v", role, err)
	}
	return user
}

func (ctx *TestContext) createStudent(t *testing.T, name string) *model.User {
	return ctx.createUser(t, model.RoleStudent, name)
}

func (ctx *TestContext) createCourse(t *testing.T, name string) *model.Course {
	t.Helper()

	course := &model.Course{
		Name:      fmt.Sprintf("%s %d", name, time.Now().UnixNano()),
		Duration:  30,
		CreatorID: ctx.teacher.ID,
	}
	if err := ctx.db.Create(course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	return course
}

func (ctx *TestContext) createResource(t *testing.T, title string) *model.Resource {
	t.Helper()

	resource, err := ctx.resourceService.Create(ctx.teacher, services.ResourceInput{
		Title:   fmt.Sprintf("%s %d", title, time.Now().UnixNano()),
		Type:    model.ResourceTypeWorksheet,
		Level:   "b1",
		Skill:   "reading",
		Content: "<p>Practice material</p>",
	})
	if err != nil {
		t.Fatalf("failed to create resource: %v", err)
	}
	return resource
}

// cleanupStudent removes a test student and all rows hanging off them
func (ctx *TestContext) cleanupStudent(t *testing.T, studentID uint) {
	t.Helper()
	if err := ctx.userService.DeleteStudent(context.Background(), ctx.teacher, studentID); err != nil {
		t.Logf("cleanup of student %d failed: %v", studentID, err)
	}
}
