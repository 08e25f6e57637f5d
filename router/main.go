package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/langroom/api/database"
	"github.com/langroom/api/handlers"
	assignment_handlers "github.com/langroom/api/handlers/assignment"
	auth_handlers "github.com/langroom/api/handlers/auth"
	course_handlers "github.com/langroom/api/handlers/course"
	document_handlers "github.com/langroom/api/handlers/document"
	enrollment_handlers "github.com/langroom/api/handlers/enrollment"
	progress_handlers "github.com/langroom/api/handlers/progress"
	report_handlers "github.com/langroom/api/handlers/report"
	resource_handlers "github.com/langroom/api/handlers/resource"
	user_handlers "github.com/langroom/api/handlers/user"
	vocabulary_handlers "github.com/langroom/api/handlers/vocabulary"
	"github.com/langroom/api/services"
	"github.com/langroom/api/services/storage"
	"github.com/langroom/api/utils"
	"github.com/langroom/api/utils/auth"
	"github.com/langroom/api/utils/cache"
	"github.com/langroom/api/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	// Get JWT secret from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "langroom-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs brute force protection and the report cache
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Object storage is optional in development; file endpoints degrade
	spacesClient, err := storage.NewSpacesClientFromEnv()
	if err != nil {
		log.Printf("Warning: Spaces client unavailable: %v. File uploads will be disabled.", err)
		spacesClient = nil
	}

	// Auth middleware checks the blacklist against the database
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Services
	enrollmentService := services.NewEnrollmentService(db)
	assignmentService := services.NewAssignmentService(db)
	progressService := services.NewProgressService(db)
	vocabularyService := services.NewVocabularyService(db)
	userService := services.NewUserService(db, spacesClient)
	resourceService := services.NewResourceService(db, spacesClient)
	documentService := services.NewDocumentService(db, spacesClient)

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	userHandler := user_handlers.NewUserHandler(userService, progressService)
	courseHandler := course_handlers.NewCourseHandler(db)
	resourceHandler := resource_handlers.NewResourceHandler(resourceService)
	enrollmentHandler := enrollment_handlers.NewEnrollmentHandler(enrollmentService)
	assignmentHandler := assignment_handlers.NewAssignmentHandler(assignmentService)
	progressHandler := progress_handlers.NewProgressHandler(progressService)
	vocabularyHandler := vocabulary_handlers.NewVocabularyHandler(vocabularyService)
	reportHandler := report_handlers.NewReportHandler(store, redisCache)
	documentHandler := document_handlers.NewDocumentHandler(documentService)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Profile
	api.Get("/profile", authMiddleware.Required(), authHandler.GetProfile)
	api.Put("/profile", authMiddleware.Required(), authHandler.UpdateProfile)

	// Students (teacher only)
	students := api.Group("/students", authMiddleware.Required(), authMiddleware.RequireTeacher())
	students.Post("/", userHandler.CreateStudent)
	students.Get("/", userHandler.ListStudents)
	students.Get("/:id", userHandler.GetStudent)
	students.Get("/:id/progress", userHandler.GetStudentProgress)
	students.Delete("/:id", userHandler.DeleteStudent)
	students.Post("/:id/documents", documentHandler.Upload)
	students.Get("/:id/documents", documentHandler.List)

	// Documents (teacher only, delete by document id)
	api.Delete("/documents/:id", authMiddleware.Required(), authMiddleware.RequireTeacher(), documentHandler.Delete)

	// Courses
	courses := api.Group("/courses", authMiddleware.Required())
	courses.Post("/", authMiddleware.RequireTeacher(), courseHandler.Create)
	courses.Get("/", courseHandler.List)
	courses.Get("/:id", courseHandler.Get)
	courses.Put("/:id", authMiddleware.RequireTeacher(), courseHandler.Update)
	courses.Delete("/:id", authMiddleware.RequireTeacher(), courseHandler.Delete)

	// Resources
	resources := api.Group("/resources", authMiddleware.Required())
	resources.Post("/", authMiddleware.RequireTeacher(), resourceHandler.Create)
	resources.Get("/", resourceHandler.List)
	resources.Get("/:id", resourceHandler.Get)
	resources.Put("/:id", authMiddleware.RequireTeacher(), resourceHandler.Update)
	resources.Delete("/:id", authMiddleware.RequireTeacher(), resourceHandler.Delete)
	resources.Post("/:id/file", authMiddleware.RequireTeacher(), resourceHandler.AttachFile)
	resources.Get("/:id/download", resourceHandler.Download)

	// Enrollments
	enrollments := api.Group("/enrollments", authMiddleware.Required())
	enrollments.Post("/", authMiddleware.RequireTeacher(), enrollmentHandler.Enroll)
	enrollments.Get("/", enrollmentHandler.List)
	enrollments.Get("/:id", enrollmentHandler.Get)
	enrollments.Delete("/:id", authMiddleware.RequireTeacher(), enrollmentHandler.Unenroll)
	enrollments.Get("/:id/note", enrollmentHandler.GetNote)
	enrollments.Put("/:id/note", authMiddleware.RequireTeacher(), enrollmentHandler.PutNote)

	// Assignments
	assignments := api.Group("/assignments", authMiddleware.Required())
	assignments.Post("/", authMiddleware.RequireTeacher(), assignmentHandler.Assign)
	assignments.Get("/", assignmentHandler.List)
	assignments.Delete("/:id", authMiddleware.RequireTeacher(), assignmentHandler.Unassign)

	// Progress (students record their own)
	progress := api.Group("/progress", authMiddleware.Required())
	progress.Post("/:assignment_id", progressHandler.Record)
	progress.Post("/:assignment_id/viewed", progressHandler.MarkViewed)
	progress.Get("/", progressHandler.List)

	// Vocabulary challenge progress
	vocabulary := api.Group("/vocabulary-progress", authMiddleware.Required())
	vocabulary.Post("/", vocabularyHandler.Record)
	vocabulary.Get("/", vocabularyHandler.List)

	// Reports (teacher only)
	reports := api.Group("/reports", authMiddleware.Required(), authMiddleware.RequireTeacher())
	reports.Get("/overview", reportHandler.Overview)
	reports.Get("/courses/:id", reportHandler.Course)
}
