package database

import (
	"fmt"
	"log"
	"os"

	"github.com/langroom/api/model"
	"github.com/langroom/api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedTeacher(); err != nil {
		return fmt.Errorf("failed to seed teacher: %w", err)
	}

	if err := s.SeedDemoStudents(); err != nil {
		return fmt.Errorf("failed to seed demo students: %w", err)
	}

	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	if err := s.SeedResources(); err != nil {
		return fmt.Errorf("failed to seed resources: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedTeacher creates the default teacher account
func (s *Seeder) SeedTeacher() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleTeacher).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Teacher account already exists, skipping...")
		return nil
	}

	teacherEmail := os.Getenv("TEACHER_EMAIL")
	teacherPassword := os.Getenv("TEACHER_PASSWORD")

	if teacherEmail == "" || teacherPassword == "" {
		log.Println("⚠️  TEACHER_EMAIL and TEACHER_PASSWORD environment variables not set, skipping teacher creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(teacherPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	teacher := &model.User{
		Email:        teacherEmail,
		PasswordHash: passwordHash,
		Name:         "Head Teacher",
		Role:         model.RoleTeacher,
		Avatar:       "🦉",
	}

	if err := s.db.Create(teacher).Error; err != nil {
		return err
	}

	log.Printf("✅ Created teacher account: %s", teacherEmail)
	return nil
}

// SeedDemoStudents creates a couple of demo students in development
func (s *Seeder) SeedDemoStudents() error {
	if os.Getenv("GO_ENV") == "production" {
		return nil
	}

	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleStudent).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("⏭️  Students already exist, skipping...")
		return nil
	}

	passwordHash, err := auth.HashPassword("student-demo-1")
	if err != nil {
		return err
	}

	students := []model.User{
		{Email: "maria@example.com", PasswordHash: passwordHash, Name: "María García", Role: model.RoleStudent, Avatar: "🐱"},
		{Email: "kenji@example.com", PasswordHash: passwordHash, Name: "Kenji Tanaka", Role: model.RoleStudent, Avatar: "🐸"},
	}

	if err := s.db.Create(&students).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d demo students", len(students))
	return nil
}

// SeedCourses creates the default course catalogue for the first teacher
func (s *Seeder) SeedCourses() error {
	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("⏭️  Courses already exist, skipping...")
		return nil
	}

	var teacher model.User
	if err := s.db.Where("role = ?", model.RoleTeacher).First(&teacher).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Println("⚠️  No teacher account, skipping course seeding")
			return nil
		}
		return err
	}

	courses := []model.Course{
		{Name: "TOEIC-30h", Duration: 30, CreatorID: teacher.ID},
		{Name: "General English B1", Duration: 60, CreatorID: teacher.ID},
		{Name: "Conversation Club", Duration: 20, CreatorID: teacher.ID},
	}

	if err := s.db.Create(&courses).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d courses", len(courses))
	return nil
}

// SeedResources creates a handful of starter worksheets
func (s *Seeder) SeedResources() error {
	var count int64
	if err := s.db.Model(&model.Resource{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("⏭️  Resources already exist, skipping...")
		return nil
	}

	var teacher model.User
	if err := s.db.Where("role = ?", model.RoleTeacher).First(&teacher).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Println("⚠️  No teacher account, skipping resource seeding")
			return nil
		}
		return err
	}

	resources := []model.Resource{
		{
			Title:          "Present Simple vs Present Continuous",
			Description:    "Gap-fill worksheet with answer key",
			Type:           model.ResourceTypeWorksheet,
			Content:        "<h1>Present Simple vs Present Continuous</h1><p>Complete the sentences...</p>",
			Level:          "a2",
			Skill:          "grammar",
			EstimatedHours: 1,
			CreatorID:      teacher.ID,
		},
		{
			Title:          "TOEIC Listening Part 1 Drill",
			Description:    "Photo description practice set",
			Type:           model.ResourceTypeWorksheet,
			Content:        "<h1>Listening Part 1</h1><p>Look at the picture and choose the best description.</p>",
			Level:          "b1",
			Skill:          "listening",
			EstimatedHours: 2,
			CreatorID:      teacher.ID,
		},
	}

	if err := s.db.Create(&resources).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d resources", len(resources))
	return nil
}
