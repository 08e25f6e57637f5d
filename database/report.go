package database

// OverviewStats aggregates school-wide numbers for the teacher dashboard
type OverviewStats struct {
	TotalStudents        int64   `json:"total_students"`
	TotalCourses         int64   `json:"total_courses"`
	TotalResources       int64   `json:"total_resources"`
	ActiveEnrollments    int64   `json:"active_enrollments"`
	CompletedAssignments int64   `json:"completed_assignments"`
	TotalAssignments     int64   `json:"total_assignments"`
	CompletionRate       float64 `json:"completion_rate"`
	GoldTopics           int64   `json:"gold_topics"`
}

// CourseStats aggregates per-course numbers
type CourseStats struct {
	CourseID             uint    `json:"course_id"`
	CourseName           string  `json:"course_name"`
	Students             int64   `json:"students"`
	TotalAssignments     int64   `json:"total_assignments"`
	CompletedAssignments int64   `json:"completed_assignments"`
	CompletionRate       float64 `json:"completion_rate"`
}

// GetOverviewStats runs the dashboard aggregates as one round trip
func (s *PostgreSQLStore) GetOverviewStats() (*OverviewStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'student' AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM courses WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM resources WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM enrollments),
			(SELECT COUNT(*) FROM progress WHERE status = 'COMPLETED'),
			(SELECT COUNT(*) FROM assignments),
			(SELECT COUNT(*) FROM vocabulary_progress WHERE gold = TRUE);
	`

	stats := &OverviewStats{}
	err := s.db.QueryRow(query).Scan(
		&stats.TotalStudents,
		&stats.TotalCourses,
		&stats.TotalResources,
		&stats.ActiveEnrollments,
		&stats.CompletedAssignments,
		&stats.TotalAssignments,
		&stats.GoldTopics,
	)
	if err != nil {
		return nil, err
	}

	if stats.TotalAssignments > 0 {
		stats.CompletionRate = float64(stats.CompletedAssignments) / float64(stats.TotalAssignments)
	}
	return stats, nil
}

// GetCourseStats aggregates enrollment and completion numbers for one course
func (s *PostgreSQLStore) GetCourseStats(courseID uint) (*CourseStats, error) {
	query := `
		SELECT
			c.id,
			c.name,
			COUNT(DISTINCT e.id),
			COUNT(DISTINCT a.id),
			COUNT(DISTINCT p.id) FILTER (WHERE p.status = 'COMPLETED')
		FROM courses c
		LEFT JOIN enrollments e ON e.course_id = c.id
		LEFT JOIN assignments a ON a.enrollment_id = e.id
		LEFT JOIN progress p ON p.assignment_id = a.id
		WHERE c.id = $1 AND c.deleted_at IS NULL
		GROUP BY c.id, c.name;
	`

	stats := &CourseStats{}
	err := s.db.QueryRow(query, courseID).Scan(
		&stats.CourseID,
		&stats.CourseName,
		&stats.Students,
		&stats.TotalAssignments,
		&stats.CompletedAssignments,
	)
	if err != nil {
		return nil, err
	}

	if stats.TotalAssignments > 0 {
		stats.CompletionRate = float64(stats.CompletedAssignments) / float64(stats.TotalAssignments)
	}
	return stats, nil
}
