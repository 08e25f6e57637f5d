// Package policy centralizes the authorization decisions for every
// operation, so handlers never branch on roles or ownership themselves.
// Each function takes the request principal and the already-loaded rows
// it needs, and returns a Decision.
package policy

import (
	"github.com/langroom/api/model"
)

// Decision is a tagged allow/deny result
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// CanManageCourse allows a teacher to update or delete a course it created
func CanManageCourse(principal *model.User, course *model.Course) Decision {
	if principal == nil {
		return deny("not authenticated")
	}
	if !principal.IsTeacher() {
		return deny("teacher role required")
	}
	if course.CreatorID != principal.ID {
		return deny("course belongs to another teacher")
	}
	return allow()
}

// CanEnroll allows a teacher owning the course to enroll a student into it
func CanEnroll(principal *model.User, course *model.Course, student *model.User) Decision {
	if d := CanManageCourse(principal, course); !d.Allowed {
		return d
	}
	if !student.IsStudent() {
		return deny("target user is not a student")
	}
	return allow()
}

// CanAssign allows the teacher owning the enrollment's course to attach resources
func CanAssign(principal *model.User, enrollment *model.Enrollment) Decision {
	if principal == nil {
		return deny("not authenticated")
	}
	if !principal.IsTeacher() {
		return deny("teacher role required")
	}
	if enrollment.Course.CreatorID != principal.ID {
		return deny("enrollment belongs to another teacher's course")
	}
	return allow()
}

// CanRecordProgress allows only the student owning the assignment's
// enrollment to write progress for it
func CanRecordProgress(principal *model.User, assignment *model.Assignment) Decision {
	if principal == nil {
		return deny("not authenticated")
	}
	if assignment.Enrollment.StudentID != principal.ID {
		return deny("assignment belongs to another student")
	}
	return allow()
}

// CanViewEnrollment allows the enrolled student or the owning teacher to
// read an enrollment's assignments, progress, and notes
func CanViewEnrollment(principal *model.User, enrollment *model.Enrollment) Decision {
	if principal == nil {
		return deny("not authenticated")
	}
	if enrollment.StudentID == principal.ID {
		return allow()
	}
	if principal.IsTeacher() && enrollment.Course.CreatorID == principal.ID {
		return allow()
	}
	return deny("no access to this enrollment")
}

// CanViewVocabulary allows a teacher to read any student's vocabulary
// progress, and a student only their own
func CanViewVocabulary(principal *model.User, studentID uint) Decision {
	if principal == nil {
		return deny("not authenticated")
	}
	if principal.IsTeacher() {
		return allow()
	}
	if principal.ID == studentID {
		return allow()
	}
	return deny("students may only view their own vocabulary progress")
}

// CanManageStudent allows teachers to create, inspect, and delete student accounts
func CanManageStudent(principal *model.User) Decision {
	if principal == nil {
		return deny("not authenticated")
	}
	if !principal.IsTeacher() {
		return deny("teacher role required")
	}
	return allow()
}

// CanTouchResource allows only the creating teacher to update or delete a resource
func CanTouchResource(principal *model.User, resource *model.Resource) Decision {
	if principal == nil {
		return deny("not authenticated")
	}
	if !principal.IsTeacher() {
		return deny("teacher role required")
	}
	if resource.CreatorID != principal.ID {
		return deny("resource belongs to another teacher")
	}
	return allow()
}
