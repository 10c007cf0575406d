package api

import (
	"context"
	"net/http"
)

type enrollmentKey struct {
	StudentID int64 `json:"studentId"`
	CourseID  int64 `json:"courseId"`
}

// Enroll adds a student to a course. The backend rejects a second enrollment
// for the same (student, course).
func (c *Client) Enroll(ctx context.Context, studentID, courseID int64) error {
	_, err := c.Call(ctx, http.MethodPost, "/enrollments", enrollmentKey{studentID, courseID})
	return err
}

// Unenroll removes a student from a course.
func (c *Client) Unenroll(ctx context.Context, studentID, courseID int64) error {
	_, err := c.Call(ctx, http.MethodDelete, "/enrollments", enrollmentKey{studentID, courseID})
	return err
}
