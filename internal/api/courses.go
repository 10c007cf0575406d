package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"registryctl/internal/model"
	"registryctl/internal/paginate"
)

// CourseFilter narrows course list queries. Zero values are omitted.
type CourseFilter struct {
	Name       string
	Department string
	Semester   string
	Status     string
	TeacherID  int64
}

func (f CourseFilter) params() map[string]string {
	p := map[string]string{
		"name":       f.Name,
		"department": f.Department,
		"semester":   f.Semester,
		"status":     f.Status,
	}
	if f.TeacherID != 0 {
		p["teacherId"] = strconv.FormatInt(f.TeacherID, 10)
	}
	return p
}

// ListCourses fetches one page of course offerings under the given filter.
func (c *Client) ListCourses(ctx context.Context, f CourseFilter, cur *paginate.Cursor) (Page[model.Course], error) {
	params := f.params()
	if cur != nil {
		mergeParams(params, cur.Params())
	}
	return getPage[model.Course](ctx, c, "/courses"+buildQuery(params))
}

// GetCourse fetches one course by id.
func (c *Client) GetCourse(ctx context.Context, id int64) (model.Course, error) {
	return getJSON[model.Course](ctx, c, fmt.Sprintf("/courses/%d", id))
}

// CreateCourse creates a course from a validated form.
func (c *Client) CreateCourse(ctx context.Context, form model.CourseForm) (model.Course, error) {
	if err := form.Validate(); err != nil {
		return model.Course{}, err
	}
	return postJSON[model.Course](ctx, c, "/courses", form)
}

// UpdateCourse replaces a course's fields from a validated form.
func (c *Client) UpdateCourse(ctx context.Context, id int64, form model.CourseForm) (model.Course, error) {
	if err := form.Validate(); err != nil {
		return model.Course{}, err
	}
	return putJSON[model.Course](ctx, c, fmt.Sprintf("/courses/%d", id), form)
}

// DeleteCourse removes a course offering.
func (c *Client) DeleteCourse(ctx context.Context, id int64) error {
	_, err := c.Call(ctx, http.MethodDelete, fmt.Sprintf("/courses/%d", id), nil)
	return err
}

// CourseEnrollments fetches one page of a course's roster.
func (c *Client) CourseEnrollments(ctx context.Context, id int64, cur *paginate.Cursor) (Page[model.Enrollment], error) {
	params := map[string]string{}
	if cur != nil {
		mergeParams(params, cur.Params())
	}
	return getPage[model.Enrollment](ctx, c, fmt.Sprintf("/courses/%d/enrollments%s", id, buildQuery(params)))
}

// CourseAbsences fetches one page of a course's absence records.
func (c *Client) CourseAbsences(ctx context.Context, id int64, cur *paginate.Cursor) (Page[model.Absence], error) {
	params := map[string]string{}
	if cur != nil {
		mergeParams(params, cur.Params())
	}
	return getPage[model.Absence](ctx, c, fmt.Sprintf("/courses/%d/absences%s", id, buildQuery(params)))
}

// UpdateGrade sets or clears a student's final grade in a course. An empty
// grade clears it.
func (c *Client) UpdateGrade(ctx context.Context, courseID, studentID int64, finalGrade string) error {
	body := map[string]any{"finalGrade": nil}
	if finalGrade != "" {
		body["finalGrade"] = finalGrade
	}
	_, err := c.Call(ctx, http.MethodPut,
		fmt.Sprintf("/courses/%d/students/%d/grade", courseID, studentID), body)
	return err
}

// AddAbsence records an absence for (student, course, date).
func (c *Client) AddAbsence(ctx context.Context, courseID, studentID int64, date string) error {
	body := map[string]any{"studentId": studentID, "date": date}
	_, err := c.Call(ctx, http.MethodPost, fmt.Sprintf("/courses/%d/absences", courseID), body)
	return err
}

// RemoveAbsence deletes the absence identified by (student, course, date).
func (c *Client) RemoveAbsence(ctx context.Context, courseID, studentID int64, date string) error {
	body := map[string]any{"studentId": studentID, "date": date}
	_, err := c.Call(ctx, http.MethodDelete, fmt.Sprintf("/courses/%d/absences", courseID), body)
	return err
}
