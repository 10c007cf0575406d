package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"registryctl/internal/model"
	"registryctl/internal/paginate"
)

// StudentFilter narrows student list queries. Zero values are omitted.
type StudentFilter struct {
	Name           string
	Department     string
	EnrollmentYear int
	Status         string
}

func (f StudentFilter) params() map[string]string {
	p := map[string]string{
		"name":       f.Name,
		"department": f.Department,
		"status":     f.Status,
	}
	if f.EnrollmentYear != 0 {
		p["enrollmentYear"] = strconv.Itoa(f.EnrollmentYear)
	}
	return p
}

// ListStudents fetches one page of students under the given filter.
func (c *Client) ListStudents(ctx context.Context, f StudentFilter, cur *paginate.Cursor) (Page[model.Student], error) {
	params := f.params()
	if cur != nil {
		mergeParams(params, cur.Params())
	}
	return getPage[model.Student](ctx, c, "/students"+buildQuery(params))
}

// GetStudent fetches one student by id.
func (c *Client) GetStudent(ctx context.Context, id int64) (model.Student, error) {
	return getJSON[model.Student](ctx, c, fmt.Sprintf("/students/%d", id))
}

// CreateStudent creates a student from a validated form.
func (c *Client) CreateStudent(ctx context.Context, form model.StudentForm) (model.Student, error) {
	if err := form.Validate(); err != nil {
		return model.Student{}, err
	}
	return postJSON[model.Student](ctx, c, "/students", form)
}

// UpdateStudent replaces a student's fields from a validated form.
func (c *Client) UpdateStudent(ctx context.Context, id int64, form model.StudentForm) (model.Student, error) {
	if err := form.Validate(); err != nil {
		return model.Student{}, err
	}
	return putJSON[model.Student](ctx, c, fmt.Sprintf("/students/%d", id), form)
}

// DeleteStudent removes a student; the backend cascades enrollments and
// absences.
func (c *Client) DeleteStudent(ctx context.Context, id int64) error {
	_, err := c.Call(ctx, http.MethodDelete, fmt.Sprintf("/students/%d", id), nil)
	return err
}

// StudentEnrollments fetches one page of a student's enrollments.
func (c *Client) StudentEnrollments(ctx context.Context, id int64, cur *paginate.Cursor) (Page[model.Enrollment], error) {
	params := map[string]string{}
	if cur != nil {
		mergeParams(params, cur.Params())
	}
	return getPage[model.Enrollment](ctx, c, fmt.Sprintf("/students/%d/enrollments%s", id, buildQuery(params)))
}

// StudentAbsences fetches one page of a student's absences.
func (c *Client) StudentAbsences(ctx context.Context, id int64, cur *paginate.Cursor) (Page[model.Absence], error) {
	params := map[string]string{}
	if cur != nil {
		mergeParams(params, cur.Params())
	}
	return getPage[model.Absence](ctx, c, fmt.Sprintf("/students/%d/absences%s", id, buildQuery(params)))
}

func mergeParams(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}
