package api

import (
	"context"
	"fmt"
	"net/http"

	"registryctl/internal/model"
	"registryctl/internal/paginate"
)

// TeacherFilter narrows teacher list queries. Zero values are omitted.
type TeacherFilter struct {
	Name       string
	Department string
}

func (f TeacherFilter) params() map[string]string {
	return map[string]string{
		"name":       f.Name,
		"department": f.Department,
	}
}

// ListTeachers fetches one page of teachers under the given filter.
func (c *Client) ListTeachers(ctx context.Context, f TeacherFilter, cur *paginate.Cursor) (Page[model.Teacher], error) {
	params := f.params()
	if cur != nil {
		mergeParams(params, cur.Params())
	}
	return getPage[model.Teacher](ctx, c, "/teachers"+buildQuery(params))
}

// GetTeacher fetches one teacher by id.
func (c *Client) GetTeacher(ctx context.Context, id int64) (model.Teacher, error) {
	return getJSON[model.Teacher](ctx, c, fmt.Sprintf("/teachers/%d", id))
}

// CreateTeacher creates a teacher from a validated form.
func (c *Client) CreateTeacher(ctx context.Context, form model.TeacherForm) (model.Teacher, error) {
	if err := form.Validate(); err != nil {
		return model.Teacher{}, err
	}
	return postJSON[model.Teacher](ctx, c, "/teachers", form)
}

// UpdateTeacher replaces a teacher's fields from a validated form.
func (c *Client) UpdateTeacher(ctx context.Context, id int64, form model.TeacherForm) (model.Teacher, error) {
	if err := form.Validate(); err != nil {
		return model.Teacher{}, err
	}
	return putJSON[model.Teacher](ctx, c, fmt.Sprintf("/teachers/%d", id), form)
}

// DeleteTeacher removes a teacher record.
func (c *Client) DeleteTeacher(ctx context.Context, id int64) error {
	_, err := c.Call(ctx, http.MethodDelete, fmt.Sprintf("/teachers/%d", id), nil)
	return err
}

// AssignUser attaches a login account to a teacher. Login access is managed
// independently of the teacher record lifecycle.
func (c *Client) AssignUser(ctx context.Context, teacherID, userID int64) error {
	body := map[string]int64{"userId": userID}
	_, err := c.Call(ctx, http.MethodPost, fmt.Sprintf("/teachers/%d/assign-user", teacherID), body)
	return err
}

// RevokeUser detaches a teacher's login account.
func (c *Client) RevokeUser(ctx context.Context, teacherID int64) error {
	_, err := c.Call(ctx, http.MethodDelete, fmt.Sprintf("/teachers/%d/revoke-user", teacherID), nil)
	return err
}
