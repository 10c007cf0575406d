package registrytest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"registryctl/internal/model"
)

func (s *Server) listUsers(c *gin.Context) {
	page, limit := pageParams(c)
	email := strings.ToLower(c.Query("email"))
	role := c.Query("role")
	s.mu.Lock()
	var rows []model.User
	for _, u := range s.users {
		if email != "" && !strings.Contains(strings.ToLower(u.Email), email) {
			continue
		}
		if role != "" && u.EffectiveRole() != role {
			continue
		}
		rows = append(rows, u)
	}
	s.mu.Unlock()
	sortByID(rows, func(u model.User) int64 { return u.ID })
	uniformPage(c, rows, page, limit)
}

func (s *Server) getUser(c *gin.Context) {
	id := idParam(c, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			c.JSON(http.StatusOK, u)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
}

func (s *Server) userByEmail(c *gin.Context) {
	email := c.Param("email")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			c.JSON(http.StatusOK, u)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
}

func (s *Server) createUser(c *gin.Context) {
	var form model.UserForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	roleName := ""
	switch form.RoleID {
	case 1:
		roleName = model.RoleAdmin
	case 2:
		roleName = model.RoleTeacher
	case 3:
		roleName = model.RoleViewer
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "unknown role"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == form.Username || strings.EqualFold(u.Email, form.Email) {
			c.JSON(http.StatusConflict, gin.H{"message": "user already exists"})
			return
		}
	}
	user := model.User{
		ID: s.id(), Username: form.Username, Email: form.Email,
		RoleID: form.RoleID, RoleName: roleName,
	}
	s.users = append(s.users, user)
	s.passwords[form.Username] = form.Password
	s.appendLog("user.create", form.Username)
	c.JSON(http.StatusCreated, user)
}

func (s *Server) deleteUser(c *gin.Context) {
	id := idParam(c, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			delete(s.passwords, s.users[i].Username)
			s.users = append(s.users[:i], s.users[i+1:]...)
			for j := range s.teachers {
				if s.teachers[j].UserID != nil && *s.teachers[j].UserID == id {
					s.teachers[j].UserID = nil
				}
			}
			s.appendLog("user.delete", fmt.Sprintf("id=%d", id))
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
}

func (s *Server) changePassword(c *gin.Context) {
	var body struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	username := c.GetString("username")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.passwords[username] != body.OldPassword {
		c.JSON(http.StatusBadRequest, gin.H{"message": "current password is incorrect"})
		return
	}
	s.passwords[username] = body.NewPassword
	s.appendLog("user.password", username)
	c.Status(http.StatusNoContent)
}

func (s *Server) listStudents(c *gin.Context) {
	page, limit := pageParams(c)
	name := strings.ToLower(c.Query("name"))
	department := c.Query("department")
	status := c.Query("status")

	s.mu.Lock()
	var rows []model.Student
	for _, st := range s.students {
		if name != "" && !strings.Contains(strings.ToLower(st.FullName()), name) {
			continue
		}
		if department != "" && st.Department != department {
			continue
		}
		if status != "" && st.Status != status {
			continue
		}
		rows = append(rows, st)
	}
	s.mu.Unlock()

	sortByID(rows, func(st model.Student) int64 { return st.ID })
	// Students use the page-object shape; most other lists use the uniform
	// envelope, so both normalization paths stay covered.
	springPage(c, rows, page, limit)
}

func (s *Server) getStudent(c *gin.Context) {
	id := idParam(c, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.students {
		if st.ID == id {
			c.JSON(http.StatusOK, st)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "student not found"})
}

func (s *Server) createStudent(c *gin.Context) {
	var form model.StudentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := model.Student{
		ID:             s.id(),
		FirstName:      form.FirstName,
		LastName:       form.LastName,
		DateOfBirth:    form.DateOfBirth,
		Gender:         form.Gender,
		Phone:          form.Phone,
		Email:          form.Email,
		Address:        form.Address,
		Department:     form.Department,
		Program:        form.Program,
		EnrollmentYear: form.EnrollmentYear,
		Status:         form.Status,
	}
	st.StudentID = fmt.Sprintf("S%05d", st.ID)
	s.students = append(s.students, st)
	s.appendLog("student.create", st.FullName())
	c.JSON(http.StatusCreated, st)
}

func (s *Server) updateStudent(c *gin.Context) {
	id := idParam(c, "id")
	var form model.StudentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.students {
		if s.students[i].ID == id {
			st := &s.students[i]
			st.FirstName = form.FirstName
			st.LastName = form.LastName
			st.Department = form.Department
			st.EnrollmentYear = form.EnrollmentYear
			st.Status = form.Status
			st.Email = form.Email
			s.appendLog("student.update", st.FullName())
			c.JSON(http.StatusOK, *st)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "student not found"})
}

func (s *Server) deleteStudent(c *gin.Context) {
	id := idParam(c, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.students {
		if s.students[i].ID == id {
			s.students = append(s.students[:i], s.students[i+1:]...)
			// Cascade enrollments and absences like the real backend.
			s.enrollments = filterInPlace(s.enrollments, func(e model.Enrollment) bool { return e.StudentID != id })
			s.absences = filterInPlace(s.absences, func(a model.Absence) bool { return a.StudentID != id })
			s.appendLog("student.delete", fmt.Sprintf("id=%d", id))
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "student not found"})
}

func (s *Server) studentEnrollments(c *gin.Context) {
	id := idParam(c, "id")
	page, limit := pageParams(c)
	s.mu.Lock()
	var rows []model.Enrollment
	for _, e := range s.enrollments {
		if e.StudentID == id {
			rows = append(rows, s.decorateEnrollment(e))
		}
	}
	s.mu.Unlock()
	uniformPage(c, rows, page, limit)
}

func (s *Server) studentAbsences(c *gin.Context) {
	id := idParam(c, "id")
	page, limit := pageParams(c)
	s.mu.Lock()
	var rows []model.Absence
	for _, a := range s.absences {
		if a.StudentID == id {
			rows = append(rows, s.decorateAbsence(a))
		}
	}
	s.mu.Unlock()
	uniformPage(c, rows, page, limit)
}

func (s *Server) listTeachers(c *gin.Context) {
	page, limit := pageParams(c)
	name := strings.ToLower(c.Query("name"))
	department := c.Query("department")
	s.mu.Lock()
	var rows []model.Teacher
	for _, t := range s.teachers {
		if name != "" && !strings.Contains(strings.ToLower(t.FullName()), name) {
			continue
		}
		if department != "" && t.Department != department {
			continue
		}
		rows = append(rows, t)
	}
	s.mu.Unlock()
	sortByID(rows, func(t model.Teacher) int64 { return t.ID })
	uniformPage(c, rows, page, limit)
}

func (s *Server) createTeacher(c *gin.Context) {
	var form model.TeacherForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := model.Teacher{
		ID:         s.id(),
		FirstName:  form.FirstName,
		LastName:   form.LastName,
		Department: form.Department,
		Email:      form.Email,
		Phone:      form.Phone,
	}
	s.teachers = append(s.teachers, t)
	s.appendLog("teacher.create", t.FullName())
	c.JSON(http.StatusCreated, t)
}

func (s *Server) updateTeacher(c *gin.Context) {
	id := idParam(c, "id")
	var form model.TeacherForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.teachers {
		if s.teachers[i].ID == id {
			t := &s.teachers[i]
			t.FirstName = form.FirstName
			t.LastName = form.LastName
			t.Department = form.Department
			t.Email = form.Email
			t.Phone = form.Phone
			s.appendLog("teacher.update", t.FullName())
			c.JSON(http.StatusOK, *t)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "teacher not found"})
}

func (s *Server) deleteTeacher(c *gin.Context) {
	id := idParam(c, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.teachers {
		if s.teachers[i].ID == id {
			s.teachers = append(s.teachers[:i], s.teachers[i+1:]...)
			s.appendLog("teacher.delete", fmt.Sprintf("id=%d", id))
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "teacher not found"})
}

func (s *Server) assignUser(c *gin.Context) {
	id := idParam(c, "id")
	var body struct {
		UserID int64 `json:"userId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.teachers {
		if s.teachers[i].ID == id {
			uid := body.UserID
			s.teachers[i].UserID = &uid
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "teacher not found"})
}

func (s *Server) revokeUser(c *gin.Context) {
	id := idParam(c, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.teachers {
		if s.teachers[i].ID == id {
			s.teachers[i].UserID = nil
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "teacher not found"})
}

func (s *Server) listCourses(c *gin.Context) {
	page, limit := pageParams(c)
	name := strings.ToLower(c.Query("name"))
	semester := c.Query("semester")
	teacherID := c.Query("teacherId")
	status := c.Query("status")
	s.mu.Lock()
	var rows []model.Course
	for _, course := range s.courses {
		if name != "" && !strings.Contains(strings.ToLower(course.CourseName), name) &&
			!strings.Contains(strings.ToLower(course.CourseCode), name) {
			continue
		}
		if semester != "" && course.Semester != semester {
			continue
		}
		if status != "" && course.Status != status {
			continue
		}
		if teacherID != "" && fmt.Sprintf("%d", course.TeacherID) != teacherID {
			continue
		}
		rows = append(rows, s.decorateCourse(course))
	}
	s.mu.Unlock()
	sortByID(rows, func(course model.Course) int64 { return course.ID })
	uniformPage(c, rows, page, limit)
}

func (s *Server) getCourse(c *gin.Context) {
	id := idParam(c, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, course := range s.courses {
		if course.ID == id {
			c.JSON(http.StatusOK, s.decorateCourse(course))
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "course not found"})
}

func (s *Server) createCourse(c *gin.Context) {
	var form model.CourseForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	course := model.Course{
		ID:          s.id(),
		CourseCode:  form.CourseCode,
		CourseName:  form.CourseName,
		Section:     form.Section,
		Description: form.Description,
		Credit:      form.Credit,
		Department:  form.Department,
		Semester:    form.Semester,
		TeacherID:   form.TeacherID,
		Status:      form.Status,
	}
	s.courses = append(s.courses, course)
	s.appendLog("course.create", course.CourseCode)
	c.JSON(http.StatusCreated, course)
}

func (s *Server) updateCourse(c *gin.Context) {
	id := idParam(c, "id")
	var form model.CourseForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.courses {
		if s.courses[i].ID == id {
			course := &s.courses[i]
			course.CourseCode = form.CourseCode
			course.CourseName = form.CourseName
			course.Section = form.Section
			course.Description = form.Description
			course.Credit = form.Credit
			course.Department = form.Department
			course.Semester = form.Semester
			course.TeacherID = form.TeacherID
			course.Status = form.Status
			s.appendLog("course.update", course.CourseCode)
			c.JSON(http.StatusOK, s.decorateCourse(*course))
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "course not found"})
}

func (s *Server) deleteCourse(c *gin.Context) {
	id := idParam(c, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.courses {
		if s.courses[i].ID == id {
			s.courses = append(s.courses[:i], s.courses[i+1:]...)
			s.enrollments = filterInPlace(s.enrollments, func(e model.Enrollment) bool { return e.CourseID != id })
			s.absences = filterInPlace(s.absences, func(a model.Absence) bool { return a.CourseID != id })
			s.appendLog("course.delete", fmt.Sprintf("id=%d", id))
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "course not found"})
}

func (s *Server) courseEnrollments(c *gin.Context) {
	id := idParam(c, "id")
	page, limit := pageParams(c)
	s.mu.Lock()
	var rows []model.Enrollment
	for _, e := range s.enrollments {
		if e.CourseID == id {
			rows = append(rows, s.decorateEnrollment(e))
		}
	}
	s.mu.Unlock()
	uniformPage(c, rows, page, limit)
}

func (s *Server) courseAbsences(c *gin.Context) {
	id := idParam(c, "id")
	page, limit := pageParams(c)
	s.mu.Lock()
	var rows []model.Absence
	for _, a := range s.absences {
		if a.CourseID == id {
			rows = append(rows, s.decorateAbsence(a))
		}
	}
	s.mu.Unlock()
	uniformPage(c, rows, page, limit)
}

func (s *Server) updateGrade(c *gin.Context) {
	courseID := idParam(c, "id")
	studentID := idParam(c, "studentId")
	var body struct {
		FinalGrade *string `json:"finalGrade"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.enrollments {
		e := &s.enrollments[i]
		if e.CourseID == courseID && e.StudentID == studentID {
			if body.FinalGrade == nil {
				e.FinalGrade = ""
			} else {
				e.FinalGrade = *body.FinalGrade
			}
			s.appendLog("grade.update", fmt.Sprintf("course=%d student=%d", courseID, studentID))
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "enrollment not found"})
}

func (s *Server) addAbsence(c *gin.Context) {
	courseID := idParam(c, "id")
	var body struct {
		StudentID int64  `json:"studentId"`
		Date      string `json:"date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := model.Absence{ID: s.id(), StudentID: body.StudentID, CourseID: courseID, Date: body.Date}
	s.absences = append(s.absences, a)
	s.appendLog("absence.create", fmt.Sprintf("course=%d student=%d date=%s", courseID, body.StudentID, body.Date))
	c.JSON(http.StatusCreated, a)
}

func (s *Server) removeAbsence(c *gin.Context) {
	courseID := idParam(c, "id")
	var body struct {
		StudentID int64  `json:"studentId"`
		Date      string `json:"date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.absences {
		if a.CourseID == courseID && a.StudentID == body.StudentID && a.Date == body.Date {
			s.absences = append(s.absences[:i], s.absences[i+1:]...)
			s.appendLog("absence.delete", fmt.Sprintf("course=%d student=%d", courseID, body.StudentID))
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "absence not found"})
}

func (s *Server) enroll(c *gin.Context) {
	var body struct {
		StudentID int64 `json:"studentId"`
		CourseID  int64 `json:"courseId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.enrollments {
		if e.StudentID == body.StudentID && e.CourseID == body.CourseID {
			c.JSON(http.StatusConflict, gin.H{"message": "student already enrolled"})
			return
		}
	}
	e := model.Enrollment{
		ID:        s.id(),
		StudentID: body.StudentID,
		CourseID:  body.CourseID,
		Status:    model.EnrollmentActive,
	}
	s.enrollments = append(s.enrollments, e)
	s.appendLog("enrollment.create", fmt.Sprintf("student=%d course=%d", body.StudentID, body.CourseID))
	c.JSON(http.StatusCreated, e)
}

func (s *Server) unenroll(c *gin.Context) {
	var body struct {
		StudentID int64 `json:"studentId"`
		CourseID  int64 `json:"courseId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.enrollments {
		if e.StudentID == body.StudentID && e.CourseID == body.CourseID {
			s.enrollments = append(s.enrollments[:i], s.enrollments[i+1:]...)
			s.appendLog("enrollment.delete", fmt.Sprintf("student=%d course=%d", body.StudentID, body.CourseID))
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "enrollment not found"})
}

func (s *Server) listLogs(c *gin.Context) {
	page, limit := pageParams(c)
	action := c.Query("action")
	s.mu.Lock()
	var rows []model.Log
	for i := len(s.logs) - 1; i >= 0; i-- {
		l := s.logs[i]
		if action != "" && !strings.HasPrefix(l.Action, action) {
			continue
		}
		rows = append(rows, l)
	}
	s.mu.Unlock()
	uniformPage(c, rows, page, limit)
}

func (s *Server) getSemester(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, model.Settings{ID: 1, Key: "current-semester", Value: s.semester})
}

func (s *Server) putSemester(c *gin.Context) {
	var body struct {
		Semester string `json:"semester"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.semester = body.Semester
	s.appendLog("settings.update", "current-semester="+body.Semester)
	c.Status(http.StatusNoContent)
}

func (s *Server) listRoles(c *gin.Context) {
	c.JSON(http.StatusOK, []gin.H{
		{"id": 1, "name": model.RoleAdmin},
		{"id": 2, "name": model.RoleTeacher},
		{"id": 3, "name": model.RoleViewer},
	})
}

func (s *Server) roleByName(c *gin.Context) {
	name := c.Param("name")
	for i, role := range []string{model.RoleAdmin, model.RoleTeacher, model.RoleViewer} {
		if role == name {
			c.JSON(http.StatusOK, gin.H{"id": i + 1, "name": role})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "role not found"})
}

// decorate helpers join related records the way the real backend embeds
// them. Callers hold s.mu.

func (s *Server) decorateEnrollment(e model.Enrollment) model.Enrollment {
	for _, st := range s.students {
		if st.ID == e.StudentID {
			stCopy := st
			e.Student = &stCopy
			break
		}
	}
	for _, course := range s.courses {
		if course.ID == e.CourseID {
			cCopy := course
			e.Course = &cCopy
			break
		}
	}
	return e
}

func (s *Server) decorateAbsence(a model.Absence) model.Absence {
	for _, st := range s.students {
		if st.ID == a.StudentID {
			stCopy := st
			a.Student = &stCopy
			break
		}
	}
	for _, course := range s.courses {
		if course.ID == a.CourseID {
			cCopy := course
			a.Course = &cCopy
			break
		}
	}
	return a
}

func (s *Server) decorateCourse(course model.Course) model.Course {
	for _, t := range s.teachers {
		if t.ID == course.TeacherID {
			tCopy := t
			course.Teacher = &tCopy
			break
		}
	}
	return course
}

func filterInPlace[T any](rows []T, keep func(T) bool) []T {
	out := rows[:0]
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
