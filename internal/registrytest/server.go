// Package registrytest is an in-memory stand-in for the registry backend,
// implementing enough of its REST contract for end-to-end client tests. The
// real backend is an external collaborator; nothing here ships to users.
package registrytest

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"registryctl/internal/model"
)

const signingKey = "registrytest-signing-key"

// Server is the fake backend plus its in-memory state.
type Server struct {
	HTTP *httptest.Server

	mu          sync.Mutex
	nextID      int64
	users       []model.User
	students    []model.Student
	teachers    []model.Teacher
	courses     []model.Course
	enrollments []model.Enrollment
	absences    []model.Absence
	logs        []model.Log
	semester    string
	passwords   map[string]string
}

// New starts a fake backend with an admin account (admin/admin) and the
// given current semester.
func New(semester string) *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		nextID:    1,
		semester:  semester,
		passwords: map[string]string{"admin": "admin"},
	}
	s.users = append(s.users, model.User{
		ID: s.id(), Username: "admin", Email: "admin@registry.local",
		RoleID: 1, RoleName: model.RoleAdmin,
	})

	r := gin.New()
	s.routes(r)
	s.HTTP = httptest.NewServer(r)
	return s
}

// Close shuts the fake backend down.
func (s *Server) Close() { s.HTTP.Close() }

// URL is the base URL clients should point at.
func (s *Server) URL() string { return s.HTTP.URL + "/api" }

// AddTeacherAccount registers a TEACHER login linked to a teacher record.
func (s *Server) AddTeacherAccount(username, password string, teacherID int64) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := model.User{
		ID: s.id(), Username: username, Email: username + "@registry.local",
		RoleID: 2, RoleName: model.RoleTeacher, TeacherID: &teacherID,
	}
	s.users = append(s.users, user)
	s.passwords[username] = password
	for i := range s.teachers {
		if s.teachers[i].ID == teacherID {
			uid := user.ID
			s.teachers[i].UserID = &uid
		}
	}
	return user
}

func (s *Server) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Server) routes(r *gin.Engine) {
	api := r.Group("/api")
	api.POST("/auth/login", s.login)

	authed := api.Group("", s.requireAuth)
	authed.GET("/auth/me", s.me)
	authed.POST("/auth/logout", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	authed.PUT("/auth/change-password", s.changePassword)

	authed.GET("/users", s.listUsers)
	authed.GET("/users/:id", s.getUser)
	authed.GET("/users/email/:email", s.userByEmail)
	authed.POST("/users", s.requireAdmin, s.createUser)
	authed.DELETE("/users/:id", s.requireAdmin, s.deleteUser)

	authed.GET("/students", s.listStudents)
	authed.GET("/students/:id", s.getStudent)
	authed.POST("/students", s.requireAdmin, s.createStudent)
	authed.PUT("/students/:id", s.requireAdmin, s.updateStudent)
	authed.DELETE("/students/:id", s.requireAdmin, s.deleteStudent)
	authed.GET("/students/:id/enrollments", s.studentEnrollments)
	authed.GET("/students/:id/absences", s.studentAbsences)

	authed.GET("/teachers", s.listTeachers)
	authed.POST("/teachers", s.requireAdmin, s.createTeacher)
	authed.PUT("/teachers/:id", s.requireAdmin, s.updateTeacher)
	authed.DELETE("/teachers/:id", s.requireAdmin, s.deleteTeacher)
	authed.POST("/teachers/:id/assign-user", s.requireAdmin, s.assignUser)
	authed.DELETE("/teachers/:id/revoke-user", s.requireAdmin, s.revokeUser)

	authed.GET("/courses", s.listCourses)
	authed.GET("/courses/:id", s.getCourse)
	authed.POST("/courses", s.requireAdmin, s.createCourse)
	authed.PUT("/courses/:id", s.requireAdmin, s.updateCourse)
	authed.DELETE("/courses/:id", s.requireAdmin, s.deleteCourse)
	authed.GET("/courses/:id/enrollments", s.courseEnrollments)
	authed.GET("/courses/:id/absences", s.courseAbsences)
	authed.PUT("/courses/:id/students/:studentId/grade", s.updateGrade)
	authed.POST("/courses/:id/absences", s.addAbsence)
	authed.DELETE("/courses/:id/absences", s.removeAbsence)

	authed.POST("/enrollments", s.enroll)
	authed.DELETE("/enrollments", s.unenroll)

	authed.GET("/logs", s.listLogs)

	authed.GET("/settings/current-semester", s.getSemester)
	authed.PUT("/settings/current-semester", s.requireAdmin, s.putSemester)

	authed.GET("/roles", s.listRoles)
	authed.GET("/roles/name/:name", s.roleByName)
}

func (s *Server) login(c *gin.Context) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.passwords[creds.Username] != creds.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}
	var user model.User
	for _, u := range s.users {
		if u.Username == creds.Username {
			user = u
			break
		}
	}

	claims := jwt.MapClaims{
		"sub":  user.Username,
		"role": user.EffectiveRole(),
		"jti":  uuid.NewString(),
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
		return
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return []byte(signingKey), nil
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
		return
	}
	role, _ := claims["role"].(string)
	sub, _ := claims["sub"].(string)
	c.Set("role", role)
	c.Set("username", sub)
	c.Next()
}

func (s *Server) requireAdmin(c *gin.Context) {
	if c.GetString("role") != model.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "admin role required"})
		return
	}
	c.Next()
}

func (s *Server) me(c *gin.Context) {
	username := c.GetString("username")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			c.JSON(http.StatusOK, u)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
}

func (s *Server) appendLog(action, details string) {
	s.logs = append(s.logs, model.Log{
		ID:        s.id(),
		Action:    action,
		Details:   details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// pageParams reads 1-based page/limit query values.
func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

// springPage serves the page-object wire shape with a 0-based number so
// client normalization is exercised.
func springPage[T any](c *gin.Context, rows []T, page, limit int) {
	start := (page - 1) * limit
	end := min(start+limit, len(rows))
	if start > len(rows) {
		start, end = len(rows), len(rows)
	}
	totalPages := (len(rows) + limit - 1) / limit
	c.JSON(http.StatusOK, gin.H{
		"content":       rows[start:end],
		"totalElements": len(rows),
		"totalPages":    totalPages,
		"number":        page - 1,
		"size":          limit,
	})
}

// uniformPage serves the already-normalized envelope shape.
func uniformPage[T any](c *gin.Context, rows []T, page, limit int) {
	start := (page - 1) * limit
	end := min(start+limit, len(rows))
	if start > len(rows) {
		start, end = len(rows), len(rows)
	}
	totalPages := (len(rows) + limit - 1) / limit
	c.JSON(http.StatusOK, gin.H{
		"data":        rows[start:end],
		"total":       len(rows),
		"totalPages":  totalPages,
		"currentPage": page,
		"limit":       limit,
	})
}

func idParam(c *gin.Context, name string) int64 {
	v, _ := strconv.ParseInt(c.Param(name), 10, 64)
	return v
}

func sortByID[T any](rows []T, id func(T) int64) {
	sort.Slice(rows, func(i, j int) bool { return id(rows[i]) < id(rows[j]) })
}
