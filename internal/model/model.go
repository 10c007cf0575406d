package model

// Role names as the backend reports them.
const (
	RoleAdmin   = "ADMIN"
	RoleTeacher = "TEACHER"
	RoleViewer  = "VIEWER"
)

// Student statuses.
const (
	StudentActive    = "active"
	StudentGraduated = "graduated"
	StudentDropped   = "dropped"
	StudentInactive  = "inactive"
)

// Course statuses.
const (
	CourseActive   = "active"
	CourseInactive = "inactive"
)

// Enrollment statuses.
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentDropped   = "dropped"
)

// User is a login account. The backend reports the role under roleName;
// the client reads both.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	RoleID    int64  `json:"roleId"`
	Role      string `json:"role"`
	RoleName  string `json:"roleName"`
	TeacherID *int64 `json:"teacherId,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// EffectiveRole prefers the roleName field the backend sends over the
// client-side alias.
func (u User) EffectiveRole() string {
	if u.RoleName != "" {
		return u.RoleName
	}
	return u.Role
}

// Student is a registry student record.
type Student struct {
	ID             int64  `json:"id"`
	StudentID      string `json:"studentId"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	DateOfBirth    string `json:"dateOfBirth,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	Address        string `json:"address,omitempty"`
	Department     string `json:"department"`
	Program        string `json:"program,omitempty"`
	EnrollmentYear int    `json:"enrollmentYear"`
	Status         string `json:"status"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

// FullName joins first and last name for display.
func (s Student) FullName() string { return s.FirstName + " " + s.LastName }

// Teacher is a faculty record; UserID links an optional login account.
type Teacher struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Department string `json:"department"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	UserID     *int64 `json:"userId,omitempty"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// FullName joins first and last name for display.
func (t Teacher) FullName() string { return t.FirstName + " " + t.LastName }

// Course is one offering: code+section+semester identify it.
type Course struct {
	ID          int64    `json:"id"`
	CourseCode  string   `json:"courseCode"`
	CourseName  string   `json:"courseName"`
	Section     string   `json:"section,omitempty"`
	Description string   `json:"description,omitempty"`
	Credit      float64  `json:"credit"`
	Department  string   `json:"department"`
	Semester    string   `json:"semester"`
	TeacherID   int64    `json:"teacherId"`
	Teacher     *Teacher `json:"teacher,omitempty"`
	Status      string   `json:"status"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// Label renders "CS101-2 (2025-Fall)" style identifiers for section headers.
func (c Course) Label() string {
	label := c.CourseCode
	if c.Section != "" {
		label += "-" + c.Section
	}
	if c.Semester != "" {
		label += " (" + c.Semester + ")"
	}
	return label
}

// Enrollment joins a student to a course offering. At most one per
// (student, course); the backend enforces this.
type Enrollment struct {
	ID         int64    `json:"id"`
	StudentID  int64    `json:"studentId"`
	CourseID   int64    `json:"courseId"`
	FinalGrade string   `json:"finalGrade,omitempty"`
	Status     string   `json:"status"`
	EnrolledAt string   `json:"enrolledAt"`
	UpdatedAt  string   `json:"updatedAt"`
	Student    *Student `json:"student,omitempty"`
	Course     *Course  `json:"course,omitempty"`
}

// Absence is identified by its (student, course, date) triple.
type Absence struct {
	ID        int64    `json:"id"`
	StudentID int64    `json:"studentId"`
	CourseID  int64    `json:"courseId"`
	Date      string   `json:"date"`
	Student   *Student `json:"student,omitempty"`
	Course    *Course  `json:"course,omitempty"`
}

// Log is an append-only audit record; read-only from the client.
type Log struct {
	ID        int64  `json:"id"`
	UserID    *int64 `json:"userId,omitempty"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
	User      *User  `json:"user,omitempty"`
}

// Settings is a key/value pair; the client only uses current-semester.
type Settings struct {
	ID    int64  `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}
