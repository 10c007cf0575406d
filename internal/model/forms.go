package model

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// StudentForm is the create/edit payload for students.
type StudentForm struct {
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	DateOfBirth    string `json:"dateOfBirth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Gender         string `json:"gender,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	Address        string `json:"address,omitempty"`
	Department     string `json:"department" validate:"required"`
	Program        string `json:"program,omitempty"`
	EnrollmentYear int    `json:"enrollmentYear" validate:"required,gte=1900,lte=2100"`
	Status         string `json:"status" validate:"required,oneof=active graduated dropped inactive"`
}

// Validate checks the form against its schema.
func (f StudentForm) Validate() error { return validate.Struct(f) }

// TeacherForm is the create/edit payload for teachers.
type TeacherForm struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Department string `json:"department" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone,omitempty"`
}

// Validate checks the form against its schema.
func (f TeacherForm) Validate() error { return validate.Struct(f) }

// CourseForm is the create/edit payload for course offerings.
type CourseForm struct {
	CourseCode  string  `json:"courseCode" validate:"required"`
	CourseName  string  `json:"courseName" validate:"required"`
	Section     string  `json:"section,omitempty"`
	Description string  `json:"description,omitempty"`
	Credit      float64 `json:"credit" validate:"required,gt=0"`
	Department  string  `json:"department" validate:"required"`
	Semester    string  `json:"semester" validate:"required"`
	TeacherID   int64   `json:"teacherId" validate:"required"`
	Status      string  `json:"status" validate:"required,oneof=active inactive"`
}

// Validate checks the form against its schema.
func (f CourseForm) Validate() error { return validate.Struct(f) }

// UserForm is the create payload for login accounts.
type UserForm struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	RoleID   int64  `json:"roleId" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=active inactive"`
}

// Validate checks the form against its schema.
func (f UserForm) Validate() error { return validate.Struct(f) }
