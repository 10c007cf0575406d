package model

import "testing"

func validStudentForm() StudentForm {
	return StudentForm{
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Department:     "Mathematics",
		EnrollmentYear: 2024,
		Status:         "active",
	}
}

func TestStudentFormValidation(t *testing.T) {
	if err := validStudentForm().Validate(); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}

	f := validStudentForm()
	f.FirstName = ""
	if f.Validate() == nil {
		t.Error("missing first name should fail")
	}

	f = validStudentForm()
	f.Status = "expelled"
	if f.Validate() == nil {
		t.Error("unknown status should fail")
	}

	f = validStudentForm()
	f.Email = "not-an-email"
	if f.Validate() == nil {
		t.Error("malformed email should fail")
	}

	f = validStudentForm()
	f.DateOfBirth = "31/12/1999"
	if f.Validate() == nil {
		t.Error("non-ISO birth date should fail")
	}
	f.DateOfBirth = "1999-12-31"
	if err := f.Validate(); err != nil {
		t.Errorf("ISO birth date rejected: %v", err)
	}
}

func TestCourseFormValidation(t *testing.T) {
	f := CourseForm{
		CourseCode: "CS101",
		CourseName: "Intro to Programming",
		Credit:     3,
		Department: "Computer Science",
		Semester:   "2025-Fall",
		TeacherID:  1,
		Status:     "active",
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}
	f.Credit = 0
	if f.Validate() == nil {
		t.Error("zero credit should fail")
	}
}

func TestCourseLabel(t *testing.T) {
	c := Course{CourseCode: "CS101", Section: "2", Semester: "2025-Fall"}
	if got := c.Label(); got != "CS101-2 (2025-Fall)" {
		t.Errorf("Label() = %q", got)
	}
}

func TestUserEffectiveRole(t *testing.T) {
	u := User{RoleName: RoleTeacher}
	if got := u.EffectiveRole(); got != RoleTeacher {
		t.Errorf("EffectiveRole = %q", got)
	}
}
