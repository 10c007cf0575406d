package model

import "testing"

func graded(grade string, credit float64) Enrollment {
	return Enrollment{FinalGrade: grade, Course: &Course{Credit: credit}}
}

func TestGPAWeightsByCredit(t *testing.T) {
	enrollments := []Enrollment{
		graded("A", 4), // 16.0 points
		graded("B", 2), // 6.0 points
	}
	if got := GPA(enrollments); got != "3.67" {
		t.Errorf("GPA = %s, want 3.67", got)
	}
}

func TestGPASkipsNonPointGrades(t *testing.T) {
	enrollments := []Enrollment{
		graded("A", 3),
		graded("I", 3), // incomplete: no points, no credits
		graded("W", 3), // withdrawn: no points, no credits
		graded("", 3),  // ungraded
		{FinalGrade: "B", Course: nil},
	}
	if got := GPA(enrollments); got != "4.00" {
		t.Errorf("GPA = %s, want 4.00 with only the A counting", got)
	}
	if got := CreditsWithGrades(enrollments); got != 3 {
		t.Errorf("CreditsWithGrades = %v, want 3", got)
	}
}

func TestGPANoGradedCourses(t *testing.T) {
	if got := GPA(nil); got != "0.00" {
		t.Errorf("GPA(nil) = %s, want 0.00", got)
	}
	if got := GPA([]Enrollment{graded("", 3)}); got != "0.00" {
		t.Errorf("GPA with no grades = %s, want 0.00", got)
	}
}

func TestFGradeCountsCredits(t *testing.T) {
	enrollments := []Enrollment{
		graded("A", 3),
		graded("F", 3), // 0 points but credits still in the denominator
	}
	if got := GPA(enrollments); got != "2.00" {
		t.Errorf("GPA = %s, want 2.00", got)
	}
}
