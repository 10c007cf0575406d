package model

import "strconv"

// GradePoints maps letter grades to 4.0-scale points. I and W carry no
// points and are excluded from GPA.
var GradePoints = map[string]float64{
	"A":  4.0,
	"A-": 3.7,
	"B+": 3.3,
	"B":  3.0,
	"B-": 2.7,
	"C+": 2.3,
	"C":  2.0,
	"C-": 1.7,
	"D+": 1.3,
	"D":  1.0,
	"F":  0.0,
}

// GradeOptions lists the grades a teacher can assign, in rank order.
var GradeOptions = []string{"A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "F", "I", "W"}

// GPA averages graded enrollments weighted by course credit. Enrollments
// without a grade or without course data are skipped; zero credits yields
// "0.00".
func GPA(enrollments []Enrollment) string {
	var totalPoints, totalCredits float64
	for _, e := range enrollments {
		if e.FinalGrade == "" || e.Course == nil {
			continue
		}
		points, ok := GradePoints[e.FinalGrade]
		if !ok {
			continue
		}
		totalPoints += points * e.Course.Credit
		totalCredits += e.Course.Credit
	}
	if totalCredits == 0 {
		return "0.00"
	}
	return strconv.FormatFloat(totalPoints/totalCredits, 'f', 2, 64)
}

// CreditsWithGrades sums credits over enrollments that carry a point-bearing
// grade, matching what GPA averages over.
func CreditsWithGrades(enrollments []Enrollment) float64 {
	var total float64
	for _, e := range enrollments {
		if e.FinalGrade == "" || e.Course == nil {
			continue
		}
		if _, ok := GradePoints[e.FinalGrade]; !ok {
			continue
		}
		total += e.Course.Credit
	}
	return total
}
