// Package seed populates a registry backend with demo data by calling the
// REST API sequentially, the way an operator would.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"registryctl/internal/api"
	"registryctl/internal/logger"
	"registryctl/internal/model"
	"registryctl/internal/ratelimit"
)

var firstNames = []string{
	"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda",
	"William", "Elizabeth", "David", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Charles", "Karen", "Christopher", "Nancy", "Daniel", "Lisa",
	"Matthew", "Betty", "Anthony", "Margaret", "Mark", "Sandra", "Donald", "Ashley",
	"Steven", "Kimberly", "Paul", "Emily", "Andrew", "Donna", "Joshua", "Michelle",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Wilson", "Anderson", "Thomas", "Taylor",
	"Moore", "Jackson", "Martin", "Lee", "Thompson", "White", "Harris", "Sanchez",
	"Clark", "Ramirez", "Lewis", "Robinson", "Walker", "Young", "Allen", "King",
}

var departments = []string{
	"Computer Science", "Mathematics", "Physics", "Chemistry", "Biology",
	"Engineering", "Business", "Economics", "Psychology", "History",
}

var programs = []string{
	"Bachelor of Science", "Bachelor of Arts", "Master of Science",
	"Master of Arts", "PhD Program", "Associate Degree",
}

var courseNames = []string{
	"Introduction to Programming", "Data Structures", "Algorithms", "Database Systems",
	"Web Development", "Software Engineering", "Computer Networks", "Operating Systems",
	"Machine Learning", "Artificial Intelligence", "Calculus I", "Calculus II",
	"Linear Algebra", "Discrete Mathematics", "Statistics", "Physics I",
}

var courseCodes = []string{
	"CS101", "CS201", "CS301", "CS401", "MATH101", "MATH201", "MATH301",
	"PHYS101", "PHYS201", "CHEM101", "BIO101", "ENG101", "HIST101", "STAT101",
}

var sections = []string{"1", "2", "3"}

// studentStatuses is weighted toward active students.
var studentStatuses = []string{"active", "active", "active", "inactive", "graduated", "dropped"}

var seedGrades = []string{"A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "F", ""}

// Options control how much data the seeder creates.
type Options struct {
	Students    int
	Teachers    int
	Courses     int
	Semester    string
	Delay       time.Duration
	AbsenceRate float64
}

// DefaultOptions is a demo-sized data set.
func DefaultOptions(semester string) Options {
	return Options{
		Students:    50,
		Teachers:    10,
		Courses:     20,
		Semester:    semester,
		Delay:       50 * time.Millisecond,
		AbsenceRate: 0.3,
	}
}

// Runner drives the seeding sequence through the API client, pacing writes
// through a token bucket so the backend sees a steady trickle.
type Runner struct {
	client *api.Client
	rng    *rand.Rand
	opts   Options
	pacer  *ratelimit.Bucket
}

// NewRunner builds a seeder. Pass a non-zero seed for reproducible data.
func NewRunner(client *api.Client, opts Options, rngSeed int64) *Runner {
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	return &Runner{
		client: client,
		rng:    rand.New(rand.NewSource(rngSeed)),
		opts:   opts,
		pacer:  ratelimit.NewBucket(1, opts.Delay),
	}
}

// Run seeds teachers, students, courses, enrollments, grades and absences
// in dependency order. Individual failures are logged and skipped so one
// rejected record does not abort the whole run.
func (r *Runner) Run(ctx context.Context) error {
	teachers, err := r.createTeachers(ctx)
	if err != nil {
		return err
	}
	students, err := r.createStudents(ctx)
	if err != nil {
		return err
	}
	courses, err := r.createCourses(ctx, teachers)
	if err != nil {
		return err
	}
	return r.enrollAndGrade(ctx, students, courses)
}

func (r *Runner) createTeachers(ctx context.Context) ([]model.Teacher, error) {
	logger.L().Info("seeding teachers", "count", r.opts.Teachers)
	var teachers []model.Teacher
	for i := 0; i < r.opts.Teachers; i++ {
		first, last := pick(r.rng, firstNames), pick(r.rng, lastNames)
		form := model.TeacherForm{
			FirstName:  first,
			LastName:   last,
			Department: pick(r.rng, departments),
			Email:      r.email(first, last),
			Phone:      r.phone(),
		}
		created, err := r.client.CreateTeacher(ctx, form)
		if err != nil {
			logger.L().Warn("teacher rejected", "error", err)
			continue
		}
		teachers = append(teachers, created)
		r.pause(ctx)
	}
	if len(teachers) == 0 {
		return nil, fmt.Errorf("no teachers created")
	}
	return teachers, nil
}

func (r *Runner) createStudents(ctx context.Context) ([]model.Student, error) {
	logger.L().Info("seeding students", "count", r.opts.Students)
	var students []model.Student
	for i := 0; i < r.opts.Students; i++ {
		first, last := pick(r.rng, firstNames), pick(r.rng, lastNames)
		form := model.StudentForm{
			FirstName:      first,
			LastName:       last,
			DateOfBirth:    r.birthDate(),
			Gender:         pick(r.rng, []string{"Male", "Female", "Other"}),
			Phone:          r.phone(),
			Email:          r.email(first, last),
			Address:        fmt.Sprintf("%d %s", 1+r.rng.Intn(9999), pick(r.rng, []string{"Main St", "Oak Ave", "Park Blvd", "University Dr"})),
			Department:     pick(r.rng, departments),
			Program:        pick(r.rng, programs),
			EnrollmentYear: 2020 + r.rng.Intn(5),
			Status:         pick(r.rng, studentStatuses),
		}
		created, err := r.client.CreateStudent(ctx, form)
		if err != nil {
			logger.L().Warn("student rejected", "error", err)
			continue
		}
		students = append(students, created)
		r.pause(ctx)
	}
	if len(students) == 0 {
		return nil, fmt.Errorf("no students created")
	}
	return students, nil
}

func (r *Runner) createCourses(ctx context.Context, teachers []model.Teacher) ([]model.Course, error) {
	logger.L().Info("seeding courses", "count", r.opts.Courses)
	var courses []model.Course
	for i := 0; i < r.opts.Courses; i++ {
		teacher := teachers[r.rng.Intn(len(teachers))]
		form := model.CourseForm{
			CourseCode: pick(r.rng, courseCodes),
			CourseName: pick(r.rng, courseNames),
			Section:    pick(r.rng, sections),
			Credit:     float64(1 + r.rng.Intn(4)),
			Department: teacher.Department,
			Semester:   r.opts.Semester,
			TeacherID:  teacher.ID,
			Status:     model.CourseActive,
		}
		created, err := r.client.CreateCourse(ctx, form)
		if err != nil {
			logger.L().Warn("course rejected", "error", err)
			continue
		}
		courses = append(courses, created)
		r.pause(ctx)
	}
	if len(courses) == 0 {
		return nil, fmt.Errorf("no courses created")
	}
	return courses, nil
}

func (r *Runner) enrollAndGrade(ctx context.Context, students []model.Student, courses []model.Course) error {
	logger.L().Info("seeding enrollments")
	for _, student := range students {
		// Each student takes a handful of distinct courses.
		count := 2 + r.rng.Intn(4)
		seen := make(map[int64]bool)
		for i := 0; i < count; i++ {
			course := courses[r.rng.Intn(len(courses))]
			if seen[course.ID] {
				continue
			}
			seen[course.ID] = true

			if err := r.client.Enroll(ctx, student.ID, course.ID); err != nil {
				logger.L().Warn("enrollment rejected", "error", err)
				continue
			}
			if grade := pick(r.rng, seedGrades); grade != "" {
				if err := r.client.UpdateGrade(ctx, course.ID, student.ID, grade); err != nil {
					logger.L().Warn("grade rejected", "error", err)
				}
			}
			if r.rng.Float64() < r.opts.AbsenceRate {
				date := r.absenceDate()
				if err := r.client.AddAbsence(ctx, course.ID, student.ID, date); err != nil {
					logger.L().Warn("absence rejected", "error", err)
				}
			}
			r.pause(ctx)
		}
	}
	return nil
}

func (r *Runner) pause(ctx context.Context) {
	_ = r.pacer.Wait(ctx)
}

func (r *Runner) email(first, last string) string {
	domains := []string{"gmail.com", "yahoo.com", "university.edu", "student.edu"}
	return fmt.Sprintf("%s.%s%d@%s",
		lower(first), lower(last), 1+r.rng.Intn(999), pick(r.rng, domains))
}

func (r *Runner) phone() string {
	return fmt.Sprintf("+1-%d-%d-%d", 200+r.rng.Intn(800), 100+r.rng.Intn(900), 1000+r.rng.Intn(9000))
}

func (r *Runner) birthDate() string {
	start := time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC)
	days := int(time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC).Sub(start).Hours() / 24)
	return start.AddDate(0, 0, r.rng.Intn(days)).Format("2006-01-02")
}

func (r *Runner) absenceDate() string {
	start := time.Now().AddDate(0, -3, 0)
	return start.AddDate(0, 0, r.rng.Intn(90)).Format("2006-01-02")
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

func lower(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}
