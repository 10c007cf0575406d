// Command registryctl is a terminal admin console for the student registry
// backend: login, entity listing and editing, grade management, absence
// tracking and transcript export.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"registryctl/internal/api"
	"registryctl/internal/config"
	"registryctl/internal/logger"
	"registryctl/internal/model"
	"registryctl/internal/pages"
	"registryctl/internal/paginate"
	"registryctl/internal/session"
	"registryctl/internal/transcript"
)

// stderrNotifier prints page notices to stderr so tables on stdout stay
// machine-readable.
type stderrNotifier struct{}

func (stderrNotifier) Success(msg string) { fmt.Fprintln(os.Stderr, msg) }
func (stderrNotifier) Error(msg string)   { fmt.Fprintln(os.Stderr, "error: "+msg) }

func main() {
	cfg := config.Load()
	level := slog.LevelInfo
	if cfg.Env == "dev" {
		level = slog.LevelDebug
	}
	logger.Init(level)

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.L().Warn("metrics listener failed", "error", err)
			}
		}()
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	sess := session.New(cfg.TokenFile)
	client := api.New(cfg.BaseURL, sess, cfg.RequestTimeout)
	env := pages.Env{Client: client, Session: sess, Notify: stderrNotifier{}}
	ctx := context.Background()

	cmd, args := os.Args[1], os.Args[2:]
	if err := run(ctx, cfg, env, cmd, args); err != nil {
		fmt.Fprintln(os.Stderr, "registryctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.App, env pages.Env, cmd string, args []string) error {
	switch cmd {
	case "login":
		return cmdLogin(ctx, env, args)
	case "logout":
		return cmdLogout(ctx, env)
	case "whoami":
		return cmdWhoami(ctx, env)
	case "dashboard":
		return cmdDashboard(ctx, env)
	case "students":
		return cmdStudents(ctx, cfg, env, args)
	case "student":
		return cmdStudent(ctx, env, args)
	case "transcript":
		return cmdTranscript(ctx, env, args)
	case "teachers":
		return cmdTeachers(ctx, cfg, env, args)
	case "courses":
		return cmdCourses(ctx, cfg, env, args)
	case "course":
		return cmdCourse(ctx, env, args)
	case "grades":
		return cmdGrades(ctx, cfg, env, args)
	case "grade":
		return cmdGrade(ctx, env, args)
	case "absences":
		return cmdAbsences(ctx, cfg, env, args)
	case "absence":
		return cmdAbsence(ctx, env, args)
	case "enroll", "unenroll":
		return cmdEnrollment(ctx, cfg, env, cmd, args)
	case "users":
		return cmdUsers(ctx, cfg, env, args)
	case "passwd":
		return cmdPasswd(ctx, env, args)
	case "logs":
		return cmdLogs(ctx, cfg, env, args)
	case "semester":
		return cmdSemester(ctx, env, args)
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: registryctl <command> [flags]

Commands:
  login        -u <user> -p <password>          authenticate and store the token
  logout                                        invalidate and drop the token
  whoami                                        show the logged-in user
  dashboard                                     entity counts and recent activity
  students     [-search -department -status -page -limit] [-create|-delete]
  student      -id <id>                         one student's profile with GPA
  transcript   -id <id> [-o file]               export a student transcript (CSV)
  teachers     [-search -department -page]      [-create|-update|-delete|-assign|-revoke]
  courses      [-search -semester -department -teacher -page] [-create|-update|-delete]
  course       -id <id> [-absences]             course detail with roster
  grades       [-course <id>] [-page]           current-semester grade sheets
  grade        -course <id> -student <id> [-set <grade>|-clear]
  absences     -course <id> [-page]             a course's absence list
  absence      -course <id> -student <id> -date <d> [-remove]
  enroll       -student <id> -course <id>
  unenroll     -student <id> -course <id>
  users        [-email -role -page]             [-create|-delete|-show]  login accounts
  passwd       -old <password> -new <password>  change your own password
  logs         [-action -user -from -to -page]  audit trail
  semester     [-set <value>]                   show or change the current semester

Environment: REGISTRY_URL, TOKEN_FILE, PAGE_LIMIT, REQUEST_TIMEOUT, METRICS_ADDR
`)
}

func cmdLogin(ctx context.Context, env pages.Env, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	fs.Parse(args)
	if *username == "" || *password == "" {
		return fmt.Errorf("login requires -u and -p")
	}

	resp, err := env.Client.Login(ctx, api.Credentials{Username: *username, Password: *password})
	if err != nil {
		return err
	}
	if err := env.Session.SetToken(resp.Token); err != nil {
		return fmt.Errorf("token not persisted: %w", err)
	}
	env.Session.SetUser(&resp.User)

	// Seed the current-semester default so later commands can scope to it.
	if setting, err := env.Client.CurrentSemester(ctx); err == nil {
		env.Session.SetSemester(setting.Value)
	}
	fmt.Printf("Logged in as %s (%s)\n", resp.User.Username, resp.User.EffectiveRole())
	return nil
}

func cmdLogout(ctx context.Context, env pages.Env) error {
	// Best effort server-side; the local token is dropped regardless.
	if err := env.Client.Logout(ctx); err != nil {
		logger.L().Warn("server logout failed", "error", err)
	}
	if err := env.Session.Clear(); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

func cmdWhoami(ctx context.Context, env pages.Env) error {
	user, err := env.Client.Me(ctx)
	if err != nil {
		if env.Session.TokenLooksExpired() {
			return fmt.Errorf("session expired, log in again")
		}
		return err
	}
	fmt.Printf("%s <%s> role=%s\n", user.Username, user.Email, user.EffectiveRole())
	return nil
}

func cmdDashboard(ctx context.Context, env pages.Env) error {
	if err := seedSession(ctx, env); err != nil {
		return err
	}
	page := pages.NewDashboard(env)
	if err := page.Refresh(ctx); err != nil {
		return err
	}
	return page.Render(os.Stdout)
}

func cmdStudents(ctx context.Context, cfg config.App, env pages.Env, args []string) error {
	fs := flag.NewFlagSet("students", flag.ExitOnError)
	search := fs.String("search", "", "name filter")
	department := fs.String("department", "", "department filter")
	status := fs.String("status", "", "status filter")
	pageNum := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", cfg.PageLimit, "page size")
	create := fs.Bool("create", false, "create a student from the field flags")
	update := fs.Int64("update", 0, "update the student with this id")
	del := fs.Int64("delete", 0, "delete the student with this id")
	form := studentFormFlags(fs)
	fs.Parse(args)

	page := pages.NewStudents(env, *limit)
	page.SetSearchInput(*search)
	page.CommitSearch()
	page.SetDepartment(*department)
	page.SetStatus(*status)
	page.Cursor.SetPage(*pageNum)

	switch {
	case *create:
		f := *form
		if err := f.Validate(); err != nil {
			return err
		}
		if err := page.Create(ctx, f); err != nil {
			return err
		}
	case *update != 0:
		f := *form
		if err := f.Validate(); err != nil {
			return err
		}
		if err := page.Update(ctx, *update, f); err != nil {
			return err
		}
	case *del != 0:
		if err := page.Delete(ctx, *del); err != nil {
			return err
		}
	default:
		if err := page.Refresh(ctx); err != nil {
			return err
		}
	}
	return page.Render(os.Stdout)
}

func studentFormFlags(fs *flag.FlagSet) *model.StudentForm {
	form := &model.StudentForm{}
	fs.StringVar(&form.FirstName, "first-name", "", "first name")
	fs.StringVar(&form.LastName, "last-name", "", "last name")
	fs.StringVar(&form.DateOfBirth, "dob", "", "date of birth (YYYY-MM-DD)")
	fs.StringVar(&form.Gender, "gender", "", "gender")
	fs.StringVar(&form.Phone, "phone", "", "phone")
	fs.StringVar(&form.Email, "email", "", "email")
	fs.StringVar(&form.Address, "address", "", "address")
	fs.StringVar(&form.Department, "dept", "", "department")
	fs.StringVar(&form.Program, "program", "", "program")
	fs.IntVar(&form.EnrollmentYear, "year", 0, "enrollment year")
	fs.StringVar(&form.Status, "set-status", "active", "student status")
	return form
}

func cmdStudent(ctx context.Context, env pages.Env, args []string) error {
	fs := flag.NewFlagSet("student", flag.ExitOnError)
	id := fs.Int64("id", 0, "student id")
	fs.Parse(args)
	if *id == 0 {
		return fmt.Errorf("student requires -id")
	}
	page := pages.NewStudentProfile(env, *id)
	if err := page.Refresh(ctx); err != nil {
		return err
	}
	return page.Render(os.Stdout)
}

func cmdTranscript(ctx context.Context, env pages.Env, args []string) error {
	fs := flag.NewFlagSet("transcript", flag.ExitOnError)
	id := fs.Int64("id", 0, "student id")
	out := fs.String("o", "", "output file (default stdout)")
	fs.Parse(args)
	if *id == 0 {
		return fmt.Errorf("transcript requires -id")
	}

	student, err := env.Client.GetStudent(ctx, *id)
	if err != nil {
		return err
	}
	enrollments, err := env.Client.StudentEnrollments(ctx, *id, fullHistoryCursor())
	if err != nil {
		return err
	}
	absences, err := env.Client.StudentAbsences(ctx, *id, fullHistoryCursor())
	if err != nil {
		return err
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return transcript.Write(w, student, enrollments.Data, absences.Data)
}

func cmdTeachers(ctx context.Context, cfg config.App, env pages.Env, args []string) error {
	fs := flag.NewFlagSet("teachers", flag.ExitOnError)
	search := fs.String("search", "", "name filter")
	department := fs.String("department", "", "department filter")
	pageNum := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", cfg.PageLimit, "page size")
	create := fs.Bool("create", false, "create a teacher from the field flags")
	update := fs.Int64("update", 0, "update the teacher with this id")
	del := fs.Int64("delete", 0, "delete the teacher with this id")
	assign := fs.Int64("assign", 0, "teacher id to link a login to")
	userID := fs.Int64("user", 0, "user id for -assign")
	revoke := fs.Int64("revoke", 0, "teacher id to unlink from its login")
	form := &model.TeacherForm{}
	fs.StringVar(&form.FirstName, "first-name", "", "first name")
	fs.StringVar(&form.LastName, "last-name", "", "last name")
	fs.StringVar(&form.Department, "dept", "", "department")
	fs.StringVar(&form.Email, "email", "", "email")
	fs.StringVar(&form.Phone, "phone", "", "phone")
	fs.Parse(args)

	page := pages.NewTeachers(env, *limit)
	page.SetSearchInput(*search)
	page.CommitSearch()
	page.SetDepartment(*department)
	page.Cursor.SetPage(*pageNum)

	switch {
	case *create:
		f := *form
		if err := f.Validate(); err != nil {
			return err
		}
		if err := page.Create(ctx, f); err != nil {
			return err
		}
	case *update != 0:
		f := *form
		if err := f.Validate(); err != nil {
			return err
		}
		if err := page.Update(ctx, *update, f); err != nil {
			return err
		}
	case *del != 0:
		if err := page.Delete(ctx, *del); err != nil {
			return err
		}
	case *assign != 0:
		if *userID == 0 {
			return fmt.Errorf("-assign requires -user")
		}
		if err := page.AssignUser(ctx, *assign, *userID); err != nil {
			return err
		}
	case *revoke != 0:
		if err := page.RevokeUser(ctx, *revoke); err != nil {
			return err
		}
	default:
		if err := page.Refresh(ctx); err != nil {
			return err
		}
	}
	return page.Render(os.Stdout)
}

func cmdCourses(ctx context.Context, cfg config.App, env pages.Env, args []string) error {
	fs := flag.NewFlagSet("courses", flag.ExitOnError)
	search := fs.String("search", "", "name or code filter")
	semester := fs.String("semester", "", "semester filter")
	department := fs.String("department", "", "department filter")
	teacherID := fs.Int64("teacher", 0, "teacher id filter")
	status := fs.String("status", "", "status filter")
	pageNum := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", cfg.PageLimit, "page size")
	create := fs.Bool("create", false, "create a course from the field flags")
	update := fs.Int64("update", 0, "update the course with this id")
	del := fs.Int64("delete", 0, "delete the course with this id")
	form := &model.CourseForm{}
	fs.StringVar(&form.CourseCode, "code", "", "course code")
	fs.StringVar(&form.CourseName, "name", "", "course name")
	fs.StringVar(&form.Section, "section", "1", "section")
	fs.Float64Var(&form.Credit, "credit", 0, "credit hours")
	fs.StringVar(&form.Department, "dept", "", "department")
	fs.StringVar(&form.Semester, "for-semester", "", "semester the course runs in")
	fs.Int64Var(&form.TeacherID, "taught-by", 0, "teacher id")
	fs.StringVar(&form.Status, "set-status", model.CourseActive, "course status")
	fs.Parse(args)

	page := pages.NewCourses(env, *limit)
	page.SetSearchInput(*search)
	page.CommitSearch()
	page.SetSemester(*semester)
	page.SetDepartment(*department)
	page.SetStatus(*status)
	page.SetTeacherID(*teacherID)
	page.Cursor.SetPage(*pageNum)

	switch {
	case *create:
		f := *form
		if err := f.Validate(); err != nil {
			return err
		}
		if err := page.Create(ctx, f); err != nil {
			return err
		}
	case *update != 0:
		f := *form
		if err := f.Validate(); err != nil {
			return err
		}
		if err := page.Update(ctx, *update, f); err != nil {
			return err
		}
	case *del != 0:
		if err := page.Delete(ctx, *del); err != nil {
			return err
		}
	default:
		if err := page.Refresh(ctx); err != nil {
			return err
		}
	}
	return page.Render(os.Stdout)
}

func cmdCourse(ctx context.Context, env pages.Env, args []string) error {
	fs := flag.NewFlagSet("course", flag.ExitOnError)
	id := fs.Int64("id", 0, "course id")
	withAbsences := fs.Bool("absences", false, "include the absence list")
	rosterPage := fs.Int("roster-page", 1, "roster page number")
	fs.Parse(args)
	if *id == 0 {
		return fmt.Errorf("course requires -id")
	}

	page := pages.NewCourseDetail(env, *id)
	if err := page.Refresh(ctx); err != nil {
		return err
	}
	if *rosterPage != 1 {
		if err := page.SetRosterPage(ctx, *rosterPage); err != nil {
			return err
		}
	}
	if *withAbsences {
		page.ExpandAbsences(ctx)
	}
	return page.Render(os.Stdout)
}

func cmdGrades(ctx context.Context, cfg config.App, env pages.Env, args []string) error {
	fs := flag.NewFlagSet("grades", flag.ExitOnError)
	courseID := fs.Int64("course", 0, "expand one course's grade sheet")
	pageNum := fs.Int("page", 1, "course page number")
	fs.Parse(args)

	if err := seedSession(ctx, env); err != nil {
		return err
	}
	page := pages.NewGrades(env, cfg.PageLimit)
	page.ResolveTeacherScope(ctx)
	page.Cursor.SetPage(*pageNum)
	if err := page.RefreshCourses(ctx); err != nil {
		return err
	}
	if *courseID != 0 {
		page.Expand(ctx, *courseID)
	} else {
		for _, course := range page.Courses() {
			page.Expand(ctx, course.ID)
		}
	}
	return page.Render(os.Stdout)
}

func cmdGrade(ctx context.Context, env pages.Env, args []string) error {
	fs := flag.NewFlagSet("grade", flag.ExitOnError)
	courseID := fs.Int64("course", 0, "course id")
	studentID := fs.Int64("student", 0, "student id")
	set := fs.String("set", "", "grade to record")
	clear := fs.Bool("clear", false, "remove the recorded grade")
	fs.Parse(args)
	if *courseID == 0 || *studentID == 0 {
		return fmt.Errorf("grade requires -course and -student")
	}
	if *set != "" && *clear {
		return fmt.Errorf("-set and -clear are mutually exclusive")
	}
	if *set == "" && !*clear {
		return fmt.Errorf("grade requires -set <grade> or -clear")
	}
	if *set != "" && !validGrade(*set) {
		return fmt.Errorf("unknown grade %q (one of %s)", *set, strings.Join(model.GradeOptions, ", "))
	}

	grade := *set
	if *clear {
		grade = ""
	}
	if err := env.Client.UpdateGrade(ctx, *courseID, *studentID, grade); err != nil {
		return err
	}
	if grade == "" {
		fmt.Println("Grade cleared")
	} else {
		fmt.Printf("Grade %s recorded\n", grade)
	}
	return nil
}

func validGrade(g string) bool {
	for _, option := range model.GradeOptions {
		if option == g {
			return true
		}
	}
	return false
}

func cmdAbsences(ctx context.Context, cfg config.App, env pages.Env, args []string) error {
	fs := flag.NewFlagSet("absences", flag.ExitOnError)
	courseID := fs.Int64("course", 0, "course id")
	pageNum := fs.Int("page", 1, "absence page number")
	fs.Parse(args)
	if *courseID == 0 {
		return fmt.Errorf("absences requires -course")
	}

	if err := seedSession(ctx, env); err != nil {
		return err
	}
	page := pages.NewAbsences(env, cfg.PageLimit)
	page.ResolveTeacherScope(ctx)
	if err := page.RefreshCourses(ctx); err != nil {
		return err
	}
	page.Expand(ctx, *courseID)
	if *pageNum != 1 {
		if err := page.SetListPage(ctx, *courseID, *pageNum); err != nil {
			return err
		}
	}
	return page.Render(os.Stdout)
}

func cmdAbsence(ctx context.Context, env pages.Env, args []string) error {
	fs := flag.NewFlagSet("absence", flag.ExitOnError)
	courseID := fs.Int64("course", 0, "course id")
	studentID := fs.Int64("student", 0, "student id")
	date := fs.String("date", "", "absence date")
	remove := fs.Bool("remove", false, "remove instead of record")
	fs.Parse(args)
	if *courseID == 0 || *studentID == 0 || *date == "" {
		return fmt.Errorf("absence requires -course, -student and -date")
	}

	normalized, err := pages.NormalizeAbsenceDate(*date)
	if err != nil {
		return err
	}
	if *remove {
		if err := env.Client.RemoveAbsence(ctx, *courseID, *studentID, normalized); err != nil {
			return err
		}
		fmt.Println("Absence removed")
		return nil
	}
	if err := env.Client.AddAbsence(ctx, *courseID, *studentID, normalized); err != nil {
		return err
	}
	fmt.Println("Absence recorded")
	return nil
}

func cmdEnrollment(ctx context.Context, cfg config.App, env pages.Env, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	studentID := fs.Int64("student", 0, "student id")
	courseID := fs.Int64("course", 0, "course id")
	fs.Parse(args)
	if *studentID == 0 || *courseID == 0 {
		return fmt.Errorf("%s requires -student and -course", cmd)
	}

	page := pages.NewEnrollments(env, cfg.PageLimit)
	if cmd == "enroll" {
		return page.Enroll(ctx, *studentID, *courseID)
	}
	return page.Unenroll(ctx, *studentID, *courseID)
}

func cmdUsers(ctx context.Context, cfg config.App, env pages.Env, args []string) error {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	email := fs.String("email", "", "email filter")
	role := fs.String("role", "", "role filter (ADMIN, TEACHER, VIEWER)")
	pageNum := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", cfg.PageLimit, "page size")
	create := fs.Bool("create", false, "create an account from the field flags")
	del := fs.Int64("delete", 0, "delete the account with this id")
	show := fs.Int64("show", 0, "print one account by id")
	username := fs.String("username", "", "username (defaults to the email's local part)")
	newEmail := fs.String("for-email", "", "email for -create")
	password := fs.String("password", "", "password for -create")
	newRole := fs.String("with-role", model.RoleTeacher, "role name for -create")
	fs.Parse(args)

	if *show != 0 {
		user, err := env.Client.GetUser(ctx, *show)
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s> role=%s\n", user.Username, user.Email, user.EffectiveRole())
		return nil
	}

	page := pages.NewUsers(env, *limit)
	page.SetEmail(*email)
	page.SetRole(*role)
	page.Cursor.SetPage(*pageNum)

	switch {
	case *create:
		if *newEmail == "" || *password == "" {
			return fmt.Errorf("-create requires -for-email and -password")
		}
		if err := page.Create(ctx, *newEmail, *password, *newRole, *username); err != nil {
			return err
		}
	case *del != 0:
		if err := page.Delete(ctx, *del); err != nil {
			return err
		}
	default:
		if err := page.Refresh(ctx); err != nil {
			return err
		}
	}
	return page.Render(os.Stdout)
}

func cmdPasswd(ctx context.Context, env pages.Env, args []string) error {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	old := fs.String("old", "", "current password")
	newPw := fs.String("new", "", "new password")
	fs.Parse(args)
	if *old == "" || *newPw == "" {
		return fmt.Errorf("passwd requires -old and -new")
	}
	if err := env.Client.ChangePassword(ctx, *old, *newPw); err != nil {
		return err
	}
	fmt.Println("Password changed")
	return nil
}

func cmdLogs(ctx context.Context, cfg config.App, env pages.Env, args []string) error {
	fs := flag.NewFlagSet("logs", flag.ExitOnError)
	action := fs.String("action", "", "action filter")
	userID := fs.Int64("user", 0, "user id filter")
	from := fs.String("from", "", "start date")
	to := fs.String("to", "", "end date")
	pageNum := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", cfg.PageLimit, "page size")
	fs.Parse(args)

	page := pages.NewLogs(env, *limit)
	page.SetAction(*action)
	page.SetUserID(*userID)
	page.SetDateRange(*from, *to)
	page.Cursor.SetPage(*pageNum)
	if err := page.Refresh(ctx); err != nil {
		return err
	}
	return page.Render(os.Stdout)
}

func cmdSemester(ctx context.Context, env pages.Env, args []string) error {
	fs := flag.NewFlagSet("semester", flag.ExitOnError)
	set := fs.String("set", "", "new current semester, e.g. 2025-Fall")
	fs.Parse(args)

	page := pages.NewSettings(env)
	if err := page.Refresh(ctx); err != nil {
		return err
	}
	if *set != "" {
		if err := page.SetSemester(ctx, *set); err != nil {
			return err
		}
	}
	return page.Render(os.Stdout)
}

// fullHistoryCursor requests a single oversized page, enough for any one
// student's record.
func fullHistoryCursor() *paginate.Cursor {
	return paginate.NewCursor(1, 100)
}

// seedSession loads the user and current semester for commands that scope by
// role or semester.
func seedSession(ctx context.Context, env pages.Env) error {
	user, err := env.Client.Me(ctx)
	if err != nil {
		if env.Session.TokenLooksExpired() {
			return fmt.Errorf("session expired, log in again")
		}
		return err
	}
	env.Session.SetUser(&user)
	setting, err := env.Client.CurrentSemester(ctx)
	if err != nil {
		return err
	}
	env.Session.SetSemester(setting.Value)
	return nil
}
