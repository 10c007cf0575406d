// Command seed fills a registry backend with demo data: teachers, students,
// courses for one semester, then enrollments with grades and absences.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"registryctl/internal/api"
	"registryctl/internal/config"
	"registryctl/internal/logger"
	"registryctl/internal/seed"
	"registryctl/internal/session"
)

func main() {
	cfg := config.Load()
	logger.Init(slog.LevelInfo)

	username := flag.String("u", "admin", "admin username")
	password := flag.String("p", "", "admin password")
	semester := flag.String("semester", "", "semester to seed (default: backend's current semester)")
	students := flag.Int("students", 50, "students to create")
	teachers := flag.Int("teachers", 10, "teachers to create")
	courses := flag.Int("courses", 20, "courses to create")
	rngSeed := flag.Int64("seed", 0, "random seed, 0 for time-based")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "seed: -p <admin password> is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *username, *password, *semester, *students, *teachers, *courses, *rngSeed); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.App, username, password, semester string, students, teachers, courses int, rngSeed int64) error {
	sess := session.New("")
	client := api.New(cfg.BaseURL, sess, cfg.RequestTimeout)

	resp, err := client.Login(ctx, api.Credentials{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := sess.SetToken(resp.Token); err != nil {
		return err
	}
	sess.SetUser(&resp.User)

	if semester == "" {
		setting, err := client.CurrentSemester(ctx)
		if err != nil {
			return fmt.Errorf("resolve current semester: %w", err)
		}
		semester = setting.Value
	}

	opts := seed.DefaultOptions(semester)
	opts.Students = students
	opts.Teachers = teachers
	opts.Courses = courses
	opts.Delay = cfg.SeedDelay

	logger.L().Info("seeding registry",
		"url", cfg.BaseURL, "semester", semester,
		"students", students, "teachers", teachers, "courses", courses)

	if err := seed.NewRunner(client, opts, rngSeed).Run(ctx); err != nil {
		return err
	}
	logger.L().Info("seeding complete")
	return nil
}
