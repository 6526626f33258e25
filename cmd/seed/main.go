// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"task-tracker/server/internal/config"
	"task-tracker/server/internal/db"
	"task-tracker/server/internal/security"
	taskdomain "task-tracker/server/internal/task/domain"
	taskrepo "task-tracker/server/internal/task/repository"
	userdomain "task-tracker/server/internal/user/domain"
	userrepo "task-tracker/server/internal/user/repository"
)

const (
	devEmail    = "dev@example.com"
	devUsername = "dev"
	devPassword = "devpassword"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config")
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	pool, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("db open")
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := userrepo.NewPostgresRepository(pool)
	tasks := taskrepo.NewPostgresRepository(pool)

	existing, err := users.GetByEmail(ctx, devEmail)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed: lookup dev user")
	}
	if existing != nil {
		logger.Info().Str("email", devEmail).Int64("id", existing.ID).Msg("seed: dev user already exists, nothing to do")
		return
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	digest, err := hasher.Digest([]byte(devPassword))
	if err != nil {
		logger.Fatal().Err(err).Msg("seed: hash password")
	}

	user := &userdomain.User{Username: devUsername, Email: devEmail, PasswordHash: digest}
	if err := users.Create(ctx, user); err != nil {
		logger.Fatal().Err(err).Msg("seed: create dev user")
	}

	sampleTasks := []struct {
		name string
		done bool
	}{
		{"Buy groceries", false},
		{"Write weekly report", true},
		{"Call the dentist", false},
	}
	var firstTaskID int64
	for _, s := range sampleTasks {
		task := &taskdomain.Task{UserID: user.ID, Name: s.name, IsDone: s.done}
		if err := tasks.Create(ctx, task); err != nil {
			logger.Fatal().Err(err).Str("task", s.name).Msg("seed: create task")
		}
		if firstTaskID == 0 {
			firstTaskID = task.ID
		}
	}

	tag := &taskdomain.Tag{UserID: user.ID, Name: "errands"}
	if err := tasks.CreateTag(ctx, tag); err != nil {
		logger.Fatal().Err(err).Msg("seed: create tag")
	}
	if err := tasks.AttachTag(ctx, firstTaskID, tag.ID); err != nil {
		logger.Fatal().Err(err).Msg("seed: attach tag")
	}

	logger.Info().Str("email", devEmail).Int64("id", user.ID).Int("tasks", len(sampleTasks)).
		Str("password", devPassword).Msg("seed: created dev user")
}
