// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/carterperez-dev/templates/admin-console/internal/config"
	"github.com/carterperez-dev/templates/admin-console/internal/core"
	"github.com/carterperez-dev/templates/admin-console/internal/project"
	"github.com/carterperez-dev/templates/admin-console/internal/user"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // process exits right after

	if err := core.Migrate(ctx, db.DB); err != nil {
		return err
	}
	logger.Info("database schema applied")

	projectSvc := project.NewService(project.NewRepository(db.DB))
	created, err := projectSvc.EnsureProjects(ctx, cfg.Seed.Projects)
	if err != nil {
		return err
	}
	logger.Info("projects seeded", "created", created)

	if cfg.Seed.AdminEmail == "" {
		logger.Info("no admin email configured, skipping admin account")
		return nil
	}

	password := cfg.Seed.AdminPassword
	if password == "" {
		if password, err = promptPassword(); err != nil {
			return err
		}
	}

	userSvc := user.NewService(user.NewRepository(db.DB))
	id, made, err := userSvc.BootstrapAdmin(ctx, user.BootstrapAdminRequest{
		Username: cfg.Seed.AdminUsername,
		FullName: cfg.Seed.AdminFullName,
		Email:    cfg.Seed.AdminEmail,
		Mobile:   cfg.Seed.AdminMobile,
		Password: password,
	})
	if err != nil {
		if appErr, ok := core.AsAppError(err); ok && len(appErr.Details) > 0 {
			return fmt.Errorf("%s: %s", appErr.Message, strings.Join(appErr.Details, "; "))
		}
		return err
	}

	if !made {
		logger.Info("admin account already exists", "email", cfg.Seed.AdminEmail)
		return nil
	}

	logger.Info("admin account created",
		"user_id", id,
		"username", cfg.Seed.AdminUsername,
	)
	return nil
}

func promptPassword() (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", errors.New("SEED_ADMIN_PASSWORD is not set and stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, "Admin password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}

	return string(first), nil
}
