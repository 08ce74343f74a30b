// Command hostelctl runs maintenance tasks against the hostel database:
// applying the schema, bootstrapping the first admin and repairing room
// occupancy counters.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/hostellog/hostel-admin/internal/config"
	"github.com/hostellog/hostel-admin/internal/database"
	"github.com/hostellog/hostel-admin/internal/logger"
)

func main() {
	root := newRootCmd(connect, readPassword)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env is what every subcommand needs.  Close releases the database.
type env struct {
	DB  *sql.DB
	Cfg config.Config
	Log *zap.Logger
}

func (e *env) Close() {
	_ = e.Log.Sync()
	_ = e.DB.Close()
}

// connect loads the server configuration and opens the database.
func connect(_ context.Context) (*env, error) {
	cfg := config.Load()
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "hostelctl")
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, err
	}
	return &env{DB: db, Cfg: cfg, Log: log}, nil
}

// readPassword prompts twice without echo.  It refuses to run when stdin
// is not a terminal so scripts must pass --password.
func readPassword() (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--password is required when stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return strings.TrimSpace(string(first)), nil
}
