// Command streamfinder-login performs an interactive Stremio login from the
// terminal, stores the resulting session record in the local database, and
// prints a short account summary to verify the session works.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	sqliteadapter "github.com/ericfisherdev/streamfinder/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/streamfinder/internal/adapter/driven/stremio"
	"github.com/ericfisherdev/streamfinder/internal/application"
	"github.com/ericfisherdev/streamfinder/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	email, password, err := promptCredentials()
	if err != nil {
		return err
	}

	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	store := sqliteadapter.NewSessionRepo(db)
	client := stremio.NewClient(cfg.StremioAPIURL)
	sessionSvc := application.NewSessionService(store, client, slog.Default())

	ctx := context.Background()

	fmt.Println("Logging in...")
	result, err := sessionSvc.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if result.PersistErr != nil {
		fmt.Fprintln(os.Stderr, "warning: session not saved:", result.PersistErr)
	}

	fmt.Printf("Logged in as %s\n", result.Record.Email)
	fmt.Printf("AuthKey: %s...\n", truncate(result.Record.AuthKey, 12))

	// Exercise the session so a bad key surfaces now rather than on first use.
	if user, err := client.GetUser(ctx, result.Record.AuthKey); err == nil {
		fmt.Printf("User id: %s\n", user.ID)
	}
	if addons, err := client.ListAddons(ctx, result.Record.AuthKey); err == nil {
		fmt.Printf("Installed addons: %d\n", len(addons))
	}
	if items, err := client.ListLibrary(ctx, result.Record.AuthKey, "libraryItem"); err == nil {
		fmt.Printf("Library items: %d\n", len(items))
	}

	return nil
}

// promptCredentials reads the email from stdin and the password without echo.
func promptCredentials() (string, string, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Stremio email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return "", "", fmt.Errorf("read email: %w", err)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", "", fmt.Errorf("email required")
	}

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", "", fmt.Errorf("read password: %w", err)
	}
	password := string(passwordBytes)
	if password == "" {
		return "", "", fmt.Errorf("password required")
	}

	return email, password, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
