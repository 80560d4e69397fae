// Command useradd creates an account directly in the configured credential
// store. It is how the first admin is bootstrapped.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/isdelr/blog-be/internal/config"
	"github.com/isdelr/blog-be/internal/database"
	"github.com/isdelr/blog-be/internal/logger"
	"github.com/isdelr/blog-be/internal/models"
	"github.com/isdelr/blog-be/internal/services"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// readPassword reads without echo. Tests replace it.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

func main() {
	_ = godotenv.Load()
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("useradd failed")
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	fs.SetOutput(out)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "login email")
	role := fs.String("role", string(models.RoleUser), "role: user or admin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" {
		return errors.New("-name and -email are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel, true)

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	users, closeUsers, err := services.OpenUserStore(ctx, db, services.UserStoreOptions{
		Backend:       cfg.UserStore,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
		BcryptCost:    cfg.BcryptCost,
	})
	if err != nil {
		return err
	}
	defer closeUsers(ctx)

	fmt.Fprint(out, "Enter password: ")
	password, err := readPassword()
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	user, err := users.Register(ctx, *name, *email, string(password), models.Role(*role))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Created %s %s (%s)\n", user.Role, user.Email, user.ID)
	return nil
}
