// Command budgetctl runs maintenance tasks against the HomeBudget database.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/dig"
	"golang.org/x/term"

	database "github.com/sebuszqo/HomeBudget/db"
	"github.com/sebuszqo/HomeBudget/internal/app"
	"github.com/sebuszqo/HomeBudget/internal/config"
	"github.com/sebuszqo/HomeBudget/internal/export"
	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
	"github.com/sebuszqo/HomeBudget/internal/log"
	"github.com/sebuszqo/HomeBudget/internal/user"
)

const usage = `Usage: budgetctl <command> [flags]

Commands:
  migrate   apply pending database migrations
  seed      insert the preset global categories
  adduser   create a user (prompts for the password when -password is omitted)
  export    write a user's expenses as csv, json or yaml

Run "budgetctl <command> -h" for the flags of a command.
`

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}

	switch args[0] {
	case "migrate":
		return runMigrate(args[1:], stdout, stderr)
	case "seed":
		return runSeed(args[1:], stdout, stderr)
	case "adduser":
		return runAddUser(args[1:], stdin, stdout, stderr)
	case "export":
		return runExport(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// loadConfig reads the usual configuration sources; a non-empty dsn flag wins.
func loadConfig(dsn string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dsn != "" {
		cfg.DB.ConnectionString = dsn
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(stderr io.Writer) *log.Logger {
	return log.New(log.Config{Format: "text", Component: log.ComponentCLI, Output: stderr})
}

// withContainer builds the object graph, invokes fn against it and closes the
// database if fn caused it to be opened.
func withContainer(cfg *config.Config, stderr io.Writer, fn interface{}) error {
	container, err := app.Build(cfg, newLogger(stderr))
	if err != nil {
		return err
	}

	var opened *database.DBService
	if err := container.Decorate(func(db *database.DBService) *database.DBService {
		opened = db
		return db
	}); err != nil {
		return err
	}
	defer func() {
		if opened != nil {
			_ = opened.Close()
		}
	}()

	if err := container.Invoke(fn); err != nil {
		return dig.RootCause(err)
	}
	return nil
}

func runMigrate(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dsn := fs.String("dsn", "", "PostgreSQL connection string (defaults to DB_CONNECTION_STRING)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*dsn)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(cfg.DB.ConnectionString); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Migrations applied")
	return nil
}

func runSeed(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dsn := fs.String("dsn", "", "PostgreSQL connection string (defaults to DB_CONNECTION_STRING)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*dsn)
	if err != nil {
		return err
	}
	return withContainer(cfg, stderr, func(db *database.DBService) error {
		created, err := database.SeedPresetCategories(context.Background(), db.DB, cfg.PresetCategories)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Seeded %d of %d preset categories\n", created, len(cfg.PresetCategories))
		return nil
	})
}

func runAddUser(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)
	username := fs.String("user", "", "Username")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	dsn := fs.String("dsn", "", "PostgreSQL connection string (defaults to DB_CONNECTION_STRING)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		fmt.Fprintln(stdout, "Usage: budgetctl adduser -user <username> [-password <password>] [-dsn <dsn>]")
		fs.PrintDefaults()
		return errors.New("missing required flags: user")
	}

	cfg, err := loadConfig(*dsn)
	if err != nil {
		return err
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password cannot be empty")
	}

	return withContainer(cfg, stderr, func(users user.Service) error {
		created, err := users.Register(context.Background(), *username, password)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		fmt.Fprintf(stdout, "User %s created with ID %d and balance %s\n",
			created.Username, created.ID, created.Balance.StringFixed(2))
		return nil
	})
}

func runExport(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	username := fs.String("user", "", "Username whose expenses are exported")
	format := fs.String("format", "csv", "Output format: "+strings.Join(export.Formats, ", "))
	out := fs.String("out", "", "Output file (defaults to stdout)")
	dsn := fs.String("dsn", "", "PostgreSQL connection string (defaults to DB_CONNECTION_STRING)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		fmt.Fprintln(stdout, "Usage: budgetctl export -user <username> [-format csv|json|yaml] [-out <file>] [-dsn <dsn>]")
		fs.PrintDefaults()
		return errors.New("missing required flags: user")
	}
	encoder, err := export.EncoderFor(*format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(*dsn)
	if err != nil {
		return err
	}

	var body []byte
	err = withContainer(cfg, stderr, func(users user.Service, expenses domain.ExpenseRepository) error {
		ctx := context.Background()
		owner, err := users.GetUserByUsername(ctx, *username)
		if err != nil {
			return fmt.Errorf("look up user %s: %w", *username, err)
		}
		list, err := expenses.FindByUser(ctx, owner.ID, domain.ExpenseFilter{})
		if err != nil {
			return err
		}
		body, err = encoder.EncodeRows(export.RowsFromExpenses(list))
		return err
	})
	if err != nil {
		return err
	}

	if *out == "" {
		_, err = stdout.Write(body)
		return err
	}
	if err := os.WriteFile(*out, body, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	fmt.Fprintf(stdout, "Exported expenses of %s to %s\n", *username, *out)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Pipes and tests.
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
