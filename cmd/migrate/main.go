package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/actigraphy/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "ACTIGRAPHY_DB_DSN"

type options struct {
	dsn     string
	up      bool
	down    bool
	steps   int
	version bool
	force   int
	forced  bool
}

func main() {
	var opts options
	flag.StringVar(&opts.dsn, "dsn", "", "Database connection URL (defaults to $"+envDSN+", then the database config section)")
	flag.BoolVar(&opts.up, "up", false, "Apply all pending migrations")
	flag.BoolVar(&opts.down, "down", false, "Revert all migrations")
	flag.IntVar(&opts.steps, "steps", 0, "Apply N migrations (negative reverts)")
	flag.BoolVar(&opts.version, "version", false, "Print the current schema version")
	flag.IntVar(&opts.force, "force", -1, "Mark the schema as version N without running migrations")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		opts.forced = opts.forced || f.Name == "force"
	})

	if !opts.any() {
		fmt.Fprintln(os.Stderr, "usage: migrate [-dsn <url>] [-up|-down|-steps N|-version|-force N]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func (o options) any() bool {
	return o.up || o.down || o.steps != 0 || o.version || o.forced
}

func run(opts options) error {
	target, err := resolveDSN(opts.dsn)
	if err != nil {
		return fmt.Errorf("resolve database connection: %w", err)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, target)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	switch {
	case opts.version:
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
		return nil
	case opts.forced:
		if err := m.Force(opts.force); err != nil {
			return fmt.Errorf("force version %d: %w", opts.force, err)
		}
		fmt.Printf("forced to version %d\n", opts.force)
		return nil
	case opts.up:
		return report(m.Up(), "migrations applied")
	case opts.down:
		return report(m.Down(), "migrations reverted")
	default:
		return report(m.Steps(opts.steps), fmt.Sprintf("applied %d migration steps", opts.steps))
	}
}

func report(err error, done string) error {
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Println("schema already current")
	case err != nil:
		return err
	default:
		fmt.Println(done)
	}
	return nil
}

// resolveDSN prefers the flag, then the environment, then the same
// configuration files and ACTIGRAPHY_DB_* variables the server reads.
func resolveDSN(flagDSN string) (string, error) {
	if flagDSN != "" {
		return flagDSN, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.Database.URL(), nil
}
