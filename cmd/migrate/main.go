// Command migrate manages the SQLite schema with goose.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"synthlobby/migrations"
)

const usage = `Usage: migrate [-db path] <command>

Commands:
  up             Migrate to the latest version
  up-one         Migrate one version up
  down           Roll back one version
  status         Show migration status
  version        Show current version
  reset          Roll back all migrations
  create <name>  Create a new SQL migration in ./migrations
`

func main() {
	dbPath := flag.String("db", envOrDefault("DATABASE_PATH", "./data/synthlobby.db"), "path to sqlite database")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if err := run(*dbPath, args); err != nil {
		log.Fatalf("%s: %v", args[0], err)
	}
}

func run(dbPath string, args []string) error {
	if args[0] == "create" {
		if len(args) < 2 {
			return fmt.Errorf("create needs a migration name")
		}
		return goose.Create(nil, "./migrations", args[1], "sql")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	switch args[0] {
	case "up":
		return goose.Up(db, ".")
	case "up-one":
		return goose.UpByOne(db, ".")
	case "down":
		return goose.Down(db, ".")
	case "status":
		return goose.Status(db, ".")
	case "version":
		return goose.Version(db, ".")
	case "reset":
		return goose.Reset(db, ".")
	default:
		return fmt.Errorf("unknown command")
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
