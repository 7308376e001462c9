// Command leaguectl runs maintenance tasks against the league database:
// schema migrations, printing standings and writing export files.
package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	_ "github.com/lib/pq"
	"github.com/urfave/cli/v2"

	"github.com/Dosada05/card-league/config"
	"github.com/Dosada05/card-league/db"
	"github.com/Dosada05/card-league/metrics"
	"github.com/Dosada05/card-league/repositories"
	"github.com/Dosada05/card-league/services"
	"github.com/Dosada05/card-league/standings"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "leaguectl",
		Usage: "card league maintenance tool",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Postgres connection string",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "scoring-rules",
				Usage:   "path to the scoring rules YAML file",
				EnvVars: []string{"SCORING_RULES_PATH"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log debug output to stderr",
			},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			standingsCommand(),
			exportCommand(),
		},
	}
}

func migrateCommand() *cli.Command {
	run := func(direction db.MigrateDirection) cli.ActionFunc {
		return func(c *cli.Context) error {
			conn, err := openDB(c)
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := db.Migrate(conn, direction); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "migrations applied (%s)\n", direction)
			return nil
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "manage the database schema",
		Subcommands: []*cli.Command{
			{Name: "up", Usage: "apply all pending migrations", Action: run(db.MigrateUp)},
			{Name: "down", Usage: "roll back all migrations", Action: run(db.MigrateDown)},
			{
				Name:  "version",
				Usage: "print the current schema version",
				Action: func(c *cli.Context) error {
					conn, err := openDB(c)
					if err != nil {
						return err
					}
					defer conn.Close()
					version, dirty, err := db.Version(conn)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "version %d (dirty: %t)\n", version, dirty)
					return nil
				},
			},
		},
	}
}

func tournamentFlag() cli.Flag {
	return &cli.IntFlag{
		Name:     "tournament",
		Aliases:  []string{"t"},
		Usage:    "tournament id",
		Required: true,
	}
}

func standingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "print the standings of a tournament",
		Flags: []cli.Flag{
			tournamentFlag(),
			&cli.BoolFlag{Name: "json", Usage: "print the raw result document"},
		},
		Action: func(c *cli.Context) error {
			conn, err := openDB(c)
			if err != nil {
				return err
			}
			defer conn.Close()
			svc, _, err := buildServices(c, conn)
			if err != nil {
				return err
			}

			res, err := svc.Compute(c.Context, c.Int("tournament"))
			if err != nil {
				return err
			}
			if c.Bool("json") {
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return printStandings(c.App.Writer, res)
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write the standings to an .xlsx or .csv file",
		Flags: []cli.Flag{
			tournamentFlag(),
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (.xlsx or .csv)", Required: true},
		},
		Action: func(c *cli.Context) error {
			out := c.String("out")
			ext := strings.ToLower(filepath.Ext(out))
			if ext != ".xlsx" && ext != ".csv" {
				return fmt.Errorf("unsupported export format %q: use .xlsx or .csv", ext)
			}

			conn, err := openDB(c)
			if err != nil {
				return err
			}
			defer conn.Close()
			_, exports, err := buildServices(c, conn)
			if err != nil {
				return err
			}

			var data []byte
			if ext == ".xlsx" {
				data, err = exports.XLSX(c.Context, c.Int("tournament"))
			} else {
				data, err = exports.CSV(c.Context, c.Int("tournament"))
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(c.App.Writer, "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
}

func openDB(c *cli.Context) (*sql.DB, error) {
	dsn := c.String("database-url")
	if dsn == "" {
		return nil, fmt.Errorf("database url is required (--database-url or DATABASE_URL)")
	}
	return db.Connect(dsn, 5*time.Second)
}

func newLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
}

func buildServices(c *cli.Context, conn *sql.DB) (services.StandingsService, services.ExportService, error) {
	rules, err := config.LoadScoringRules(c.String("scoring-rules"))
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(c)
	m := metrics.New(nil)

	tournamentRepo := repositories.NewPostgresTournamentRepository(conn)
	standingsService := services.NewStandingsService(
		standings.New(rules),
		tournamentRepo,
		repositories.NewPostgresTeamRepository(conn),
		repositories.NewPostgresGameRepository(conn),
		repositories.NewPostgresScheduleRepository(conn),
		repositories.NewPostgresOverrideRepository(conn),
		nil, m, logger,
	)
	exportService := services.NewExportService(standingsService, tournamentRepo, nil, m, logger)
	return standingsService, exportService, nil
}

// printStandings renders rank, team and totals as an aligned table.
func printStandings(w io.Writer, res *standings.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTEAM\tNAME\tWINS\tPOINTS\tHANDS\tBOSTONS")
	for i, team := range res.Teams {
		total := res.Matrix.Totals(team.ID)
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%d\t%d\t%d\n",
			i+1, team.TeamNumber, team.Name, total.Wins, total.Points, total.Hands, total.Boston)
	}
	return tw.Flush()
}
