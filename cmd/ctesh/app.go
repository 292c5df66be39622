package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bawdo/gosbeecte/internal/db"
	"github.com/bawdo/gosbeecte/internal/fixtures"
	"github.com/bawdo/gosbeecte/internal/scenarios"
)

var errNoDSN = errors.New("no DSN: set --dsn or DATABASE_URL")

type config struct {
	engine  string
	dsn     string
	params  bool
	seed    bool
	verbose bool
	noColor bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	cfg    config
	log    *zap.Logger
	out    io.Writer
	errOut io.Writer
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, log: zap.NewNop()}

	root := &cobra.Command{
		Use:           "ctesh",
		Short:         "Print and run common table expression scenarios",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.engine, "engine", envOr("CTESH_ENGINE", db.SQLite), "SQL dialect: postgres, mysql or sqlite")
	flags.StringVar(&a.cfg.dsn, "dsn", os.Getenv("DATABASE_URL"), "database connection string")
	flags.BoolVar(&a.cfg.params, "params", false, "render bind placeholders instead of inline literals")
	flags.BoolVar(&a.cfg.seed, "seed", false, "create and fill the fixture tables before running")
	flags.BoolVarP(&a.cfg.verbose, "verbose", "v", false, "log debug output")
	flags.BoolVar(&a.cfg.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newListCmd(a),
		newSQLCmd(a),
		newRunCmd(a),
		newShellCmd(a),
	)

	return root
}

// setup validates the configuration and builds the logger.
func (a *app) setup() error {
	if a.cfg.noColor {
		color.NoColor = true
	}
	a.log = newLogger(a.errOut, a.cfg.verbose)

	a.cfg.engine = strings.ToLower(strings.TrimSpace(a.cfg.engine))
	if !db.ValidEngine(a.cfg.engine) {
		return errors.Wrapf(db.ErrUnknownEngine, "%q", a.cfg.engine)
	}
	if a.cfg.dsn == "" && a.cfg.engine == db.SQLite {
		a.cfg.dsn = ":memory:"
		a.cfg.seed = true
	}
	a.log.Debug("configured",
		zap.String("engine", a.cfg.engine),
		zap.String("dsn", db.SanitizeDSN(a.cfg.dsn)),
		zap.Bool("params", a.cfg.params),
		zap.Bool("seed", a.cfg.seed))
	return nil
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}

// open connects to the configured database, seeding it when asked to.
func (a *app) open(ctx context.Context) (*db.Conn, error) {
	if a.cfg.dsn == "" {
		return nil, errNoDSN
	}
	conn, err := db.Open(ctx, a.cfg.engine, a.cfg.dsn)
	if err != nil {
		return nil, err
	}
	a.log.Info("connected", zap.String("engine", conn.Engine()), zap.String("dsn", conn.DSN()))

	if a.cfg.seed {
		seed, err := fixtures.Default()
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		if err := seed.Install(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, errors.Wrap(err, "seed")
		}
		a.log.Debug("seeded fixtures", zap.Int("tables", len(seed.Tables)))
	}
	return conn, nil
}

// compile renders a scenario for the configured dialect without touching
// a database.
func (a *app) compile(name string) (string, []any, error) {
	s, err := scenarios.Lookup(name)
	if err != nil {
		return "", nil, err
	}
	q, err := s.Build()
	if err != nil {
		return "", nil, errors.Wrapf(err, "build %s", name)
	}
	v, err := db.NewVisitor(a.cfg.engine, a.cfg.params)
	if err != nil {
		return "", nil, err
	}
	a.log.Debug("compiling", zap.String("scenario", name), zap.Int("ctes", len(q.CTEs())))
	return q.ToSQL(v)
}

// run executes a scenario on conn.
func (a *app) run(ctx context.Context, conn *db.Conn, name string) (*db.Result, error) {
	s, err := scenarios.Lookup(name)
	if err != nil {
		return nil, err
	}
	a.log.Debug("running", zap.String("scenario", name), zap.Bool("mutates", s.Mutates))
	return s.Run(ctx, conn)
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printScenarios(a.out, scenarios.All())
			return nil
		},
	}
}

func newSQLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sql <scenario>",
		Short: "Print the SQL of a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, params, err := a.compile(args[0])
			if err != nil {
				return err
			}
			printSQL(a.out, sql, params)
			return nil
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run a scenario and print its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			conn, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			res, err := a.run(ctx, conn, args[0])
			if err != nil {
				return err
			}
			printResult(a.out, res)
			return nil
		},
	}
}

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			conn, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()
			return runShell(ctx, newShell(a, conn))
		},
	}
}
