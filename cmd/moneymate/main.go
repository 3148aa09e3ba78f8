// Command moneymate is a terminal client for the MoneyMate budgeting API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"moneymate/internal/amqp"
	"moneymate/internal/api"
	"moneymate/internal/cache"
	"moneymate/internal/cli"
	"moneymate/internal/config"
	"moneymate/internal/core"
	"moneymate/internal/log"
	"moneymate/internal/metrics"
	"moneymate/internal/notice"
	"moneymate/internal/services"
	"moneymate/internal/sheets"
	"moneymate/internal/sheets/google"
)

func main() {
	cli.LoadEnvFile()

	ctx, cancel := cli.SignalContext(context.Background(), log.Discard())
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

// usageError is printed as-is with the command usage, not as a notice.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

type command struct {
	summary  string
	fallback string
	run      func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"status":         {summary: "check the stored session", run: cmdStatus},
	"signup":         {summary: "create an account", run: cmdSignUp},
	"verify":         {summary: "verify an email with the emailed code", run: cmdVerify},
	"resend":         {summary: "resend the verification code", run: cmdResend},
	"login":          {summary: "log in", run: cmdLogin},
	"logout":         {summary: "log out", fallback: "Logout failed", run: cmdLogout},
	"forgot":         {summary: "reset a forgotten password", run: cmdForgot},
	"home":           {summary: "show the budget summary", run: cmdHome},
	"income":         {summary: "show or set the income", run: cmdIncome},
	"expenses":       {summary: "list expenses", run: cmdExpenses},
	"add":            {summary: "add an expense", fallback: "Failed to add expense", run: cmdAdd},
	"rm":             {summary: "delete an expense", fallback: "Error deleting expense", run: cmdRemove},
	"passwd":         {summary: "change the password", fallback: "Failed to change password", run: cmdPasswd},
	"delete-account": {summary: "delete the account", fallback: "Failed to delete account", run: cmdDeleteAccount},
	"prefs":          {summary: "show display preferences", run: cmdPrefs},
	"export":         {summary: "append expenses to the configured Google Sheet", run: cmdExport},
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("moneymate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr, fs) }

	apiURL := fs.String("api", "", "API base URL (overrides MONEYMATE_API_URL)")
	dbPath := fs.String("db", "", "token database path (overrides MONEYMATE_DB_PATH)")
	currency := fs.String("currency", "", "display currency, e.g. INR")
	cycle := fs.String("cycle", "", "budget cycle label: Weekly, Bi-Weekly or Monthly")
	verbose := fs.Bool("v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return usagef("missing command")
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n", name)
		fs.Usage()
		return usagef("unknown command %q", name)
	}

	cfg, err := cli.LoadAndValidateConfig(func(c *config.Config) {
		if *apiURL != "" {
			c.APIURL = *apiURL
		}
		if *dbPath != "" {
			c.DBPath = *dbPath
		}
		if *currency != "" {
			c.Currency = *currency
		}
		if *cycle != "" {
			c.BudgetCycle = *cycle
		}
		if *verbose {
			c.LogLevel = "debug"
		}
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return err
	}

	logger := cli.SetupLogger(cfg.LogLevel, stderr)

	a, err := newApp(cfg, logger, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return err
	}
	defer a.close()

	err = cmd.run(ctx, a, fs.Args()[1:])
	switch {
	case err == nil:
		return nil
	case errors.Is(err, flag.ErrHelp):
		return err
	}

	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "Error: %s\n", ue.msg)
		return err
	}
	logger.Debug("Command failed", log.FieldOperation, name, log.FieldError, err.Error())
	notice.Print(stderr, notice.FromError(err, cmd.fallback))
	return err
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: moneymate [flags] <command> [command flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-15s %s\n", n, commands[n].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fs.PrintDefaults()
}

// newExporter builds the sheets exporter for the export command.
var newExporter = func(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.Exporter, error) {
	if strings.TrimSpace(cfg.GoogleSpreadsheetID) == "" {
		return nil, errors.New("sheets export is not configured (set GOOGLE_SPREADSHEET_ID)")
	}
	return google.New(ctx, google.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	}, logger)
}

type app struct {
	cfg    *config.Config
	logger *log.Logger
	stdout io.Writer
	stderr io.Writer
	prompt *cli.Prompter

	client  *api.Client
	metrics *metrics.Metrics
	tokens  *cli.TokenStore
	events  *amqp.Client

	session *services.Session
	budget  *services.Budget
	account *services.Account
}

func newApp(cfg *config.Config, logger *log.Logger, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	m := metrics.New()
	client := api.New(cfg.APIURL,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithLogger(logger),
		api.WithMetrics(m),
	)

	tokens, err := cli.OpenTokenStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := []services.Option{
		services.WithLogger(logger),
		services.WithPreferences(cfg.Preferences()),
		services.WithProfileCache(cache.NewLRUCache[core.Profile](4, cfg.ProfileTTL)),
	}

	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, logger)
		opts = append(opts, services.WithEvents(events))
	}

	session := services.NewSession(client, tokens, opts...)

	return &app{
		cfg:     cfg,
		logger:  logger,
		stdout:  stdout,
		stderr:  stderr,
		prompt:  cli.NewPrompter(stdin, stderr),
		client:  client,
		metrics: m,
		tokens:  tokens,
		events:  events,
		session: session,
		budget:  services.NewBudget(session),
		account: services.NewAccount(session),
	}, nil
}

func (a *app) close() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Warn("Failed to close AMQP client", log.FieldError, err.Error())
		}
	}
	if err := a.tokens.Close(); err != nil {
		a.logger.Warn("Failed to close token store", log.FieldError, err.Error())
	}
	if a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteFile(a.cfg.MetricsFile); err != nil {
			a.logger.Warn("Failed to write metrics", "path", a.cfg.MetricsFile, log.FieldError, err.Error())
		}
	}
}

func (a *app) success(msg string) {
	notice.Print(a.stdout, notice.Success(msg))
}

func (a *app) info(msg string) {
	notice.Print(a.stdout, notice.Info(msg))
}

func (a *app) warn(err error, fallback string) {
	notice.Print(a.stderr, notice.FromError(err, fallback))
}

// newFlagSet returns a flag set for a subcommand writing errors to stderr.
func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}
