package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"text/template"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/storecheck/storecheck/internal/catalog"
	"github.com/storecheck/storecheck/internal/logging"
	"github.com/storecheck/storecheck/internal/meta"
	"github.com/storecheck/storecheck/internal/probe"
	"github.com/storecheck/storecheck/internal/publish"
	"github.com/storecheck/storecheck/internal/runner"
	"github.com/storecheck/storecheck/internal/schedule"
	"github.com/storecheck/storecheck/internal/store"
)

const envPrefix = "STORECHECK_"

type Command struct {
	OutStream io.Writer
	ErrStream io.Writer

	// LookupEnv reads environment variables. os.LookupEnv is used if nil.
	LookupEnv func(string) (string, bool)

	ServeMode    bool
	CatalogPath  string
	HistoryPath  string
	HistorySize  int
	SnapshotPath string
	UserAgent    string
	S3Bucket     string
	S3Key        string
	S3Region     string
	LogLevel     string
	EnvFile      string
	ListenPort   int
	ScheduleSpec string
	ShowVersion  bool
	ShowHelp     bool

	Catalog  catalog.Catalog
	Schedule schedule.Schedule
	Logger   zerolog.Logger
}

var defaultCommand = &Command{
	OutStream: os.Stdout,
	ErrStream: os.Stderr,
}

//go:embed help.txt
var helpText string

func (cmd *Command) PrintUsage(detail bool) {
	tmpl := template.Must(template.New("help.txt").Parse(helpText))
	tmpl.Execute(cmd.ErrStream, map[string]interface{}{
		"HistorySize": store.DefaultCapacity,
		"S3Key":       publish.DefaultS3Key,
		"Schedule":    schedule.DefaultSchedule,
		"RedirectMax": probe.RedirectMax,
		"Short":       !detail,
	})
}

func (cmd *Command) lookupEnv(name string) (string, bool) {
	if cmd.LookupEnv != nil {
		return cmd.LookupEnv(name)
	}
	return os.LookupEnv(name)
}

// environ reads .env file and merges it with the process environment.
// The process environment wins over the file.
func (cmd *Command) environ(explicit bool) (map[string]string, error) {
	env, err := godotenv.Read(cmd.EnvFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			env = map[string]string{}
		} else {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}
	}
	return env, nil
}

func envName(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// applyEnv sets flags that are not given in the command line from environment variables.
func (cmd *Command) applyEnv(flags *pflag.FlagSet) error {
	env, err := cmd.environ(flags.Changed("env-file"))
	if err != nil {
		return err
	}

	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		switch f.Name {
		case "help", "version", "env-file":
			return
		}
		if f.Changed {
			return
		}

		name := envName(f.Name)
		v, ok := cmd.lookupEnv(name)
		if !ok {
			v, ok = env[name]
		}
		if !ok || v == "" {
			return
		}

		if err := flags.Set(f.Name, v); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", name, err))
		}
	})
	return errors.Join(errs...)
}

func (cmd *Command) ParseArgs(args []string) (exitCode int) {
	flags := pflag.NewFlagSet("storecheck", pflag.ContinueOnError)
	flags.Usage = func() {}

	flags.StringVarP(&cmd.CatalogPath, "catalog", "C", "", "Endpoint catalog file")
	flags.StringVarP(&cmd.HistoryPath, "history", "f", "data/health_history.json", "Path to history file")
	flags.IntVar(&cmd.HistorySize, "history-size", store.DefaultCapacity, "Records kept in the history")
	flags.StringVarP(&cmd.SnapshotPath, "snapshot", "o", "data/health.json", "Path to snapshot file")
	flags.StringVar(&cmd.UserAgent, "user-agent", "", "User-Agent header of probes")
	flags.StringVar(&cmd.S3Bucket, "s3-bucket", "", "S3 bucket to upload the snapshot")
	flags.StringVar(&cmd.S3Key, "s3-key", publish.DefaultS3Key, "Object key of the uploaded snapshot")
	flags.StringVar(&cmd.S3Region, "s3-region", "", "AWS region of the bucket")
	flags.StringVar(&cmd.LogLevel, "log-level", "info", "Log level")
	flags.StringVar(&cmd.EnvFile, "env-file", ".env", "Environment file")
	flags.IntVarP(&cmd.ListenPort, "port", "p", 9000, "HTTP listen port")
	flags.StringVarP(&cmd.ScheduleSpec, "schedule", "s", schedule.DefaultSchedule.String(), "Check schedule")
	flags.BoolVarP(&cmd.ShowVersion, "version", "v", false, "Show version")
	flags.BoolVarP(&cmd.ShowHelp, "help", "h", false, "Show help message")

	invalid := func(err error) int {
		fmt.Fprintln(cmd.ErrStream, err)
		fmt.Fprintf(cmd.ErrStream, "\nPlease see `%s -h` for more information.\n", args[0])
		return 2
	}

	if err := flags.Parse(args[1:]); err != nil {
		return invalid(err)
	}

	if cmd.ShowVersion || cmd.ShowHelp {
		return 0
	}

	switch rest := flags.Args(); {
	case len(rest) == 0:
		cmd.ServeMode = false
	case len(rest) == 1 && rest[0] == "oneshot":
		cmd.ServeMode = false
	case len(rest) == 1 && rest[0] == "serve":
		cmd.ServeMode = true
	default:
		return invalid(fmt.Errorf("unexpected argument: %s", strings.Join(rest, " ")))
	}

	if err := cmd.applyEnv(flags); err != nil {
		return invalid(err)
	}

	if cmd.HistorySize <= 0 {
		return invalid(fmt.Errorf("invalid argument: history-size must be positive: %d", cmd.HistorySize))
	}

	level, err := logging.ParseLevel(cmd.LogLevel)
	if err != nil {
		return invalid(err)
	}
	cmd.Logger = logging.New(cmd.ErrStream, level)

	if cmd.ServeMode {
		cmd.Schedule, err = schedule.Parse(cmd.ScheduleSpec)
		if err != nil {
			return invalid(err)
		}
	} else {
		if flags.Changed("port") {
			fmt.Fprintln(cmd.ErrStream, "warning: port option will ignored in the oneshot mode.")
		}
		if flags.Changed("schedule") {
			fmt.Fprintln(cmd.ErrStream, "warning: schedule option will ignored in the oneshot mode.")
		}
	}

	if cmd.CatalogPath == "" {
		cmd.Catalog = catalog.Default()
	} else {
		cmd.Catalog, err = catalog.Load(cmd.CatalogPath)
		if err != nil {
			fmt.Fprintf(cmd.ErrStream, "error: %s\n", err)
			return 2
		}
	}

	return 0
}

func (cmd *Command) PrintVersion() {
	fmt.Fprintf(cmd.OutStream, "storecheck version %s (%s)\n", meta.Version, meta.Commit)
}

// NewRunner builds a Runner from the parsed options.
func (cmd *Command) NewRunner(ctx context.Context) (*runner.Runner, *store.History, error) {
	ua := cmd.UserAgent
	if ua == "" {
		ua = cmd.Catalog.UserAgent
	}

	history := store.NewHistory(cmd.HistoryPath, cmd.HistorySize, cmd.Logger)

	r := &runner.Runner{
		Catalog:  cmd.Catalog,
		Prober:   probe.NewHTTPProber(probe.Options{UserAgent: ua}),
		History:  history,
		Snapshot: store.SnapshotWriter{Path: cmd.SnapshotPath},
		Logger:   cmd.Logger,
	}

	if cmd.S3Bucket != "" {
		p, err := publish.NewS3Publisher(ctx, cmd.S3Bucket, cmd.S3Key, cmd.S3Region)
		if err != nil {
			return nil, nil, err
		}
		cmd.Logger.Debug().Str("url", p.URL()).Msg("snapshot will be uploaded")
		r.Publishers = append(r.Publishers, p)
	}

	return r, history, nil
}

func (cmd *Command) Run(args []string) (exitCode int) {
	if code := cmd.ParseArgs(args); code != 0 {
		return code
	}

	if cmd.ShowVersion {
		cmd.PrintVersion()
		return 0
	}

	if cmd.ShowHelp {
		cmd.PrintUsage(true)
		return 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r, history, err := cmd.NewRunner(ctx)
	if err != nil {
		fmt.Fprintf(cmd.ErrStream, "error: %s\n", err)
		return 2
	}

	if cmd.ServeMode {
		return cmd.RunServer(ctx, r, history)
	}
	return cmd.RunOneshot(ctx, r)
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "conv", "convert":
			os.Exit(defaultConvCommand.Run(os.Args))
		}
	}

	os.Exit(defaultCommand.Run(os.Args))
}
