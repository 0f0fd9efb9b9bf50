package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitchain/packages/fixture"
)

type serveOptions struct {
	port     int
	delay    string
	verbose  bool
	username string
	password string
	jsonLogs bool
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the fixture server",
		Long: `Run the HTTP server the hitchain test suite is written against.

Endpoints:
  GET|POST   /greet                  greeting from firstName and lastName
  GET|POST   /header                 names of the request headers
  POST|PUT   /body                   echoes the request body
  POST       /jsonBody               message field of a JSON body
  POST       /jsonBodyAcceptHeader   same, requires Accept: application/json
  GET|POST   /cookie                 names of the request cookies
  POST       /binaryBody             request bytes as signed decimals
  GET        /session                sets a JSESSIONID cookie
  *          /status/{code}          answers with the given status
  *          /secured/hello          basic auth
  *          /secured/digest         digest auth

Examples:
  hitchain serve
  hitchain serve --port 3000 --delay 100ms
  hitchain serve --verbose --json-logs`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.port, "port", "p", 8080, "Port to listen on")
	f.StringVarP(&opts.delay, "delay", "d", "0", "Delay to add to all responses (e.g., 100ms, 1s)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every request")
	f.StringVar(&opts.username, "username", fixture.DefaultUsername, "Username for the secured endpoints")
	f.StringVar(&opts.password, "password", fixture.DefaultPassword, "Password for the secured endpoints")
	f.BoolVar(&opts.jsonLogs, "json-logs", false, "Write logs as JSON")

	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	var delay time.Duration
	if opts.delay != "0" {
		var err error
		delay, err = time.ParseDuration(opts.delay)
		if err != nil {
			return withExitCode(ExitUsageError, fmt.Errorf("invalid delay value %q: %w", opts.delay, err))
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler = slog.NewTextHandler(cmd.ErrOrStderr(), handlerOpts)
	if opts.jsonLogs {
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), handlerOpts)
	}

	server := fixture.NewServer(
		fixture.WithPort(opts.port),
		fixture.WithDelay(delay),
		fixture.WithVerbose(opts.verbose),
		fixture.WithCredentials(opts.username, opts.password),
		fixture.WithLogger(slog.New(handler)),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.StartWithContext(ctx); err != nil {
		return withExitCode(ExitNetworkError, err)
	}
	return nil
}
