// Command sqlcopilot turns natural language into SQL (or translates text)
// through the configured provider.
//
// Usage:
//
//	sqlcopilot [-config file] <command> [flags] [args]
//
// Commands:
//
//	ask [-stream] <prompt>   send a prompt and print the reply
//	config show              print the saved provider configuration
//	config set [flags]       save a provider configuration
//	validate                 test the saved configuration with a live call
//	history [-clear]         print or clear the conversation
//	serve [-addr host:port]  run the HTTP bridge for the browser UI
//
// Settings come from sqlcopilot.yaml and SQLCOPILOT_* variables; a .env file
// in the working directory is loaded first.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/leofalp/sqlcopilot/internal/settings"

	_ "github.com/joho/godotenv/autoload"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run executes one command. Logs go to stderr, results to stdout.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("sqlcopilot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "settings file (default: sqlcopilot.yaml, then $SQLCOPILOT_CONFIG)")
	fs.Usage = func() { usage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errUsage
	}

	s, err := settings.Load(*configFile)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, s, stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	command, commandArgs := rest[0], rest[1:]
	switch command {
	case "ask":
		return a.ask(ctx, commandArgs, stdout, stderr)
	case "config":
		return a.config(ctx, commandArgs, stdout, stderr)
	case "validate":
		return a.validate(ctx, stdout)
	case "history":
		return a.history(ctx, commandArgs, stdout, stderr)
	case "serve":
		return a.serve(ctx, commandArgs, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		fs.Usage()
		return errUsage
	}
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, `Usage: sqlcopilot [-config file] <command> [flags] [args]

Commands:
  ask [-stream] <prompt>   send a prompt and print the reply
  config show              print the saved provider configuration
  config set [flags]       save a provider configuration
  validate                 test the saved configuration with a live call
  history [-clear]         print or clear the conversation
  serve [-addr host:port]  run the HTTP bridge for the browser UI

Global flags:`)
	fs.PrintDefaults()
}
