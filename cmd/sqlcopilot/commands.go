package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/leofalp/sqlcopilot/core/history"
	"github.com/leofalp/sqlcopilot/internal/server"
	"github.com/leofalp/sqlcopilot/internal/utils"
	"github.com/leofalp/sqlcopilot/providers/ai"
)

var errValidation = errors.New("configuration check failed, please check your settings")

// ask sends the prompt through the saved configuration and records the
// exchange in the history, the same way the browser popup does.
func (a *app) ask(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(stderr)
	stream := fs.Bool("stream", false, "print the reply as it arrives")
	if err := fs.Parse(args); err != nil {
		return err
	}

	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" {
		fmt.Fprintln(stderr, "Usage: sqlcopilot ask [-stream] <prompt>")
		return errUsage
	}

	if _, err := a.messages.Append(ctx, history.TypeUser, prompt); err != nil {
		return err
	}

	if !*stream {
		text, err := a.manager.CallAPI(ctx, prompt)
		if err != nil {
			a.recordFailure(ctx, err)
			return err
		}
		if _, err := a.messages.Append(ctx, history.TypeAssistant, text); err != nil {
			return err
		}
		fmt.Fprintln(stdout, text)
		return nil
	}

	var reply *history.Message
	err := a.manager.CallAPIStream(ctx, prompt, func(chunk string) {
		fmt.Fprint(stdout, chunk)
		if reply == nil {
			message, appendErr := a.messages.Append(ctx, history.TypeAssistant, chunk)
			if appendErr != nil {
				a.logger.Warn("failed to record assistant message", "error", appendErr)
				return
			}
			reply = &message
			return
		}
		if _, appendErr := a.messages.AppendChunk(ctx, reply.ID, chunk); appendErr != nil {
			a.logger.Warn("failed to record chunk", "error", appendErr)
		}
	})
	if reply != nil {
		fmt.Fprintln(stdout)
	}
	if err != nil {
		a.recordFailure(ctx, err)
		return err
	}
	// An empty stream still answers the prompt.
	if reply == nil {
		if _, appendErr := a.messages.Append(ctx, history.TypeAssistant, ""); appendErr != nil {
			a.logger.Warn("failed to record assistant message", "error", appendErr)
		}
	}
	return nil
}

func (a *app) recordFailure(ctx context.Context, err error) {
	if _, appendErr := a.messages.Append(ctx, history.TypeAssistant, "Error: "+err.Error()); appendErr != nil {
		a.logger.Warn("failed to record error message", "error", appendErr)
	}
}

func (a *app) config(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Usage: sqlcopilot config <show|set> [flags]")
		return errUsage
	}

	switch args[0] {
	case "show":
		return a.configShow(ctx, stdout)
	case "set":
		return a.configSet(ctx, args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown config action %q\n", args[0])
		return errUsage
	}
}

func (a *app) configShow(ctx context.Context, stdout io.Writer) error {
	config, err := a.manager.GetConfig(ctx)
	if err != nil {
		return err
	}
	if config == nil {
		fmt.Fprintln(stdout, "not configured")
		return nil
	}

	shown := *config
	shown.APIKey = maskKey(shown.APIKey)
	fmt.Fprintln(stdout, utils.PrettyJSON(shown))
	return nil
}

// configSet merges the given flags over the saved configuration, saves it
// and, unless -skip-validation is set, checks it with a live call. A record
// that fails the check stays saved.
func (a *app) configSet(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	existing, err := a.manager.GetConfig(ctx)
	if err != nil {
		return err
	}
	config := ai.Config{}
	if existing != nil {
		config = *existing
	}

	fs := flag.NewFlagSet("config set", flag.ContinueOnError)
	fs.SetOutput(stderr)
	provider := fs.String("provider", string(config.Provider), "one of "+providerNames())
	fs.StringVar(&config.Endpoint, "endpoint", config.Endpoint, "endpoint URL (custom provider)")
	fs.StringVar(&config.APIKey, "api-key", config.APIKey, "API key")
	fs.StringVar(&config.Model, "model", config.Model, "model name")
	fs.IntVar(&config.MaxTokens, "max-tokens", config.MaxTokens, "maximum tokens in the reply")
	fs.Float64Var(&config.Temperature, "temperature", config.Temperature, "sampling temperature")
	fs.StringVar(&config.RequestMethod, "method", config.RequestMethod, "GET or POST (custom provider)")
	fs.StringVar(&config.PromptParamKey, "param-key", config.PromptParamKey, "prompt parameter name (custom provider)")
	fs.StringVar(&config.SourceLang, "source-lang", config.SourceLang, "source language (aliyun)")
	fs.StringVar(&config.TargetLang, "target-lang", config.TargetLang, "target language (aliyun)")
	skipValidation := fs.Bool("skip-validation", false, "save without a live check")
	if err := fs.Parse(args); err != nil {
		return err
	}
	config.Provider = ai.ProviderName(strings.ToLower(strings.TrimSpace(*provider)))

	if config.Provider != "" && config.Provider != ai.ProviderCustom && config.APIKey == "" {
		return fmt.Errorf("apiKey is required for provider %s", config.Provider)
	}

	if err := a.manager.SetConfig(ctx, config); err != nil {
		return err
	}

	if !*skipValidation && !a.manager.ValidateConfig(ctx, config) {
		return errValidation
	}

	fmt.Fprintln(stdout, "saved")
	return nil
}

func (a *app) validate(ctx context.Context, stdout io.Writer) error {
	config, err := a.manager.GetConfig(ctx)
	if err != nil {
		return err
	}
	if config == nil {
		return ai.ErrConfigMissing
	}
	if !a.manager.ValidateConfig(ctx, *config) {
		return errValidation
	}
	fmt.Fprintln(stdout, "ok")
	return nil
}

func (a *app) history(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	clearAll := fs.Bool("clear", false, "delete the conversation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *clearAll {
		return a.messages.Clear(ctx)
	}

	messages, err := a.messages.List(ctx)
	if err != nil {
		return err
	}
	for _, message := range messages {
		fmt.Fprintf(stdout, "[%s] %s: %s\n",
			message.Time().Local().Format("2006-01-02 15:04:05"), message.Type, message.Content)
	}
	return nil
}

func (a *app) serve(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", a.settings.Server.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	gin.SetMode(a.settings.Server.Mode)
	srv := server.New(a.manager, a.messages, a.hub,
		server.WithObserver(a.observer),
		server.WithMetrics(a.registry),
	)

	fmt.Fprintf(stdout, "listening on http://%s\n", *addr)
	return srv.Run(ctx, *addr)
}

func providerNames() string {
	names := make([]string, len(ai.Providers))
	for i, name := range ai.Providers {
		names[i] = string(name)
	}
	return strings.Join(names, ", ")
}

// maskKey keeps the last four characters of a key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
