package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tpp-lora/lora-app-sheets/log"
	"github.com/tpp-lora/lora-app-sheets/logsheet"
	"github.com/tpp-lora/lora-app-sheets/webhook"
)

var RunCmd = Run{
	command: command{},
	bind:    "",
	path:    "",
}

// Run is the webhook service: every Particle cloud callback is appended to the log
// worksheet.
type Run struct {
	command
	bind string
	path string
}

func (cmd *Run) Name() string {
	return "run"
}

func (cmd *Run) Description() string {
	return "Receives Particle cloud webhook callbacks and appends them to the log worksheet"
}

func (cmd *Run) Usage() string {
	return "[--bind <address>] [--path <path>] [--url <url>]"
}

func (cmd *Run) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] run [options]\n", APP)
	fmt.Println()
	fmt.Println("  Receives Particle cloud webhook callbacks (GET or POST) and appends the event to the log worksheet.")
	fmt.Println("  The oldest rows are pruned once the worksheet reaches the configured row limit.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    lora-app-sheets --debug run --bind 0.0.0.0:8080 \`)
	fmt.Println(`                                --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                                --sheet "NewData"`)
	fmt.Println()
}

func (cmd *Run) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("run")

	flagset.StringVar(&cmd.bind, "bind", cmd.bind, "HTTP address for the webhook server. Defaults to the configuration file setting")
	flagset.StringVar(&cmd.path, "path", cmd.path, "URL path for the webhook. Defaults to the configuration file setting")

	return flagset
}

func (cmd *Run) Execute(args ...any) error {
	conf, err := cmd.configure(args)
	if err != nil {
		return err
	}

	if cmd.bind != "" {
		conf.Bind = cmd.bind
	}

	if cmd.path != "" {
		conf.Path = cmd.path
		if err := conf.Validate(); err != nil {
			return err
		}
	}

	location, err := conf.Location()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sheet, err := cmd.open(ctx, conf)
	if err != nil {
		return err
	}

	appender := logsheet.NewAppender(sheet, retention(conf), location)
	server := webhook.Server{
		Bind:           conf.Bind,
		MaxConnections: conf.MaxConnections,
		Handler:        webhook.NewRouter(appender, conf.Path, conf.MaxBody, conf.Timeout),
	}

	log.Infof("Logging webhook events on %v%v to worksheet '%v'", conf.Bind, conf.Path, conf.Sheet)

	return server.Run(ctx)
}
