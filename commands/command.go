package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/tpp-lora/lora-app-sheets/config"
	"github.com/tpp-lora/lora-app-sheets/log"
	"github.com/tpp-lora/lora-app-sheets/logsheet"
)

const APP = "lora-app-sheets"
const VERSION = "v0.1.0"

const SHEETS = "https://www.googleapis.com/auth/spreadsheets"

// Options holds the global command line options.
type Options struct {
	Config string
	Debug  bool
}

// command holds the flags shared by the commands that access the log worksheet. Empty
// flags fall back to the configuration file.
type command struct {
	credentials string
	tokens      string
	url         string
	sheet       string
}

func (cmd *command) flagset(name string) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, flag.ExitOnError)

	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Path for the 'credentials.json' file. Defaults to the configuration file setting")
	flagset.StringVar(&cmd.tokens, "tokens", cmd.tokens, "Directory for the authorisation tokens. Defaults to the configuration file setting")
	flagset.StringVar(&cmd.url, "url", cmd.url, "Spreadsheet URL. Defaults to the configuration file setting")
	flagset.StringVar(&cmd.sheet, "sheet", cmd.sheet, "Log worksheet name. Defaults to the configuration file setting")

	return flagset
}

// configure loads the configuration file and applies any command line overrides.
func (cmd *command) configure(args []any) (*config.Config, error) {
	options := getOptions(args)

	log.SetDebug(options.Debug)

	conf := config.NewConfig()
	if err := conf.Load(options.Config); err != nil {
		return nil, fmt.Errorf("could not load configuration (%w)", err)
	}

	if v := strings.TrimSpace(cmd.credentials); v != "" {
		conf.Credentials = v
	}

	if v := strings.TrimSpace(cmd.tokens); v != "" {
		conf.Tokens = v
	}

	if v := strings.TrimSpace(cmd.url); v != "" {
		conf.Spreadsheet = v
	}

	if v := strings.TrimSpace(cmd.sheet); v != "" {
		conf.Sheet = v
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

// open authorises access to Google Sheets and resolves the log worksheet.
func (cmd *command) open(ctx context.Context, conf *config.Config) (*logsheet.GoogleSheet, error) {
	if strings.TrimSpace(conf.Credentials) == "" {
		return nil, fmt.Errorf("--credentials is a required option")
	}

	if strings.TrimSpace(conf.Spreadsheet) == "" {
		return nil, fmt.Errorf("--url is a required option")
	}

	log.Debugf("Spreadsheet - URL:%s  sheet:%s", conf.Spreadsheet, conf.Sheet)

	client, err := authorize(ctx, conf.Credentials, SHEETS, conf.Tokens)
	if err != nil {
		return nil, fmt.Errorf("authentication/authorization error (%w)", err)
	}

	google, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%w)", err)
	}

	return logsheet.OpenGoogleSheet(ctx, google, conf.Spreadsheet, conf.Sheet)
}

func retention(conf *config.Config) logsheet.Retention {
	return logsheet.Retention{
		MaxRows:      conf.Retention.MaxRows,
		RowsToDelete: conf.Retention.Delete,
	}
}

func getOptions(args []any) *Options {
	if len(args) > 0 {
		if options, ok := args[0].(*Options); ok && options != nil {
			return options
		}
	}

	return &Options{}
}

func helpOptions(flagset *flag.FlagSet) {
	fmt.Println("  Options:")
	flagset.VisitAll(func(f *flag.Flag) {
		fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
	})
}
