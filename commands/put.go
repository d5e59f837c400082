package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tpp-lora/lora-app-sheets/log"
	"github.com/tpp-lora/lora-app-sheets/logsheet"
)

var PutCmd = Put{
	command: command{},
	file:    "",
}

type Put struct {
	command
	file string
}

func (cmd *Put) Name() string {
	return "put"
}

func (cmd *Put) Description() string {
	return "Appends the rows in a TSV file to the log worksheet"
}

func (cmd *Put) Usage() string {
	return "[--url <url>] [--sheet <sheet>] --file <file>"
}

func (cmd *Put) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] put [options] --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Appends the data rows of a TSV file (e.g. from 'get') to the log worksheet and then prunes the")
	fmt.Println("  oldest rows until the worksheet is below the configured row limit. The TSV header row is skipped.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    lora-app-sheets --debug put --credentials "credentials.json" \`)
	fmt.Println(`                                --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                                --file "lora.tsv"`)
	fmt.Println()
}

func (cmd *Put) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("put")

	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file")

	return flagset
}

func (cmd *Put) Execute(args ...any) error {
	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	conf, err := cmd.configure(args)
	if err != nil {
		return err
	}

	f, err := os.Open(cmd.file)
	if err != nil {
		return err
	}

	defer f.Close()

	_, rows, err := logsheet.ParseTSV(f)
	if err != nil {
		return fmt.Errorf("invalid TSV file (%w)", err)
	}

	if len(rows) == 0 {
		log.Infof("No rows in TSV file %v", cmd.file)
		return nil
	}

	ctx := context.Background()

	sheet, err := cmd.open(ctx, conf)
	if err != nil {
		return err
	}

	if err := sheet.AppendRows(ctx, rows); err != nil {
		return err
	}

	log.Infof("Appended %v rows from TSV file %v to worksheet '%v'", len(rows), cmd.file, conf.Sheet)

	pruned, err := prune(ctx, sheet, retention(conf))
	if err != nil {
		return err
	}

	if pruned > 0 {
		log.Infof("Pruned %v rows from worksheet '%v'", pruned, conf.Sheet)
	}

	return nil
}

// prune applies the retention policy until it no longer deletes any rows.
func prune(ctx context.Context, table logsheet.Table, retention logsheet.Retention) (int, error) {
	pruned := 0

	for {
		deleted, err := retention.Enforce(ctx, table)
		if err != nil {
			return pruned, err
		} else if deleted == 0 {
			return pruned, nil
		}

		pruned += deleted
	}
}
