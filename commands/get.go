package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tpp-lora/lora-app-sheets/log"
	"github.com/tpp-lora/lora-app-sheets/logsheet"
)

var GetCmd = Get{
	command: command{},
	file:    time.Now().Format("2006-01-02T150405.tsv"),
}

type Get struct {
	command
	file string
}

func (cmd *Get) Name() string {
	return "get"
}

func (cmd *Get) Description() string {
	return "Retrieves the log worksheet and stores it to a local TSV file"
}

func (cmd *Get) Usage() string {
	return "[--url <url>] [--sheet <sheet>] --file <file>"
}

func (cmd *Get) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] get [options] --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Downloads the log worksheet to a TSV file")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    lora-app-sheets --debug get --credentials "credentials.json" \`)
	fmt.Println(`                                --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                                --sheet "NewData" \`)
	fmt.Println(`                                --file "lora.tsv"`)
	fmt.Println()
}

func (cmd *Get) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("get")

	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file name. Defaults to '<yyyy-mm-ddTHHmmss>.tsv'")

	return flagset
}

func (cmd *Get) Execute(args ...any) error {
	conf, err := cmd.configure(args)
	if err != nil {
		return err
	}

	ctx := context.Background()

	sheet, err := cmd.open(ctx, conf)
	if err != nil {
		return err
	}

	values, err := sheet.Values(ctx)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(os.TempDir(), "lora-*.tsv")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := logsheet.MakeTSV(tmp, values); err != nil {
		return fmt.Errorf("error creating TSV file (%w)", err)
	}

	tmp.Close()

	dir := filepath.Dir(cmd.file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), cmd.file); err != nil {
		return err
	}

	log.Infof("Retrieved %v log rows to file %s", len(values.Values), cmd.file)

	return nil
}
