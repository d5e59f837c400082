package main

import (
	"flag"
	"fmt"
	"os"
	_ "time/tzdata"

	uhppoted "github.com/uhppoted/uhppoted-lib/command"

	"github.com/tpp-lora/lora-app-sheets/commands"
	"github.com/tpp-lora/lora-app-sheets/config"
)

var cli = []uhppoted.Command{
	&commands.RunCmd,
	&commands.SelfTestCmd,
	&commands.AuthoriseCmd,
	&commands.GetCmd,
	&commands.PutCmd,
	&commands.VersionCmd,
}

var options = commands.Options{
	Config: config.DEFAULT_CONFIG,
	Debug:  false,
}

var help = uhppoted.NewHelp(commands.APP, cli, nil)

func main() {
	flag.StringVar(&options.Config, "config", options.Config, "Configuration file path")
	flag.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	flag.Parse()

	cmd, err := uhppoted.Parse(cli, nil, help)
	if err != nil {
		fmt.Printf("\nError parsing command line: %v\n\n", err)
		os.Exit(1)
	}

	if cmd == nil {
		help.Execute()
		os.Exit(1)
	}

	if err = cmd.Execute(&options); err != nil {
		fmt.Printf("\nERROR: %v\n\n", err)
		os.Exit(1)
	}
}
