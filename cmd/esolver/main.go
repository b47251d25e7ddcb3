package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

var scenarioFlag = &cli.StringFlag{
	Name:  "scenario",
	Usage: "benchmark scenario to run (default: all). One of " + scenarioNames(),
}

var logLevelFlag = &cli.StringFlag{
	Name:  "log-level",
	Value: "NOTICE",
	Usage: "op/go-logging level: CRITICAL, ERROR, WARNING, NOTICE, INFO, or DEBUG",
}

var esolverApp = &cli.App{
	Action:    RunEsolver,
	Name:      "bitvector CEGIS synthesizer",
	HelpName:  "esolver",
	ArgsUsage: " ",
	Flags: []cli.Flag{
		scenarioFlag,
		logLevelFlag,
	},
}

func scenarioNames() string {
	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.name
	}
	return strings.Join(names, ", ")
}

func main() {
	if err := esolverApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
