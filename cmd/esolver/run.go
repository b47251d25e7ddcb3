package main

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/esolver/cegis"
	"github.com/esolver/logger"
	"github.com/urfave/cli/v2"
)

// RunEsolver runs either the scenario named by --scenario or every named
// benchmark scenario in turn, reporting each one's solution, statistics, and
// any error to stdout. It is factored out of main so a test can drive it
// without constructing a cli.Context from os.Args.
func RunEsolver(ctx *cli.Context) error {
	log := logger.NewCegisLogger(logger.NewLogger(ctx.String("log-level"), "esolver"))

	toRun := scenarios
	if name := ctx.String("scenario"); name != "" {
		s, ok := findScenario(name)
		if !ok {
			return errors.Newf("esolver: unknown scenario %q (want one of %s)", name, scenarioNames())
		}
		toRun = []scenario{s}
	}

	var failed int
	for _, s := range toRun {
		sol, stats, err := s.run(log)
		report(s.name, sol, stats, err)
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		return errors.Newf("esolver: %d of %d scenarios errored", failed, len(toRun))
	}
	return nil
}

func report(name string, sol cegis.Solution, stats cegis.Stats, err error) {
	fmt.Printf("== %s ==\n", name)
	switch {
	case err != nil:
		fmt.Printf("  error: %v\n", err)
	case sol.Empty():
		fmt.Printf("  no solution within budget (tried %d expressions, %d restarts)\n",
			stats.ExpressionsTried, stats.Restarts)
	default:
		for _, binding := range sol[0] {
			fmt.Printf("  %s = %s\n", binding.Target.Name, binding.Expr.String())
		}
		fmt.Printf("  expressions tried: %d, restarts: %d, wall time: %s\n",
			stats.ExpressionsTried, stats.Restarts, stats.WallTime)
	}
}
