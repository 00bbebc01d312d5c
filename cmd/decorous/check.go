package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dzfrias/decorous/internal/compile"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Parse and analyze a .decor file without compiling it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return &cliError{code: 3, err: err}
	}

	h := compile.Check(string(source), path)
	printDiagnostics(logger, h)

	if h.HasErrors() {
		return &cliError{code: 1, err: fmt.Errorf("%s has errors", path)}
	}
	logger.Sugar().Infof("%s OK", path)
	return nil
}
