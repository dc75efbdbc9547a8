package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/teapotsmashers/calcd/internal/calc"
)

// evalCmd evaluates one expression without touching the history.
var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate one expression and print the result",
	Long: `Evaluate one expression and print the formatted result.

Arguments are joined with spaces, so quoting is only needed for characters
the shell would interpret, such as * or (.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		expression := strings.Join(args, " ")
		result := calc.Calculate(expression, cfg.Mode())
		formatted := calc.Format(result)

		if !result.OK() {
			fmt.Fprintln(cmd.OutOrStdout(), color.RedString("%s", formatted))
			if result.Err != nil {
				return fmt.Errorf("%s: %w", expression, result.Err)
			}
			return fmt.Errorf("%s: result is %s", expression, result.Kind)
		}

		fmt.Fprintln(cmd.OutOrStdout(), formatted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
}
