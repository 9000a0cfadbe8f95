package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetsim/config"
	"github.com/kilianp07/fleetsim/core/fmp"
)

var validateCmd = &cobra.Command{
	Use:   "validate <scenario>",
	Short: "Validate a scenario file without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.LoadScenario(args[0])
		if err != nil {
			var verr *fmp.ValidationError
			if errors.As(err, &verr) {
				for _, issue := range verr.Issues {
					fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", issue)
				}
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(),
			"%s is valid: %d vertices, %d edges, %d demands, %d vehicles, %d charging stations\n",
			args[0], len(p.Vertices), len(p.Edges), len(p.Demands), len(p.Vehicles), len(p.Stations))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
