package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/theapemachine/qerasure"
)

type circuitsOptions struct {
	*rootOptions
	angle float64
}

func newCircuitsCmd(root *rootOptions) *cobra.Command {
	opts := &circuitsOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "circuits",
		Short: "Print the three circuits at one coupling angle as OpenQASM 3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := qerasure.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			for _, cond := range qerasure.Conditions {
				c, err := qerasure.BuildCircuit(cond, cfg.Roles, qerasure.Radians(opts.angle))
				if err != nil {
					return err
				}

				fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("// %s, θ = %g°", cond.Label(), opts.angle)))
				fmt.Fprintln(w, c.QASM())
			}

			return nil
		},
	}

	cmd.Flags().Float64Var(&opts.angle, "angle", 90, "coupling angle in degrees")

	return cmd
}
