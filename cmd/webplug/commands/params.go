package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/justyntemme/webplug/pkg/framework/param"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Print the configured parameters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := globalConfig.BuildRegistry()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		meta := globalConfig.Plugin.Info()
		fmt.Fprintln(out, headerStyle.Render(meta.String())+dimStyle.Render(" "+meta.UID().String()))
		fmt.Fprint(out, paramsTable(reg))
		return nil
	},
}

func paramsTable(reg *param.Registry) string {
	header := []string{"ID", "NAME", "KIND", "RANGE", "STEPS", "DEFAULT"}
	var rows [][]string
	for p := range reg.Params() {
		rng := fmt.Sprintf("%g..%g", p.Min, p.Max)
		if p.Unit != "" {
			rng += " " + p.Unit
		}
		steps := "-"
		if p.StepCount > 0 {
			steps = strconv.Itoa(int(p.StepCount))
		}
		name := p.Name
		if p.Flags&param.IsHidden != 0 {
			name += dimStyle.Render(" (hidden)")
		}
		rows = append(rows, []string{
			p.ID,
			name,
			p.Kind.String(),
			rng,
			steps,
			p.FormatValue(p.DefaultValue),
		})
	}
	if len(rows) == 0 {
		return dimStyle.Render("no parameters configured") + "\n"
	}
	return renderTable(header, rows)
}
