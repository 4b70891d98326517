package list

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ulrichard/uttesla/cmd/root"
	"github.com/ulrichard/uttesla/session"
)

var namesOnly bool

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the vehicles of your account",
	Long: `List every vehicle registered to your Tesla account. Other products such as
Powerwalls are left out.

The index in the first column is what --vehicle expects.`,
	Example: `  # List all vehicles
  uttesla list

  # Only the names, one per line
  uttesla list --names`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := root.Ready(cmd.Context())
		if err != nil {
			return err
		}

		vehicles := a.Vehicles()
		if namesOnly {
			for _, v := range vehicles {
				fmt.Println(v.DisplayName)
			}
			return nil
		}

		printVehicles(vehicles)
		return nil
	},
}

func init() {
	ListCmd.Flags().BoolVar(&namesOnly, "names", false, "print only the display names")

	root.RootCmd.AddCommand(ListCmd)
}

func printVehicles(vehicles []session.Vehicle) {
	var rows [][]string
	for i, v := range vehicles {
		name := v.DisplayName
		if name == "" {
			name = "-"
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i), v.ID.String(), name})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers("INDEX", "ID", "NAME").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1)
			}
			baseStyle := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if col == 0 {
				return baseStyle.AlignHorizontal(lipgloss.Center)
			}
			return baseStyle
		}).
		Rows(rows...)

	fmt.Println(t)
}
