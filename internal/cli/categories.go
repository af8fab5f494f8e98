package cli

import (
	"encoding/csv"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	surveyio "github.com/matzehuels/surveyplot/pkg/io"
)

// categoriesCommand creates the categories command.
func (c *CLI) categoriesCommand() *cobra.Command {
	var (
		pick     bool
		selected []string
	)

	cmd := &cobra.Command{
		Use:   "categories [file]",
		Short: "List the categories of a survey file",
		Long: `List the categories of a survey file, one per line.

With --pick an interactive checklist opens and the chosen categories are
printed as a value for render --select. Names containing commas or quotes
are quoted the way --select parses them:

  surveyplot render survey.json --select "$(surveyplot categories survey.json --pick)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := surveyio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !pick {
				for _, name := range doc.CategoryNames {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			p := tea.NewProgram(NewCategoryPickerModel(doc.CategoryNames, selected), tea.WithOutput(cmd.ErrOrStderr()))
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("category picker: %w", err)
			}
			m, ok := final.(CategoryPickerModel)
			if !ok || !m.Confirmed {
				c.Logger.Warn("selection cancelled")
				return nil
			}
			value, err := selectValue(m.Selected())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, value)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&pick, "pick", "p", false, "choose categories interactively")
	cmd.Flags().StringSliceVarP(&selected, "select", "s", nil, "categories checked when the picker opens")

	return cmd
}

// selectValue joins category names into one --select value. String slice
// flags read their value as a CSV record, so names containing commas are
// quoted rather than joined verbatim.
func selectValue(names []string) (string, error) {
	if len(names) == 0 {
		return "", nil
	}
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(names); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}
