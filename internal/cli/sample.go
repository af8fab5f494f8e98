package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	surveyio "github.com/matzehuels/surveyplot/pkg/io"
)

// sampleCommand creates the sample command.
func (c *CLI) sampleCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sample [dir]",
		Short: "Write example survey files",
		Long:  `Write one example survey per chart type into dir (default the current directory).`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			paths, err := writeSamples(dir, force)
			if err != nil {
				return err
			}
			printSuccess("Wrote %d sample surveys", len(paths))
			for _, p := range paths {
				printFile(p)
			}
			printNewline()
			printNextStep("Render one", fmt.Sprintf("%s render %s --type stacked", appName, paths[0]))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")

	return cmd
}

// writeSamples writes the example surveys into dir and returns their paths.
// Existing files are kept unless force is set.
func writeSamples(dir string, force bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	var paths []string
	for _, s := range surveyio.Samples() {
		path := filepath.Join(dir, s.File)
		if _, err := os.Stat(path); err == nil && !force {
			return paths, fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := surveyio.ExportJSON(s.Document, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
