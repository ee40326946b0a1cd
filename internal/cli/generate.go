package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/islandlink/pkg/generate"
	islandio "github.com/matzehuels/islandlink/pkg/io"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generate.DefaultOptions()
	var (
		output string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic island groups",
		Long: `Generate samples island groups from layered simplex noise: islands appear
where the terrain rises above sea level, and higher land carries more
inhabitants. The main island of every group sits at the map centre.

The same seed always produces the same groups. Output is the text group
format on stdout, or a file given with --output (.json selects JSON).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.MaxSites = c.Config.MaxSites
			arch, err := generate.Generate(opts)
			if err != nil {
				return err
			}
			c.Logger.Debug("generated", "seed", arch.Seed, "groups", len(arch.Groups))

			title := arch.Describe()
			if output == "" {
				if asJSON {
					return islandio.WriteGroupsJSON(cmd.OutOrStdout(), arch.Groups)
				}
				return islandio.WriteGroups(cmd.OutOrStdout(), title, arch.Groups)
			}
			if err := islandio.ExportGroups(output, title, arch.Groups); err != nil {
				return err
			}
			printSuccess("%s", title)
			printFile(output)
			printNextStep("Solve it", "islandlink solve "+output)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Groups, "groups", "n", opts.Groups, "number of island groups")
	cmd.Flags().IntVarP(&opts.Sites, "islands", "s", opts.Sites, "islands per group, main island included")
	cmd.Flags().Float64Var(&opts.Size, "size", opts.Size, "side length of the map in km")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().Float64Var(&opts.SeaLevel, "sea-level", opts.SeaLevel, "terrain height below which there is water (0-1)")
	cmd.Flags().IntVar(&opts.MaxPopulation, "max-population", opts.MaxPopulation, "inhabitants of the highest island")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write JSON to stdout")

	return cmd
}
