package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/islandlink/pkg/pipeline"
	"github.com/matzehuels/islandlink/pkg/render"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		p       runParams
		formats string
		output  string
		labels  bool
		refresh bool
		group   int
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Draw the cable network of every island group",
		Long: `Render solves the island groups and writes one node-link drawing per
group. Islands sit at their coordinates, node size grows with population,
and the main island is drawn as a box.

Formats: svg and dot need nothing else; png and pdf convert the SVG with
rsvg-convert, which must be on PATH.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				p.input = args[0]
			}
			p.opts = c.pipelineOptions()
			p.opts.Refresh = refresh
			p.opts.Formats = parseFormats(formats)
			if len(p.opts.Formats) == 0 {
				p.opts.Formats = c.Config.Render.Formats
			}
			if len(p.opts.Formats) == 0 {
				p.opts.Formats = []string{pipeline.FormatSVG}
			}
			if cmd.Flags().Changed("labels") {
				p.opts.Labels = labels
			}
			if err := pipeline.ValidateFormats(p.opts.Formats); err != nil {
				return err
			}
			for _, f := range p.opts.Formats {
				if (f == pipeline.FormatPNG || f == pipeline.FormatPDF) && !render.Available() {
					printWarning("rsvg-convert not found; %s output will fail", f)
					printNextStep("Install it with", "brew install librsvg  # or apt install librsvg2-bin")
					break
				}
			}

			res, err := c.execute(cmd.Context(), cmd.InOrStdin(), p)
			if err != nil {
				return err
			}
			if group > 0 {
				res = onlyGroup(res, group)
				if len(res.Groups) == 0 {
					return fmt.Errorf("no island group %d in %s", group, p.source())
				}
			}
			if err := c.saveArtifacts(output, p, res); err != nil {
				return err
			}
			for _, g := range res.Groups {
				printDetail("%s · %d islands · %s", g.String(), g.Sites, cacheLabel(g.CacheHit))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formats, "format", "f", "", "output format(s): svg, png, pdf, dot (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default from config, else current dir)")
	cmd.Flags().StringVar(&p.inputFmt, "input", pipeline.InputText, "stdin input format: text, json")
	cmd.Flags().BoolVar(&labels, "labels", true, "label islands with index and population")
	cmd.Flags().IntVarP(&group, "group", "g", 0, "write only this group (1-based)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached solutions")
	cmd.Flags().BoolVar(&p.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&p.noHistory, "no-history", false, "do not record the run")

	return cmd
}

// onlyGroup returns a copy of res restricted to the group with the given index.
func onlyGroup(res *pipeline.Result, index int) *pipeline.Result {
	out := &pipeline.Result{Stats: res.Stats}
	for _, g := range res.Groups {
		if g.Index == index {
			out.Groups = append(out.Groups, g)
		}
	}
	return out
}
