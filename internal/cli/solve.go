package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/islandlink/pkg/errors"
	islandio "github.com/matzehuels/islandlink/pkg/io"
	"github.com/matzehuels/islandlink/pkg/pipeline"
)

// Report formats for the solve command.
const (
	reportText  = "text"
	reportTable = "table"
	reportJSON  = "json"
)

// runParams describes one pipeline run started from the command line.
type runParams struct {
	input     string // file path, or "" / "-" for stdin
	inputFmt  string // stdin format: text or json
	opts      pipeline.Options
	noCache   bool
	noHistory bool
}

func (p runParams) source() string {
	if p.input == "" || p.input == "-" {
		return "stdin"
	}
	return p.input
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		p           runParams
		report      string
		plot        string
		output      string
		labels      bool
		refresh     bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "solve [file]",
		Short: "Plan cable networks and report average delivery days",
		Long: `Solve reads island groups and prints one line per group:

  Island Group: 1 Average 3.75

The average is the population-weighted mean distance from each island to
the main island along the cable network. Input is read from the file, or
from stdin when no file (or "-") is given. Files ending in .json use the
JSON group format.

Solutions are cached, so solving the same group again is instant. Use
--plot to also write node-link drawings of every network.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				p.input = args[0]
			}
			switch report {
			case reportText, reportTable, reportJSON:
			default:
				return errors.New(errors.ErrCodeInvalidConfig, "invalid report format %q (must be text, table, or json)", report)
			}

			p.opts = c.pipelineOptions()
			p.opts.Refresh = refresh
			p.opts.Formats = parseFormats(plot)
			if cmd.Flags().Changed("labels") {
				p.opts.Labels = labels
			}
			if err := pipeline.ValidateFormats(p.opts.Formats); err != nil {
				return err
			}

			res, err := c.execute(cmd.Context(), cmd.InOrStdin(), p)
			if err != nil {
				// Groups solved before the failing one are still reported.
				if res != nil && len(res.Groups) > 0 {
					if werr := writeReport(cmd.OutOrStdout(), res, report); werr != nil {
						c.Logger.Warn("could not write partial report", "err", werr)
					}
				}
				return err
			}
			if err := writeReport(cmd.OutOrStdout(), res, report); err != nil {
				return err
			}
			if p.opts.WantsRender() {
				if err := c.saveArtifacts(output, p, res); err != nil {
					return err
				}
			}
			if interactive && len(res.Groups) > 0 {
				return browseGroups(cmd.OutOrStdout(), res.Groups)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&report, "format", "f", reportText, "report format: text, table, json")
	cmd.Flags().StringVar(&p.inputFmt, "input", pipeline.InputText, "stdin input format: text, json")
	cmd.Flags().StringVar(&plot, "plot", "", "also render plots: svg, png, pdf, dot (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "directory for plots (default from config, else current dir)")
	cmd.Flags().BoolVar(&labels, "labels", true, "label islands with index and population")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached solutions")
	cmd.Flags().BoolVar(&p.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&p.noHistory, "no-history", false, "do not record the run")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the solved groups")

	return cmd
}

// execute parses the input, runs the pipeline, and records the run. When
// the pipeline fails, the groups completed so far are returned with the
// error.
func (c *CLI) execute(ctx context.Context, stdin io.Reader, p runParams) (*pipeline.Result, error) {
	ctx = withLogger(ctx, c.Logger)

	runner, err := c.newRunner(ctx, p.noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	groups, err := c.readGroups(ctx, runner, stdin, p)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		printWarning("No island groups in %s", p.source())
		return &pipeline.Result{}, nil
	}
	c.Logger.Debug("parsed", "source", p.source(), "groups", len(groups), "refresh", p.opts.Refresh)

	var spinner *Spinner
	if p.opts.WantsRender() {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Solving and rendering %d groups...", len(groups)))
		spinner.Start()
	}

	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, groups, p.opts)
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Run failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return res, err
	}
	prog.done(fmt.Sprintf("Solved %d groups", len(res.Groups)))

	c.recordRun(ctx, p.source(), res, p.noHistory)
	return res, nil
}

func (c *CLI) readGroups(ctx context.Context, runner *pipeline.Runner, stdin io.Reader, p runParams) ([]islandio.Group, error) {
	if p.input == "" || p.input == "-" {
		return runner.Parse(ctx, stdin, "stdin", p.inputFmt, p.opts)
	}
	return runner.ParseFile(ctx, p.input, p.opts)
}

// recordRun stores res in the history database. Failures are logged and do
// not fail the command.
func (c *CLI) recordRun(ctx context.Context, source string, res *pipeline.Result, disabled bool) {
	db, err := c.openHistory(disabled)
	if err != nil {
		c.Logger.Warn("history unavailable", "err", err)
		return
	}
	if db == nil {
		return
	}
	defer db.Close()

	run, err := db.SaveRun(ctx, source, res)
	if err != nil {
		c.Logger.Warn("could not record run", "err", err)
		return
	}
	c.Logger.Debug("recorded run", "id", run.ID)
}

// saveArtifacts writes rendered plots and lists the files.
func (c *CLI) saveArtifacts(dir string, p runParams, res *pipeline.Result) error {
	if dir == "" {
		dir = c.Config.Render.OutputDir
	}
	paths, err := writeArtifacts(dir, p.input, res, p.opts.Formats)
	if err != nil {
		return err
	}
	printSuccess("Wrote %d files", len(paths))
	for _, path := range paths {
		printFile(path)
	}
	return nil
}

// writeReport prints res in the requested report format.
func writeReport(w io.Writer, res *pipeline.Result, format string) error {
	switch format {
	case reportJSON:
		return pipeline.WriteJSON(w, res)
	case reportTable:
		if len(res.Groups) == 0 {
			return nil
		}
		fmt.Fprintln(w, resultsTable(res.Groups))
		printStats(w, res.Stats)
		return nil
	default:
		return pipeline.WriteText(w, res)
	}
}
