package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	islandio "github.com/matzehuels/islandlink/pkg/io"
	"github.com/matzehuels/islandlink/pkg/observability"
)

// Input formats accepted by [Runner.Parse].
const (
	InputText = "text"
	InputJSON = "json"
)

// ParseFile reads groups from path. The format follows the file extension.
func (r *Runner) ParseFile(ctx context.Context, path string, opts Options) ([]islandio.Group, error) {
	r.applyLogger(&opts)
	opts.SetSolveDefaults()
	start := time.Now()
	groups, err := islandio.ImportGroups(path, islandio.Options{MaxSites: opts.MaxSites})
	observability.Pipeline().OnParseComplete(ctx, path, len(groups), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	checkDeclared(opts.Logger, groups)
	return groups, nil
}

// Parse reads groups from rd in the given input format. source names the
// input in logs.
func (r *Runner) Parse(ctx context.Context, rd io.Reader, source, format string, opts Options) ([]islandio.Group, error) {
	r.applyLogger(&opts)
	opts.SetSolveDefaults()
	ioOpts := islandio.Options{MaxSites: opts.MaxSites}

	start := time.Now()
	var groups []islandio.Group
	var err error
	if format == InputJSON {
		groups, err = islandio.ReadGroupsJSON(rd, ioOpts)
	} else {
		groups, err = islandio.ReadGroups(rd, ioOpts)
	}
	observability.Pipeline().OnParseComplete(ctx, source, len(groups), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	checkDeclared(opts.Logger, groups)
	return groups, nil
}

// checkDeclared warns when a header announced a different island count than
// the group holds. The records are authoritative.
func checkDeclared(logger *log.Logger, groups []islandio.Group) {
	for _, g := range groups {
		if g.Declared != len(g.Records) {
			logger.Warn("island count differs from header",
				"group", g.Index,
				"declared", g.Declared,
				"actual", len(g.Records))
		}
	}
}
