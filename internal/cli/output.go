package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/islandlink/pkg/pipeline"
)

// artifactName returns the file name for one group's artifact, e.g.
// "groups-2.svg" for input "groups.txt".
func artifactName(input string, group int, format string) string {
	base := "stdin"
	if input != "" && input != "-" {
		base = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	return fmt.Sprintf("%s-%d.%s", base, group, format)
}

// writeArtifacts writes every rendered artifact into dir and returns the
// written paths in group and format order.
func writeArtifacts(dir, input string, res *pipeline.Result, formats []string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var paths []string
	for _, g := range res.Groups {
		for _, format := range formats {
			data, ok := g.Artifacts[format]
			if !ok {
				continue
			}
			path := filepath.Join(dir, artifactName(input, g.Index, format))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return paths, fmt.Errorf("write %s: %w", path, err)
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}
