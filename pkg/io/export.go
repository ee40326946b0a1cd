package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/islandlink/pkg/islands"
)

// WriteGroups encodes groups in the text format. The output can be read
// back with [ReadGroups].
func WriteGroups(w io.Writer, title string, groups []Group) error {
	bw := bufio.NewWriter(w)
	if title != "" {
		if isDigits(title) {
			title = "# " + title
		}
		fmt.Fprintln(bw, title)
	}
	for _, g := range groups {
		fmt.Fprintln(bw)
		if g.Name != "" {
			fmt.Fprintf(bw, "Island group %s\n", g.Name)
		}
		fmt.Fprintln(bw, len(g.Records))
		for _, r := range g.Records {
			fmt.Fprintf(bw, "%s %s %d\n", fmtCoord(r.X), fmtCoord(r.Y), r.Population)
		}
		fmt.Fprintln(bw, 0)
	}
	return bw.Flush()
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteGroupsJSON encodes groups in the JSON format.
func WriteGroupsJSON(w io.Writer, groups []Group) error {
	out := groupsFile{Groups: make([]GroupInput, len(groups))}
	for i, g := range groups {
		out.Groups[i] = GroupInput{Name: g.Name, Sites: g.Records}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportGroups writes groups to path, as JSON when the path ends in .json
// and in the text format otherwise.
func ExportGroups(path, title string, groups []Group) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if isJSONPath(path) {
		err = WriteGroupsJSON(f, groups)
	} else {
		err = WriteGroups(f, title, groups)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// solution is the serialized link structure of a solved group.
type solution struct {
	// Parents holds one entry per island: -1 for the main island, 0 for an
	// island attached directly to it, the parent's index otherwise.
	Parents []int         `json:"parents"`
	Stats   islands.Stats `json:"stats"`
}

// MarshalSolution encodes the links of a solved group together with the
// search statistics.
func MarshalSolution(links []islands.Link, stats islands.Stats) ([]byte, error) {
	s := solution{Parents: make([]int, len(links)), Stats: stats}
	for i, l := range links {
		switch l.Kind {
		case islands.LinkRoot:
			s.Parents[i] = -1
		case islands.LinkUnassigned:
			s.Parents[i] = islands.RootIndex
		default:
			s.Parents[i] = l.Target
		}
	}
	return json.Marshal(s)
}

// UnmarshalSolution decodes data written by [MarshalSolution].
func UnmarshalSolution(data []byte) ([]islands.Link, islands.Stats, error) {
	var s solution
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, islands.Stats{}, fmt.Errorf("decode solution: %w", err)
	}
	links := make([]islands.Link, len(s.Parents))
	for i, p := range s.Parents {
		switch {
		case p < 0:
			links[i] = islands.RootLink()
		case p == islands.RootIndex:
			links[i] = islands.UnassignedLink()
		default:
			links[i] = islands.LinkTo(p)
		}
	}
	return links, s.Stats, nil
}
