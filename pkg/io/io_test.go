package io

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/islandlink/pkg/errors"
	"github.com/matzehuels/islandlink/pkg/islands"
)

const sample = `Island groups, April
Coordinates in kilometers.

2
0 0 0
3 4 10
0

Second group
3
0 0 0
0 3 1
1 3 3
0
`

func TestReadGroups(t *testing.T) {
	groups, err := ReadGroups(strings.NewReader(sample), Options{})
	if err != nil {
		t.Fatalf("ReadGroups: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	g := groups[1]
	if g.Index != 2 || g.Declared != 3 {
		t.Errorf("group 2: index=%d declared=%d", g.Index, g.Declared)
	}
	want := []islands.Record{{X: 0, Y: 0, Population: 0}, {X: 0, Y: 3, Population: 1}, {X: 1, Y: 3, Population: 3}}
	if len(g.Records) != len(want) {
		t.Fatalf("got %d records, want %d", len(g.Records), len(want))
	}
	for i := range want {
		if g.Records[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, g.Records[i], want[i])
		}
	}
}

func TestReadGroupsFractionalCoordinates(t *testing.T) {
	groups, err := ReadGroups(strings.NewReader("1\n1.5 -2.25 7\n0\n"), Options{})
	if err != nil {
		t.Fatalf("ReadGroups: %v", err)
	}
	if got := groups[0].Records[0]; got.X != 1.5 || got.Y != -2.25 || got.Population != 7 {
		t.Errorf("record = %+v", got)
	}
}

func TestReadGroupsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
		group int
	}{
		{"declared too large", "51\n0 0 1\n0\n", errors.ErrCodeGroupTooLarge, 1},
		{"actual too large", "2\n" + strings.Repeat("1 1 1\n", 51) + "0\n", errors.ErrCodeGroupTooLarge, 1},
		{"too many fields", "1\n0 0 1 9\n0\n", errors.ErrCodeInvalidRecord, 1},
		{"too few fields", "1\n0 0\n0\n", errors.ErrCodeInvalidRecord, 1},
		{"bad terminator", "1\n0 0 1\n5\n", errors.ErrCodeInvalidRecord, 1},
		{"eof inside group", "1\n0 0 1\n", errors.ErrCodeInvalidRecord, 1},
		{"bad number", "1\n0 zero 1\n0\n", errors.ErrCodeInvalidRecord, 1},
		{"negative population", "1\n0 0 -1\n0\n", errors.ErrCodeInvalidRecord, 1},
		{"fractional population", "1\n0 0 1.5\n0\n", errors.ErrCodeInvalidRecord, 1},
		{"empty group", "1\n0\n", errors.ErrCodeInvalidInput, 1},
		{"second group", "1\n0 0 1\n0\n1\n0 0\n0\n", errors.ErrCodeInvalidRecord, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGroups(strings.NewReader(tt.input), Options{})
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error %v, want code %s", err, tt.code)
			}
			if got := errors.GroupOf(err); got != tt.group {
				t.Errorf("group = %d, want %d", got, tt.group)
			}
		})
	}
}

func TestReadGroupsCustomMax(t *testing.T) {
	_, err := ReadGroups(strings.NewReader("4\n0 0 1\n0\n"), Options{MaxSites: 3})
	if !errors.Is(err, errors.ErrCodeGroupTooLarge) {
		t.Errorf("error %v, want GROUP_TOO_LARGE", err)
	}
}

func TestReadGroupsEmptyInput(t *testing.T) {
	groups, err := ReadGroups(strings.NewReader("nothing to see here\n"), Options{})
	if err != nil {
		t.Fatalf("ReadGroups: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("got %d groups, want 0", len(groups))
	}
}

func TestWriteGroupsRoundTrip(t *testing.T) {
	in, err := ReadGroups(strings.NewReader(sample), Options{})
	if err != nil {
		t.Fatal(err)
	}
	in[0].Name = "north"

	var buf bytes.Buffer
	if err := WriteGroups(&buf, "2017", in); err != nil {
		t.Fatalf("WriteGroups: %v", err)
	}
	out, err := ReadGroups(&buf, Options{})
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d groups, want %d (a digit-only title must not become a header)", len(out), len(in))
	}
	for i := range in {
		if len(out[i].Records) != len(in[i].Records) {
			t.Errorf("group %d: %d records, want %d", i+1, len(out[i].Records), len(in[i].Records))
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := []Group{{Name: "west", Records: []islands.Record{{X: 0, Y: 0, Population: 4}, {X: 2, Y: 1, Population: 9}}}}

	var buf bytes.Buffer
	if err := WriteGroupsJSON(&buf, in); err != nil {
		t.Fatalf("WriteGroupsJSON: %v", err)
	}
	out, err := ReadGroupsJSON(&buf, Options{})
	if err != nil {
		t.Fatalf("ReadGroupsJSON: %v", err)
	}
	if len(out) != 1 || out[0].Name != "west" || out[0].Index != 1 || len(out[0].Records) != 2 {
		t.Errorf("unexpected groups: %+v", out)
	}
}

func TestReadGroupsJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"malformed", `{"groups": [`, errors.ErrCodeInvalidFormat},
		{"empty group", `{"groups": [{"sites": []}]}`, errors.ErrCodeInvalidInput},
		{"negative population", `{"groups": [{"sites": [{"x": 0, "y": 0, "population": -2}]}]}`, errors.ErrCodeInvalidRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGroupsJSON(strings.NewReader(tt.input), Options{})
			if !errors.Is(err, tt.code) {
				t.Errorf("error %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestImportExportGroups(t *testing.T) {
	dir := t.TempDir()
	groups := []Group{{Records: []islands.Record{{X: 0, Y: 0, Population: 1}, {X: 5, Y: 5, Population: 2}}}}

	for _, name := range []string{"groups.txt", "groups.json"} {
		path := filepath.Join(dir, name)
		if err := ExportGroups(path, "generated", groups); err != nil {
			t.Fatalf("ExportGroups(%s): %v", name, err)
		}
		got, err := ImportGroups(path, Options{})
		if err != nil {
			t.Fatalf("ImportGroups(%s): %v", name, err)
		}
		if len(got) != 1 || len(got[0].Records) != 2 {
			t.Errorf("%s: unexpected groups %+v", name, got)
		}
	}

	if _, err := ImportGroups(filepath.Join(dir, "missing.txt"), Options{}); !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestSolutionRoundTrip(t *testing.T) {
	links := []islands.Link{islands.RootLink(), islands.UnassignedLink(), islands.LinkTo(1)}
	stats := islands.Stats{Iterations: 2, Commits: 1}

	data, err := MarshalSolution(links, stats)
	if err != nil {
		t.Fatalf("MarshalSolution: %v", err)
	}
	gotLinks, gotStats, err := UnmarshalSolution(data)
	if err != nil {
		t.Fatalf("UnmarshalSolution: %v", err)
	}
	for i := range links {
		if gotLinks[i] != links[i] {
			t.Errorf("link %d = %+v, want %+v", i, gotLinks[i], links[i])
		}
	}
	if gotStats != stats {
		t.Errorf("stats = %+v, want %+v", gotStats, stats)
	}
}
