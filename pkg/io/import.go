package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/islandlink/pkg/errors"
	"github.com/matzehuels/islandlink/pkg/islands"
)

// Group is one parsed island group.
type Group struct {
	// Index is the 1-based position of the group in its source.
	Index int `json:"index"`
	// Name is an optional label (JSON input only).
	Name string `json:"name,omitempty"`
	// Declared is the island count announced by the group header, or the
	// record count when the source has no header.
	Declared int `json:"declared"`
	// Records lists the islands, main island first.
	Records []islands.Record `json:"sites"`
}

// Options configures reading.
type Options struct {
	// MaxSites bounds declared and actual group sizes. Zero selects
	// errors.DefaultMaxSites.
	MaxSites int
}

func (o Options) maxSites() int {
	if o.MaxSites <= 0 {
		return errors.DefaultMaxSites
	}
	return o.MaxSites
}

// ReadGroups decodes every group in the text format from r.
func ReadGroups(r io.Reader, opts Options) ([]Group, error) {
	sc := bufio.NewScanner(r)
	p := &parser{sc: sc, max: opts.maxSites()}

	var groups []Group
	for {
		declared, ok, err := p.nextHeader()
		if err != nil {
			return nil, err
		}
		if !ok {
			return groups, nil
		}
		idx := len(groups) + 1
		if err := errors.ValidateGroupSize(declared, p.max); err != nil {
			return nil, errors.InGroup(idx, errors.Wrap(errors.ErrCodeGroupTooLarge, err, "line %d", p.line))
		}
		records, err := p.readGroup()
		if err != nil {
			return nil, errors.InGroup(idx, err)
		}
		if len(records) == 0 {
			return nil, errors.InGroup(idx, errors.New(errors.ErrCodeInvalidInput, "line %d: group has no islands", p.line))
		}
		groups = append(groups, Group{Index: idx, Declared: declared, Records: records})
	}
}

type parser struct {
	sc   *bufio.Scanner
	line int
	max  int
}

func (p *parser) scan() (string, bool, error) {
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", false, fmt.Errorf("read: %w", err)
		}
		return "", false, nil
	}
	p.line++
	return strings.TrimSpace(p.sc.Text()), true, nil
}

// nextHeader skips to the next digit-only line and returns its value.
func (p *parser) nextHeader() (int, bool, error) {
	for {
		text, ok, err := p.scan()
		if err != nil || !ok {
			return 0, false, err
		}
		if !isDigits(text) {
			continue
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			return 0, false, errors.New(errors.ErrCodeGroupTooLarge, "line %d: group size %q out of range", p.line, text)
		}
		return n, true, nil
	}
}

func (p *parser) readGroup() ([]islands.Record, error) {
	var records []islands.Record
	for {
		text, ok, err := p.scan()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidRecord, "line %d: input ends inside group", p.line)
		}
		fields := strings.Fields(text)
		switch len(fields) {
		case 0:
			continue
		case 1:
			if fields[0] == "0" {
				return records, nil
			}
			return nil, errors.New(errors.ErrCodeInvalidRecord, "line %d: expected group terminator 0, got %q", p.line, fields[0])
		case 3:
		default:
			return nil, errors.New(errors.ErrCodeInvalidRecord, "line %d: expected 3 fields, got %d", p.line, len(fields))
		}

		rec, err := parseRecord(fields)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "line %d", p.line)
		}
		records = append(records, rec)
		if err := errors.ValidateGroupSize(len(records), p.max); err != nil {
			return nil, errors.Wrap(errors.ErrCodeGroupTooLarge, err, "line %d", p.line)
		}
	}
}

func parseRecord(fields []string) (islands.Record, error) {
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return islands.Record{}, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return islands.Record{}, fmt.Errorf("y: %w", err)
	}
	if err := errors.ValidateCoordinate(x, y); err != nil {
		return islands.Record{}, err
	}
	pop, err := strconv.Atoi(fields[2])
	if err != nil {
		return islands.Record{}, fmt.Errorf("population: %w", err)
	}
	if err := errors.ValidatePopulation(pop); err != nil {
		return islands.Record{}, err
	}
	return islands.Record{X: x, Y: y, Population: pop}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type groupsFile struct {
	Groups []GroupInput `json:"groups"`
}

// GroupInput is one group as supplied in JSON, before validation.
type GroupInput struct {
	Name  string           `json:"name,omitempty"`
	Sites []islands.Record `json:"sites" validate:"required,min=1,dive"`
}

// ReadGroupsJSON decodes groups from the JSON format.
func ReadGroupsJSON(r io.Reader, opts Options) ([]Group, error) {
	var data groupsFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode groups")
	}
	return ToGroups(data.Groups, opts)
}

// ToGroups validates already-decoded site lists. It is shared by the JSON
// reader and the HTTP API.
func ToGroups(in []GroupInput, opts Options) ([]Group, error) {
	max := opts.maxSites()
	groups := make([]Group, 0, len(in))
	for i, jg := range in {
		idx := i + 1
		if len(jg.Sites) == 0 {
			return nil, errors.InGroup(idx, errors.New(errors.ErrCodeInvalidInput, "group has no islands"))
		}
		if err := errors.ValidateGroupSize(len(jg.Sites), max); err != nil {
			return nil, errors.InGroup(idx, err)
		}
		for j, rec := range jg.Sites {
			if err := errors.ValidateCoordinate(rec.X, rec.Y); err != nil {
				return nil, errors.InGroup(idx, errors.Wrap(errors.ErrCodeInvalidRecord, err, "island %d", j))
			}
			if err := errors.ValidatePopulation(rec.Population); err != nil {
				return nil, errors.InGroup(idx, errors.Wrap(errors.ErrCodeInvalidRecord, err, "island %d", j))
			}
		}
		groups = append(groups, Group{Index: idx, Name: jg.Name, Declared: len(jg.Sites), Records: jg.Sites})
	}
	return groups, nil
}

// ImportGroups reads groups from the file at path. Files ending in .json
// use the JSON format, everything else the text format.
func ImportGroups(path string, opts Options) ([]Group, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if isJSONPath(path) {
		return ReadGroupsJSON(f, opts)
	}
	return ReadGroups(f, opts)
}

func isJSONPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
