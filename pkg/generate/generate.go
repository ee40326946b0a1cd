// Package generate creates synthetic island groups from simplex noise.
//
// Each group samples its own noise field. Points where the normalized
// elevation rises above the sea level are land; an island's population grows
// with how far its elevation sits above the sea. The main island is always
// placed at the centre of the map.
//
// Output is deterministic for a given seed.
package generate

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/matzehuels/islandlink/pkg/errors"
	islandio "github.com/matzehuels/islandlink/pkg/io"
	"github.com/matzehuels/islandlink/pkg/islands"
)

// Options holds generation parameters.
type Options struct {
	Groups        int     // Number of groups
	Sites         int     // Islands per group, main island included
	Size          float64 // Side length of the square map in km
	Seed          int64   // Random seed (0 = random)
	SeaLevel      float64 // Elevation threshold for land (0.0–1.0)
	MaxPopulation int     // Population of an island at the highest elevation
	MaxSites      int     // Upper bound for Sites (0 = errors.DefaultMaxSites)
}

// DefaultOptions returns a reasonable starting configuration.
func DefaultOptions() Options {
	return Options{
		Groups:        3,
		Sites:         12,
		Size:          100,
		SeaLevel:      0.55,
		MaxPopulation: 500,
	}
}

// Archipelago is the generated output together with the seed that produced it.
type Archipelago struct {
	Seed   int64
	Groups []islandio.Group
}

const (
	octaves     = 4
	frequency   = 0.03
	persistence = 0.5

	// attemptsPerSite bounds rejection sampling before giving up on a map
	// with too little land.
	attemptsPerSite = 400
)

// Generate creates opts.Groups island groups.
func Generate(opts Options) (Archipelago, error) {
	if err := opts.validate(); err != nil {
		return Archipelago{}, err
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	out := Archipelago{Seed: seed, Groups: make([]islandio.Group, 0, opts.Groups)}
	for k := 0; k < opts.Groups; k++ {
		records, err := generateGroup(opts, seed+int64(k)*7919)
		if err != nil {
			return Archipelago{}, errors.InGroup(k+1, err)
		}
		out.Groups = append(out.Groups, islandio.Group{
			Index:    k + 1,
			Declared: len(records),
			Records:  records,
		})
	}
	return out, nil
}

func (o Options) validate() error {
	if o.Groups < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "need at least 1 group, got %d", o.Groups)
	}
	if o.Sites < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "need at least 1 island per group, got %d", o.Sites)
	}
	if err := errors.ValidateGroupSize(o.Sites, o.MaxSites); err != nil {
		return err
	}
	if o.Size <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "map size must be positive, got %v", o.Size)
	}
	if o.SeaLevel < 0 || o.SeaLevel >= 1 {
		return errors.New(errors.ErrCodeInvalidInput, "sea level must be in [0, 1), got %v", o.SeaLevel)
	}
	if o.MaxPopulation < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max population must not be negative, got %d", o.MaxPopulation)
	}
	return nil
}

func generateGroup(opts Options, seed int64) ([]islands.Record, error) {
	noise := opensimplex.NewNormalized(seed)
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))

	centre := opts.Size / 2
	records := make([]islands.Record, 0, opts.Sites)
	records = append(records, islands.Record{
		X:          round1(centre),
		Y:          round1(centre),
		Population: population(opts, math.Max(elevation(noise, centre, centre), opts.SeaLevel)),
	})

	for attempts := 0; len(records) < opts.Sites; attempts++ {
		if attempts >= opts.Sites*attemptsPerSite {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"found only %d land sites above sea level %.2f", len(records), opts.SeaLevel)
		}
		x, y := rng.Float64()*opts.Size, rng.Float64()*opts.Size
		e := elevation(noise, x, y)
		if e <= opts.SeaLevel {
			continue
		}
		records = append(records, islands.Record{X: round1(x), Y: round1(y), Population: population(opts, e)})
	}
	return records, nil
}

// elevation layers several noise frequencies into a value in [0, 1].
func elevation(noise opensimplex.Noise, x, y float64) float64 {
	total, amplitude, maxVal, freq := 0.0, 1.0, 0.0, frequency
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*freq, y*freq) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		freq *= 2
	}
	return total / maxVal
}

func population(opts Options, e float64) int {
	height := (e - opts.SeaLevel) / (1 - opts.SeaLevel)
	return int(math.Round(height * height * float64(opts.MaxPopulation)))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Describe returns a one-line summary for titles and logs.
func (a Archipelago) Describe() string {
	sites := 0
	for _, g := range a.Groups {
		sites += len(g.Records)
	}
	return fmt.Sprintf("Generated archipelago (seed %d, %d groups, %d islands)", a.Seed, len(a.Groups), sites)
}
