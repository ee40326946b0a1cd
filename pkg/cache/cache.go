// Package cache stores solved island groups and rendered artifacts so that
// re-running the same input skips the search.
//
// A [Cache] is a plain byte store with per-entry TTLs. [Keyer] derives keys
// from the content hash of a group's records, so two inputs with identical
// islands share a solution regardless of file name or group position.
//
// Backends:
//   - [FileCache]: JSON entries under the XDG cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance (API deployments)
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is a byte store keyed by string.
//
// Get reports a miss with hit == false and a nil error. Implementations must
// be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs per entry kind.
const (
	// TTLSolution applies to solved link structures. The search is
	// deterministic, so entries only expire to bound disk usage.
	TTLSolution = 30 * 24 * time.Hour

	// TTLArtifact applies to rendered SVG/PNG/PDF/DOT output.
	TTLArtifact = 7 * 24 * time.Hour
)

// SolverVersion is mixed into solution keys. Bump it whenever the search
// could produce a different tree for the same input.
const SolverVersion = "esau-williams/1"

// SolutionKeyOpts are the inputs besides the records that affect a solution.
type SolutionKeyOpts struct {
	MaxSites int
}

// ArtifactKeyOpts are the render settings that affect an artifact.
type ArtifactKeyOpts struct {
	Format string
	Title  string
	Labels bool
	Scale  float64
}

// Keyer derives cache keys.
type Keyer interface {
	// SolutionKey returns the key for a solved group given the hash of its
	// records.
	SolutionKey(recordsHash string, opts SolutionKeyOpts) string
	// ArtifactKey returns the key for a rendered group given the hash of its
	// solved view.
	ArtifactKey(viewHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SolutionKey implements [Keyer].
func (DefaultKeyer) SolutionKey(recordsHash string, opts SolutionKeyOpts) string {
	return hashKey("solution", SolverVersion, recordsHash, opts.MaxSites)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(viewHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", viewHash, opts.Format, opts.Title, opts.Labels, opts.Scale)
}
