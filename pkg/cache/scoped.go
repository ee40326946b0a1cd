package cache

// ScopedKeyer wraps a Keyer with a prefix so that several frontends can share
// one backend without sharing entries.
//
//	apiKeyer := NewScopedKeyer(NewDefaultKeyer(), "api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SolutionKey generates a prefixed solution key.
func (k *ScopedKeyer) SolutionKey(recordsHash string, opts SolutionKeyOpts) string {
	return k.prefix + k.inner.SolutionKey(recordsHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(viewHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(viewHash, opts)
}
