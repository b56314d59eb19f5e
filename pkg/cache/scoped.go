package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one cache backend.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "glyphtools:api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer defaults to DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// BuildKey implements Keyer.
func (k *ScopedKeyer) BuildKey(sourceHash string, opts BuildKeyOpts) string {
	return k.prefix + k.inner.BuildKey(sourceHash, opts)
}
