package cache

// Keyer builds cache keys.
type Keyer interface {
	// BuildKey returns the key for the frame build of a label file.
	BuildKey(sourceHash string, opts BuildKeyOpts) string
}

// BuildKeyOpts holds everything besides the source text that changes a
// frame build.
type BuildKeyOpts struct {
	StepMS        float64 `json:"step_ms"`
	FormatVersion int     `json:"format_version"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// BuildKey implements Keyer.
func (DefaultKeyer) BuildKey(sourceHash string, opts BuildKeyOpts) string {
	return hashKey("build", sourceHash, opts)
}
