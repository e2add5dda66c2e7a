package cache

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey returns the key of a layout computed from an input document.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
	// ArtifactKey returns the key of a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists everything besides the input that changes a layout.
type LayoutKeyOpts struct {
	Threshold float64 `json:"threshold"`
	Settings  any     `json:"settings"`
}

// ArtifactKeyOpts lists everything besides the layout that changes an
// artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Settings any    `json:"settings"`
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
