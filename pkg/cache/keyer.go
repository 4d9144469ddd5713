package cache

// Key type names passed to observability hooks.
const (
	KeyTypeLayout   = "layout"
	KeyTypeArtifact = "artifact"
)

// LayoutKeyOpts holds every option that changes the result of a layout run.
type LayoutKeyOpts struct {
	Direction  string  `json:"direction"`
	NodeWidth  float64 `json:"node_width"`
	NodeHeight float64 `json:"node_height"`
	RankSep    float64 `json:"rank_sep"`
	NodeSep    float64 `json:"node_sep"`
	Iterations int     `json:"iterations"`
}

// ArtifactKeyOpts holds the options of a rendered export.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey is the key of the positions computed for a graph. graphHash
	// covers the node IDs and edges that feed the layout.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey is the key of a rendered document.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces keys of the form "type:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return typedKey(KeyTypeLayout, graphHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return typedKey(KeyTypeArtifact, docHash, opts)
}

type prefixKeyer struct {
	Keyer
	prefix string
}

// WithPrefix prepends prefix to every key of inner, so deployments sharing
// one Redis do not collide. An empty prefix returns inner; a nil inner uses
// the default keyer.
//
//	keyer := cache.WithPrefix(cache.NewDefaultKeyer(), "archflow:staging:")
func WithPrefix(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if prefix == "" {
		return inner
	}
	return prefixKeyer{Keyer: inner, prefix: prefix}
}

func (k prefixKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.Keyer.LayoutKey(graphHash, opts)
}

func (k prefixKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.Keyer.ArtifactKey(docHash, opts)
}
