package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds "prefix:sha256(json(parts))".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// LayoutKeyOpts lists every option that changes a computed layout.
type LayoutKeyOpts struct {
	Width          float64 `json:"w"`
	Height         float64 `json:"h"`
	Charge         float64 `json:"charge,omitempty"`
	ChargePerSize  float64 `json:"cps,omitempty"`
	LinkDistance   float64 `json:"ld,omitempty"`
	LinkStrength   float64 `json:"ls,omitempty"`
	CenterStrength float64 `json:"cs,omitempty"`
	AlphaMin       float64 `json:"amin,omitempty"`
	AlphaDecay     float64 `json:"adecay,omitempty"`
	VelocityDecay  float64 `json:"vdecay,omitempty"`
	Theta          float64 `json:"theta,omitempty"`
	Seed           uint64  `json:"seed"`
	MaxTicks       int     `json:"max_ticks"`
	NodeRadius     float64 `json:"radius,omitempty"`
	Theme          string  `json:"theme,omitempty"`
	Scheme         string  `json:"scheme,omitempty"`
}

// ArtifactKeyOpts lists every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Theme       string  `json:"theme,omitempty"`
	Title       string  `json:"title,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
	Labels      bool    `json:"labels,omitempty"`
	Tooltip     bool    `json:"tooltip,omitempty"`
	Fit         bool    `json:"fit,omitempty"`
	Transparent bool    `json:"transparent,omitempty"`
	Directed    bool    `json:"directed,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the keyer used by the CLI.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// ScopedKeyer prefixes every key, giving callers separate namespaces in a
// shared cache.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
