package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
)

func triangle() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{
			{ID: "a", Group: graph.Group("1")},
			{ID: "b", Group: graph.Group("1"), Size: 20},
			{ID: "c", Group: graph.Group("2"), Label: "Charlie"},
		},
		Links: []graph.Link{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c", Weight: 4},
			{Source: "c", Target: "a"},
		},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"json", false},
		{"dot", false},
		{"dot-svg", false},
		{"dot-png", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && errors.GetCode(err) != errors.ErrCodeInvalidFormat {
			t.Errorf("ValidateFormat(%q) code = %v", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestExtension(t *testing.T) {
	for format, want := range map[string]string{
		FormatSVG:    ".svg",
		FormatDOT:    ".dot",
		FormatDOTSVG: ".dot.svg",
		FormatDOTPNG: ".dot.png",
	} {
		if got := Extension(format); got != want {
			t.Errorf("Extension(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestSetDefaults(t *testing.T) {
	opts := Options{}
	opts.SetDefaults()

	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("size = %vx%v, want %vx%v", opts.Width, opts.Height, DefaultWidth, DefaultHeight)
	}
	if opts.ChargePerSize != DefaultChargePerSize {
		t.Errorf("ChargePerSize = %v, want %v", opts.ChargePerSize, DefaultChargePerSize)
	}
	if opts.MaxTicks != DefaultMaxTicks {
		t.Errorf("MaxTicks = %d, want %d", opts.MaxTicks, DefaultMaxTicks)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed = %d, want %d", opts.Seed, DefaultSeed)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Theme != "light" || opts.Scheme != "category10" {
		t.Errorf("theme/scheme = %q/%q", opts.Theme, opts.Scheme)
	}
	if !*opts.Zoom || !*opts.Drag || !*opts.Tooltip || !*opts.Animate {
		t.Error("interaction and animation should default to enabled")
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	opts := Options{Charge: -50, Zoom: Bool(false), Width: 300}
	opts.SetDefaults()

	if opts.ChargePerSize != 0 {
		t.Errorf("ChargePerSize = %v, want 0 with a constant charge", opts.ChargePerSize)
	}
	if *opts.Zoom {
		t.Error("explicit zoom=false was overridden")
	}
	if opts.Width != 300 {
		t.Errorf("Width = %v, want 300", opts.Width)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"negative width", Options{Width: -1}, errors.ErrCodeInvalidDimensions},
		{"unknown theme", Options{Theme: "neon"}, errors.ErrCodeInvalidTheme},
		{"unknown scheme", Options{Scheme: "rainbow"}, errors.ErrCodeInvalidColor},
		{"unknown format", Options{Formats: []string{"pdf"}}, errors.ErrCodeInvalidFormat},
		{"inverted zoom range", Options{MinScale: 5, MaxScale: 2}, errors.ErrCodeInvalidScale},
		{"negative png scale", Options{Scale: -1}, errors.ErrCodeInvalidScale},
		{"negative max ticks", Options{MaxTicks: -3}, errors.ErrCodeInvalidConfig},
		{"alpha decay of one", Options{AlphaDecay: 1}, errors.ErrCodeInvalidConfig},
		{"negative radius", Options{NodeRadius: -2}, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if err == nil {
				t.Fatal("Validate() succeeded, want error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (%v)", got, tt.code, err)
			}
			if !errors.IsConfiguration(err) && tt.code != errors.ErrCodeInvalidFormat {
				t.Errorf("IsConfiguration(%v) = false", err)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Theme: "dark"}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	width, theme := opts.Width, opts.Theme

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Width != width || opts.Theme != theme {
		t.Error("options changed on second call")
	}
}

func TestForceConfigChargeRule(t *testing.T) {
	opts := Options{}
	opts.SetDefaults()
	cfg := opts.ForceConfig()

	if got := cfg.Charge(&graph.Node{}); got != -180 {
		t.Errorf("charge(size unset) = %v, want -180", got)
	}
	if got := cfg.Charge(&graph.Node{Size: 20}); got != -300 {
		t.Errorf("charge(size 20) = %v, want -300", got)
	}

	opts = Options{Charge: -50, LinkDistance: 80}
	opts.SetDefaults()
	cfg = opts.ForceConfig()
	if got := cfg.Charge(&graph.Node{Size: 20}); got != -50 {
		t.Errorf("constant charge = %v, want -50", got)
	}
	if got := cfg.LinkDistance(&graph.Link{Distance: 5}); got != 80 {
		t.Errorf("link distance = %v, want 80", got)
	}
	if cfg.LinkStrength != nil {
		t.Error("unset link strength should leave the degree default")
	}
}

func TestForceConfigTheta(t *testing.T) {
	tests := []struct {
		name  string
		theta float64
		want  float64
	}{
		{"unset uses default", 0, force.DefaultTheta},
		{"negative selects exact pairwise", -1, -1},
		{"explicit", 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Theta: tt.theta}
			if err := opts.Validate(); err != nil {
				t.Fatalf("Validate() = %v", err)
			}
			sim, err := force.New(graph.Graph{Nodes: []graph.Node{{ID: "a"}}}, opts.ForceConfig())
			if err != nil {
				t.Fatalf("force.New() = %v", err)
			}
			if got := sim.Config().Theta; got != tt.want {
				t.Errorf("theta = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInteractAndEngineOptions(t *testing.T) {
	opts := Options{Zoom: Bool(false), MaxScale: 4, Animate: Bool(false), NodeRadius: 6}
	eo, err := opts.EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions() error: %v", err)
	}
	if eo.Interact.Zoom || !eo.Interact.Drag || !eo.Interact.Tooltip {
		t.Errorf("interact flags = %+v", eo.Interact)
	}
	if eo.Interact.MaxScale != 4 {
		t.Errorf("MaxScale = %v, want 4", eo.Interact.MaxScale)
	}
	if eo.Render.Animate {
		t.Error("animation should be disabled")
	}
	if got := eo.Render.NodeRadius(&graph.Node{Size: 30}); got != 6 {
		t.Errorf("radius = %v, want 6", got)
	}
	if eo.Force.Width != DefaultWidth {
		t.Errorf("force width = %v", eo.Force.Width)
	}
	if eo.Logger == nil {
		t.Error("engine logger not set")
	}

	bad := Options{Theme: "nope"}
	if _, err := bad.EngineOptions(); err == nil {
		t.Error("EngineOptions() accepted an unknown theme")
	}
}

func TestRunnerLayout(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	l, err := r.Layout(context.Background(), triangle(), Options{})
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if !l.Converged {
		t.Errorf("layout did not converge after %d ticks", l.Ticks)
	}
	if l.Ticks == 0 || l.Ticks > DefaultMaxTicks {
		t.Errorf("ticks = %d", l.Ticks)
	}
	if l.Width != DefaultWidth || len(l.Nodes) != 3 || len(l.Links) != 3 {
		t.Errorf("layout = %+v", l)
	}
	if l.Nodes[0].Radius != graph.DefaultNodeSize || l.Nodes[1].Radius != 20 {
		t.Errorf("radii = %v, %v", l.Nodes[0].Radius, l.Nodes[1].Radius)
	}
	if l.Nodes[0].Color == "" || l.Nodes[0].Color != l.Nodes[1].Color || l.Nodes[0].Color == l.Nodes[2].Color {
		t.Errorf("group colors = %q %q %q", l.Nodes[0].Color, l.Nodes[1].Color, l.Nodes[2].Color)
	}
}

func TestRunnerLayoutDeterministic(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	a, err := r.Layout(context.Background(), triangle(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Layout(context.Background(), triangle(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Nodes {
		if a.Nodes[i].X != b.Nodes[i].X || a.Nodes[i].Y != b.Nodes[i].Y {
			t.Errorf("node %s moved between runs", a.Nodes[i].ID)
		}
	}
}

func TestRunnerLayoutTickLimit(t *testing.T) {
	l, err := NewRunner(nil, nil, nil).Layout(context.Background(), triangle(), Options{MaxTicks: 5})
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if l.Ticks != 5 || l.Converged {
		t.Errorf("ticks = %d converged = %v, want 5 and false", l.Ticks, l.Converged)
	}
}

func TestRunnerLayoutCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil, nil, nil).Layout(ctx, triangle(), Options{})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunnerLayoutInvalidGraph(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "a"}},
		Links: []graph.Link{{Source: "a", Target: "missing"}},
	}
	_, err := NewRunner(nil, nil, nil).Layout(context.Background(), g, Options{})
	if errors.GetCode(err) != errors.ErrCodeUnresolvedLink {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeUnresolvedLink)
	}
}

func TestExecute(t *testing.T) {
	opts := Options{
		Formats: []string{FormatSVG, FormatPNG, FormatJSON, FormatDOT},
		Title:   "triangle",
		Labels:  true,
		Scale:   1,
	}
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), triangle(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.Stats.NodeCount != 3 || res.Stats.LinkCount != 3 || !res.Stats.Converged {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.GraphHash == "" {
		t.Error("GraphHash is empty")
	}
	if len(res.Artifacts) != 4 {
		t.Fatalf("artifacts = %d, want 4", len(res.Artifacts))
	}

	svg := string(res.Artifacts[FormatSVG])
	for _, want := range []string{"<svg", "<title>triangle</title>", "Charlie", ".node:hover"} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(res.Artifacts[FormatPNG]))
	if err != nil {
		t.Fatalf("decode PNG: %v", err)
	}
	if cfg.Width != int(DefaultWidth) || cfg.Height != int(DefaultHeight) {
		t.Errorf("PNG size = %dx%d", cfg.Width, cfg.Height)
	}

	if !graph.IsLayout(res.Artifacts[FormatJSON]) {
		t.Error("JSON artifact is not a layout")
	}

	dot := string(res.Artifacts[FormatDOT])
	if !strings.HasPrefix(dot, "graph G {") || !strings.Contains(dot, `"a" -- "b"`) {
		t.Errorf("DOT = %s", dot)
	}
}

type recordingHooks struct {
	mu     sync.Mutex
	starts []string
	sizes  map[string]int
}

func (h *recordingHooks) OnRenderStart(_ context.Context, format string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts = append(h.starts, format)
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, format string, size int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sizes[format] = size
}

func TestRenderHooks(t *testing.T) {
	hooks := &recordingHooks{sizes: map[string]int{}}
	observability.SetRenderHooks(hooks)
	t.Cleanup(observability.Reset)

	r := NewRunner(nil, nil, nil)
	l, err := r.Layout(context.Background(), triangle(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	arts, err := r.Render(context.Background(), l, Options{Formats: []string{FormatSVG, FormatJSON}})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if len(hooks.starts) != 2 || hooks.starts[0] != FormatSVG || hooks.starts[1] != FormatJSON {
		t.Errorf("starts = %v", hooks.starts)
	}
	if hooks.sizes[FormatSVG] != len(arts[FormatSVG]) {
		t.Errorf("reported size %d, artifact %d", hooks.sizes[FormatSVG], len(arts[FormatSVG]))
	}
}

func TestRenderFromLayoutData(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	l, err := r.Layout(context.Background(), triangle(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	data, err := graph.MarshalLayout(l)
	if err != nil {
		t.Fatal(err)
	}

	arts, err := RenderFromLayoutData(context.Background(), data, Options{Theme: "dark"})
	if err != nil {
		t.Fatalf("RenderFromLayoutData() error: %v", err)
	}
	if !strings.Contains(string(arts[FormatSVG]), "#1a1a1a") {
		t.Error("dark theme background missing")
	}

	if _, err := RenderFromLayoutData(context.Background(), []byte("{"), Options{}); err == nil {
		t.Error("malformed layout accepted")
	}
}

func TestRenderFitsView(t *testing.T) {
	l := graph.Layout{
		Width: 100, Height: 100,
		Nodes: []graph.PlacedNode{
			{ID: "a", X: -400, Y: 50, Radius: 10},
			{ID: "b", X: 500, Y: 50, Radius: 10},
		},
	}
	arts, err := NewRunner(nil, nil, nil).Render(context.Background(), l, Options{Fit: true})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if strings.Contains(string(arts[FormatSVG]), `cx="-400"`) {
		t.Error("fit did not transform node positions")
	}
}

func TestGraphFromLayout(t *testing.T) {
	l := graph.Layout{
		Width: 100, Height: 100,
		Nodes: []graph.PlacedNode{
			{ID: "a", X: 10, Y: 20, Radius: 5, Pinned: true},
			{ID: "b", X: 30, Y: 40, Radius: 12, Label: "Bee"},
		},
		Links: []graph.PlacedLink{{Source: "a", Target: "b", Width: 2}},
	}
	g := GraphFromLayout(l)
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	a := g.Nodes[0]
	if *a.X != 10 || *a.Y != 20 || !a.Pinned() || a.Size != 5 {
		t.Errorf("node a = %+v", a)
	}
	if g.Nodes[1].Pinned() || g.Nodes[1].Label != "Bee" {
		t.Errorf("node b = %+v", g.Nodes[1])
	}
	if g.Links[0].StrokeWidth() != 2 {
		t.Errorf("link width = %v, want 2", g.Links[0].StrokeWidth())
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	graphPath := filepath.Join(dir, "data.json")
	if err := graph.WriteGraphFile(triangle(), graphPath); err != nil {
		t.Fatal(err)
	}
	in, err := Load(graphPath)
	if err != nil {
		t.Fatalf("Load(graph) error: %v", err)
	}
	if in.IsLayout() || len(in.Graph.Nodes) != 3 || in.Name() != "data" {
		t.Errorf("input = %+v name %q", in, in.Name())
	}

	yamlPath := filepath.Join(dir, "data.yaml")
	yamlData := "nodes:\n  - id: a\n  - id: b\nlinks:\n  - source: a\n    target: b\n"
	if err := os.WriteFile(yamlPath, []byte(yamlData), 0o644); err != nil {
		t.Fatal(err)
	}
	in, err = Load(yamlPath)
	if err != nil {
		t.Fatalf("Load(yaml) error: %v", err)
	}
	if len(in.Graph.Links) != 1 {
		t.Errorf("yaml links = %d", len(in.Graph.Links))
	}

	l, err := NewRunner(nil, nil, nil).Layout(context.Background(), triangle(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	layoutPath := filepath.Join(dir, "out.layout.json")
	if err := graph.WriteLayoutFile(l, layoutPath); err != nil {
		t.Fatal(err)
	}
	in, err = Load(layoutPath)
	if err != nil {
		t.Fatalf("Load(layout) error: %v", err)
	}
	if !in.IsLayout() || len(in.Graph.Nodes) != 3 || in.Name() != "out" {
		t.Errorf("layout input = %+v name %q", in, in.Name())
	}

	_, err = Load(filepath.Join(dir, "missing.json"))
	if errors.GetCode(err) != errors.ErrCodeFileNotFound {
		t.Errorf("missing file code = %v", errors.GetCode(err))
	}
	_, err = Load(filepath.Join(dir, "data.csv"))
	if errors.GetCode(err) != errors.ErrCodeInvalidFormat {
		t.Errorf("csv code = %v", errors.GetCode(err))
	}
}

func TestLoadContextRemote(t *testing.T) {
	yamlData := "nodes:\n  - id: a\n  - id: b\nlinks:\n  - source: a\n    target: b\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/graph.yaml":
			w.Write([]byte(yamlData))
		case "/api/graph":
			w.Write([]byte(`{"nodes":[{"id":"x"}],"links":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	ctx := context.Background()

	in, err := LoadContext(ctx, srv.URL+"/data/graph.yaml?rev=2")
	if err != nil {
		t.Fatalf("LoadContext(yaml) error: %v", err)
	}
	if in.Path != "graph.yaml" || in.Name() != "graph" || len(in.Graph.Links) != 1 {
		t.Errorf("yaml input = %+v", in)
	}
	if in.Source != srv.URL+"/data/graph.yaml?rev=2" {
		t.Errorf("Source = %q", in.Source)
	}

	in, err = LoadContext(ctx, srv.URL+"/api/graph")
	if err != nil {
		t.Fatalf("LoadContext(no extension) error: %v", err)
	}
	if len(in.Graph.Nodes) != 1 || in.Graph.Nodes[0].ID != "x" {
		t.Errorf("json input = %+v", in)
	}

	if _, err := LoadContext(ctx, srv.URL+"/missing.json"); errors.GetCode(err) != errors.ErrCodeNetwork {
		t.Errorf("404 code = %v", errors.GetCode(err))
	}
	if _, err := LoadContext(ctx, srv.URL+"/graph.csv"); errors.GetCode(err) != errors.ErrCodeInvalidFormat {
		t.Errorf("csv code = %v", errors.GetCode(err))
	}
}

func TestRunnerCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	opts := Options{Formats: []string{FormatSVG, FormatJSON}}

	first, err := r.Execute(context.Background(), triangle(), opts)
	if err != nil {
		t.Fatalf("first Execute() error: %v", err)
	}
	if first.Stats.LayoutCached {
		t.Error("first run reported a cached layout")
	}

	second, err := r.Execute(context.Background(), triangle(), opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if !second.Stats.LayoutCached {
		t.Error("second run missed the layout cache")
	}
	if second.Layout.Ticks != first.Layout.Ticks {
		t.Errorf("cached ticks = %d, want %d", second.Layout.Ticks, first.Layout.Ticks)
	}
	for _, f := range opts.Formats {
		if !bytes.Equal(first.Artifacts[f], second.Artifacts[f]) {
			t.Errorf("%s artifact differs between runs", f)
		}
	}

	opts.Width = 500
	third, err := r.Execute(context.Background(), triangle(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.Stats.LayoutCached {
		t.Error("changed width reused the cached layout")
	}
}
