package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/msttree/pkg/cache"
	"github.com/matzehuels/msttree/pkg/config"
	"github.com/matzehuels/msttree/pkg/errors"
	mstio "github.com/matzehuels/msttree/pkg/io"
	"github.com/matzehuels/msttree/pkg/observability"
)

const starInput = `{
  "nodes": ["R", "A", "B", "C", "D"],
  "links": [
    {"source": 0, "target": 1, "distance": 1},
    {"source": 0, "target": 2, "distance": 1},
    {"source": 0, "target": 3, "distance": 5},
    {"source": 0, "target": 4, "distance": 5}
  ],
  "metadata": {
    "A": [{"country": "DE"}, {"country": "FR"}],
    "B": [{"country": "DE"}],
    "C": [{"country": "UK"}]
  }
}`

func readInput(t *testing.T, s string) *mstio.Input {
	t.Helper()
	in, err := mstio.ReadInput(strings.NewReader(s))
	if err != nil {
		t.Fatalf("ReadInput() error = %v", err)
	}
	return in
}

func newRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil)
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"html", false},
		{"dot", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats(" SVG,html,, json ")
	if err != nil {
		t.Fatalf("ParseFormats() error = %v", err)
	}
	if strings.Join(got, ",") != "svg,html,json" {
		t.Errorf("ParseFormats() = %v", got)
	}

	if _, err := ParseFormats("svg,gif"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ParseFormats(gif) error = %v, want INVALID_INPUT", err)
	}
}

func TestOptionsResolve(t *testing.T) {
	// Defaults, threshold copied into the bag.
	opts, err := Options{Threshold: 2}.resolve(nil)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Settings == nil || opts.Settings.NodeCollapsedValue != 2 || opts.Logger == nil {
		t.Errorf("resolve() = %+v", opts)
	}
	if opts.Settings.MaxLinkScale != config.Default().MaxLinkScale {
		t.Error("resolve() did not start from defaults")
	}

	// Saved settings are used when none are given.
	saved := config.Default()
	saved.MaxLinkScale = 900
	in := &mstio.Input{Layout: &mstio.LayoutData{NodesLinks: saved}}
	opts, err = Options{}.resolve(in)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Settings.MaxLinkScale != 900 {
		t.Errorf("MaxLinkScale = %v, want saved 900", opts.Settings.MaxLinkScale)
	}

	// Explicit settings are copied, not aliased.
	s := config.Default()
	opts, _ = Options{Threshold: 3, Settings: &s}.resolve(nil)
	if s.NodeCollapsedValue != 0 || opts.Settings.NodeCollapsedValue != 3 {
		t.Error("resolve() modified the caller's settings")
	}
}

func TestOptionsValidate(t *testing.T) {
	bad := config.Default()
	bad.MaxLinkScale = 0
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"negative threshold", Options{Threshold: -1}, errors.ErrCodeInvalidConfig},
		{"bad settings", Options{Settings: &bad}, errors.ErrCodeInvalidConfig},
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.Validate(); !errors.Is(err, tt.code) {
				t.Errorf("Validate() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	r := newRunner(t)
	in := readInput(t, starInput)

	res, err := r.Execute(context.Background(), in, Options{Threshold: 1, Formats: []string{"json", "dot", "html"}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Stats.Nodes != 5 || res.Stats.Visible != 3 || res.Stats.Merged != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.CacheHit {
		t.Error("first run should miss the cache")
	}
	if got := res.Layout.GroupedNodes["R"]; strings.Join(got, ",") != "R,A,B" {
		t.Errorf("groups[R] = %v, want [R A B]", got)
	}
	if res.Layout.NodesLinks.NodeCollapsedValue != 1 {
		t.Errorf("node_collapsed_value = %v, want 1", res.Layout.NodesLinks.NodeCollapsedValue)
	}
	if len(res.Layout.NodePositions) != 3 || res.Layout.NodePositions["R"] != [2]float64{0, 0} {
		t.Errorf("positions = %v", res.Layout.NodePositions)
	}

	var back mstio.LayoutData
	if err := json.Unmarshal(res.Artifacts["json"], &back); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(back.NodePositions) != 3 {
		t.Errorf("json artifact positions = %v", back.NodePositions)
	}
	if !strings.Contains(string(res.Artifacts["dot"]), `"R" -- "C"`) {
		t.Error("dot artifact missing link R -- C")
	}
	if !strings.Contains(string(res.Artifacts["html"]), "<html") {
		t.Error("html artifact is not a page")
	}

	// Second run hits the layout cache and returns the same layout.
	again, err := r.Execute(context.Background(), in, Options{Threshold: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheHit {
		t.Error("second run should hit the cache")
	}
	if res.Stats.Iterations == 0 || again.Stats.Iterations != 0 {
		t.Errorf("iterations = %d then %d, want computed then 0 for the cached layout", res.Stats.Iterations, again.Stats.Iterations)
	}
	if again.Layout.NodePositions["C"] != res.Layout.NodePositions["C"] {
		t.Error("cached layout differs")
	}

	// Refresh bypasses the cache.
	fresh, err := r.Execute(context.Background(), in, Options{Threshold: 1, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheHit {
		t.Error("refresh should not hit the cache")
	}
}

func TestExecute_ThresholdChangesKey(t *testing.T) {
	r := newRunner(t)
	in := readInput(t, starInput)
	ctx := context.Background()

	if _, err := r.Execute(ctx, in, Options{Threshold: 1}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(ctx, in, Options{Threshold: 5})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit {
		t.Error("different threshold must not hit the cache")
	}
	if res.Stats.Visible != 1 {
		t.Errorf("visible = %d, want total collapse", res.Stats.Visible)
	}
}

func TestExecute_RestoresSavedLayout(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	in := readInput(t, starInput)
	ctx := context.Background()

	first, err := r.Execute(ctx, in, Options{Threshold: 1})
	if err != nil {
		t.Fatal(err)
	}

	saved := first.Layout
	saved.NodePositions = first.Layout.NodePositions.Clone()
	saved.NodePositions["C"] = [2]float64{123, 456}
	in.Layout = &saved

	res, err := r.Execute(ctx, in, Options{Threshold: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Stats.Restored || res.Layout.NodePositions["C"] != [2]float64{123, 456} {
		t.Errorf("saved layout not restored: %+v", res.Stats)
	}

	// The computed view only placed R, C and D; A and B need a new layout.
	res, err = r.Execute(ctx, in, Options{Threshold: 0})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Restored {
		t.Error("layout restored although A and B have no saved position")
	}

	// Refresh ignores the saved view.
	res, err = r.Execute(ctx, in, Options{Threshold: 1, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Restored {
		t.Error("layout restored despite Refresh")
	}
}

// savedView is the star input with a view that places every entity but
// records no groups, as older viewers save it.
const savedView = `{
  "nodes": ["R", "A", "B", "C", "D"],
  "links": [
    {"source": 0, "target": 1, "distance": 1},
    {"source": 0, "target": 2, "distance": 1},
    {"source": 0, "target": 3, "distance": 5},
    {"source": 0, "target": 4, "distance": 5}
  ],
  "layout_data": {
    "node_positions": {"R": [0, 0], "A": [10, 0], "B": [0, 10], "C": [-50, 0], "D": [0, -50]},
    "nodes_links": {"node_collapsed_value": 1},
    "scale": 2
  }
}`

func TestExecute_RestoredViewGroups(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	in := readInput(t, savedView)

	res, err := r.Execute(context.Background(), in, Options{Threshold: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Stats.Restored {
		t.Fatal("saved view not restored")
	}
	if got := strings.Join(res.Layout.GroupedNodes["R"], ","); got != "R,A,B" {
		t.Errorf("grouped_nodes[R] = %s, want R,A,B", got)
	}
	if !res.Layout.Converged {
		t.Error("restored view reported as not converged")
	}
	if res.Layout.Scale != 2 {
		t.Errorf("scale = %v, want 2", res.Layout.Scale)
	}
	if strings.Join(res.Tree.IDs(), ",") != "R,C,D" {
		t.Errorf("visible = %v", res.Tree.IDs())
	}
	// Merged nodes keep their saved coordinates.
	if len(res.Layout.NodePositions) != 5 || res.Layout.NodePositions["A"] != [2]float64{10, 0} {
		t.Errorf("node_positions = %v", res.Layout.NodePositions)
	}
}

func TestExecute_RestoresAtAnotherThreshold(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	in := readInput(t, savedView)

	res, err := r.Execute(context.Background(), in, Options{Threshold: 5})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Stats.Restored || res.Stats.Visible != 1 {
		t.Fatalf("restored = %v, visible = %d", res.Stats.Restored, res.Stats.Visible)
	}
	if res.Layout.NodePositions["R"] != [2]float64{0, 0} || res.Layout.NodePositions["D"] != [2]float64{0, -50} {
		t.Errorf("node_positions = %v", res.Layout.NodePositions)
	}
	if len(res.Layout.GroupedNodes["R"]) != 5 {
		t.Errorf("grouped_nodes[R] = %v", res.Layout.GroupedNodes["R"])
	}
	if res.Layout.NodesLinks.NodeCollapsedValue != 5 {
		t.Errorf("node_collapsed_value = %v, want 5", res.Layout.NodesLinks.NodeCollapsedValue)
	}
}

func TestExecute_RestoredViewFollowsAdoption(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	in := readInput(t, `{
  "nodes": ["ST1", "hypothetical_node", "ST2", "ST3"],
  "links": [
    {"source": 0, "target": 1, "distance": 2},
    {"source": 1, "target": 2, "distance": 1},
    {"source": 1, "target": 3, "distance": 5}
  ],
  "layout_data": {
    "node_positions": {"ST1": [0, 0], "_hypo_node_1": [7, 8], "ST2": [1, 1], "ST3": [9, 9]}
  }
}`)

	res, err := r.Execute(context.Background(), in, Options{Threshold: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Stats.Restored {
		t.Fatal("saved view not restored")
	}
	// ST2 took over the composite's place in the drawing.
	if got := res.Layout.NodePositions["ST2"]; got != [2]float64{7, 8} {
		t.Errorf("ST2 = %v, want [7 8]", got)
	}
}

func TestExecute_Errors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	if _, err := r.Execute(ctx, &mstio.Input{}, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty input error = %v, want INVALID_INPUT", err)
	}
	if _, err := r.Execute(ctx, readInput(t, starInput), Options{Threshold: -1}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("negative threshold error = %v, want INVALID_CONFIG", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := r.Execute(cancelled, readInput(t, starInput), Options{}); err != context.Canceled {
		t.Errorf("cancelled error = %v, want context.Canceled", err)
	}
}

func TestLabels(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	in := readInput(t, starInput)
	res, err := r.Execute(context.Background(), in, Options{Threshold: 1})
	if err != nil {
		t.Fatal(err)
	}

	labels := Labels(res.Tree, res.Layout.GroupedNodes, in.Metadata, "country")
	if labels["R"] != "DE, FR" {
		t.Errorf("labels[R] = %q, want merged distinct values", labels["R"])
	}
	if labels["C"] != "UK" {
		t.Errorf("labels[C] = %q", labels["C"])
	}
	if _, ok := labels["D"]; ok {
		t.Error("D has no metadata but got a label")
	}
	if Labels(res.Tree, nil, in.Metadata, "") != nil {
		t.Error("empty field should give no labels")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	stages []string
}

func (h *recordingHooks) add(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stages = append(h.stages, s)
}

func (h *recordingHooks) OnBuildComplete(context.Context, int, time.Duration, error) {
	h.add("build")
}

func (h *recordingHooks) OnCollapseComplete(context.Context, int, time.Duration, error) {
	h.add("collapse")
}

func (h *recordingHooks) OnLayoutComplete(context.Context, bool, int, time.Duration, error) {
	h.add("layout")
}

func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.add("render")
}

func TestExecute_Hooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	defer observability.Reset()

	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), readInput(t, starInput), Options{Formats: []string{"dot"}}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(h.stages, ","); got != "build,collapse,layout,render" {
		t.Errorf("stages = %s", got)
	}
}

func TestExecute_Examples(t *testing.T) {
	s, err := config.Load("../../examples/settings.toml")
	if err != nil {
		t.Fatalf("load example settings: %v", err)
	}
	r := NewRunner(nil, nil, nil)

	for _, name := range []string{"outbreak.json", "newick.json"} {
		t.Run(name, func(t *testing.T) {
			in, err := mstio.ImportInput("../../examples/" + name)
			if err != nil {
				t.Fatal(err)
			}
			res, err := r.Execute(context.Background(), in, Options{
				Threshold: s.NodeCollapsedValue,
				Settings:  &s,
				Formats:   []string{FormatDOT, FormatHTML},
			})
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if res.Stats.Visible == 0 || res.Stats.Visible > res.Stats.Nodes {
				t.Errorf("stats = %+v", res.Stats)
			}
			if len(res.Layout.NodePositions) != res.Stats.Visible {
				t.Errorf("%d positions for %d visible nodes", len(res.Layout.NodePositions), res.Stats.Visible)
			}
			if len(res.Artifacts[FormatDOT]) == 0 || len(res.Artifacts[FormatHTML]) == 0 {
				t.Error("missing artifacts")
			}
		})
	}
}

func TestNewRunner_Defaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Fatalf("NewRunner(nil, nil, nil) = %+v", r)
	}
	if r.Logger == log.Default() {
		t.Error("a nil logger should discard messages, not use the default logger")
	}
}
