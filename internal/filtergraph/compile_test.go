package filtergraph

import (
	"strings"
	"testing"

	"clipforge/internal/media"
	"clipforge/internal/timeline"
)

func testClip(duration float64, effects timeline.Effects) timeline.Clip {
	return timeline.Clip{
		ID: "clip",
		Asset: &media.Asset{
			ID:              "asset",
			Name:            "test.mp4",
			SourceHandle:    "/media/test.mp4",
			DurationSeconds: duration,
			Width:           1920,
			Height:          1080,
		},
		TrackID: "video-1",
		TrimEnd: duration,
		Effects: effects,
	}
}

func filterNames(node Node) []string {
	names := make([]string, 0, len(node.Filters))
	for _, f := range node.Filters {
		names = append(names, f.Name)
	}
	return names
}

func TestCompileTwoClipsNoText(t *testing.T) {
	clips := []timeline.Clip{
		testClip(5, timeline.DefaultEffects()),
		testClip(5, timeline.DefaultEffects()),
	}

	graph, err := Compile(clips, nil)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if len(graph.Nodes) != 4 {
		t.Fatalf("expected 4 nodes (2 clip chains, concat, pass-through), got %d", len(graph.Nodes))
	}

	for i := 0; i < 2; i++ {
		node := graph.Nodes[i]
		if len(node.Inputs) != 1 || node.Inputs[0] != []string{"0:v", "1:v"}[i] {
			t.Errorf("clip chain %d inputs = %v", i, node.Inputs)
		}
		if node.Output != []string{"v0", "v1"}[i] {
			t.Errorf("clip chain %d output = %q", i, node.Output)
		}
	}

	concat := graph.Nodes[2]
	if concat.Output != "vconcat" {
		t.Errorf("concat output = %q, want vconcat", concat.Output)
	}
	if len(concat.Inputs) != 2 || concat.Inputs[0] != "v0" || concat.Inputs[1] != "v1" {
		t.Errorf("concat inputs = %v, want [v0 v1]", concat.Inputs)
	}
	if f := concat.Find("concat"); f == nil || f.Args != "n=2:v=1:a=0" {
		t.Errorf("concat filter = %+v", concat.Filters)
	}

	final := graph.Nodes[3]
	if final.Output != FinalPad || final.Inputs[0] != "vconcat" {
		t.Errorf("final node = %+v, want pass-through vconcat -> final", final)
	}
	if f := final.Find("copy"); f == nil {
		t.Errorf("final node is not a pass-through: %+v", final.Filters)
	}
}

func TestCompileSingleClipAliasesConcat(t *testing.T) {
	graph, err := Compile([]timeline.Clip{testClip(5, timeline.DefaultEffects())}, nil)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	alias := graph.NodeProducing("vconcat")
	if alias == nil {
		t.Fatal("no node produces vconcat")
	}
	if alias.Inputs[0] != "v0" || alias.Find("copy") == nil {
		t.Errorf("expected v0 aliased to vconcat via copy, got %+v", alias)
	}
}

func TestCompileEmptyTimeline(t *testing.T) {
	if _, err := Compile(nil, nil); err == nil {
		t.Fatal("expected an error for an empty timeline")
	}
}

func TestDefaultClipChainFilters(t *testing.T) {
	graph, err := Compile([]timeline.Clip{testClip(5, timeline.DefaultEffects())}, nil)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	got := filterNames(graph.Nodes[0])
	want := []string{"trim", "setpts", "scale", "pad"}
	if len(got) != len(want) {
		t.Fatalf("filter names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("filter names = %v, want %v", got, want)
		}
	}
}

func TestFullEffectChainOrder(t *testing.T) {
	effects := timeline.Effects{
		Brightness:     0.2,
		Contrast:       1.1,
		Saturation:     0.9,
		Blur:           2,
		Sharpen:        1.5,
		Volume:         1,
		RotateDegrees:  90,
		Flip:           timeline.FlipHorizontal,
		Crop:           &timeline.Crop{Width: 640, Height: 480, X: 10, Y: 20},
		Scale:          &timeline.Scale{Width: 800, Height: 600},
		FadeInSeconds:  1,
		FadeOutSeconds: 1,
	}

	graph, err := Compile([]timeline.Clip{testClip(10, effects)}, nil)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	got := filterNames(graph.Nodes[0])
	want := []string{"trim", "setpts", "crop", "scale", "hflip", "rotate", "eq", "boxblur", "unsharp", "fade", "fade", "scale", "pad"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("filter order = %v, want %v", got, want)
	}

	chain := graph.Nodes[0]
	if f := chain.Find("crop"); f.Args != "640:480:10:20" {
		t.Errorf("crop args = %q", f.Args)
	}
	if f := chain.Find("unsharp"); f.Args != "5:5:1.5:5:5:0" {
		t.Errorf("unsharp args = %q", f.Args)
	}
}

func TestFadeOutPlacement(t *testing.T) {
	effects := timeline.DefaultEffects()
	effects.FadeOutSeconds = 2

	graph, err := Compile([]timeline.Clip{testClip(5, effects)}, nil)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	chain := graph.Nodes[0]
	fade := chain.Find("fade")
	if fade == nil {
		t.Fatal("fade-out filter missing")
	}
	if fade.Args != "t=out:st=3:d=2" {
		t.Errorf("fade args = %q, want t=out:st=3:d=2", fade.Args)
	}
}

func TestFadeOutDroppedWhenWindowExceedsClip(t *testing.T) {
	effects := timeline.DefaultEffects()
	effects.FadeOutSeconds = 6

	graph, err := Compile([]timeline.Clip{testClip(5, effects)}, nil)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if graph.Nodes[0].Find("fade") != nil {
		t.Error("fade-out should be dropped when its window exceeds the clip duration")
	}
}

func TestColorAdjustmentOmission(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*timeline.Effects)
		wantEq bool
	}{
		{"defaults", func(e *timeline.Effects) {}, false},
		{"brightness", func(e *timeline.Effects) { e.Brightness = 0.5 }, true},
		{"contrast", func(e *timeline.Effects) { e.Contrast = 1.5 }, true},
		{"saturation", func(e *timeline.Effects) { e.Saturation = 0.5 }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			effects := timeline.DefaultEffects()
			tc.mutate(&effects)

			graph, err := Compile([]timeline.Clip{testClip(5, effects)}, nil)
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}

			gotEq := graph.Nodes[0].Find("eq") != nil
			if gotEq != tc.wantEq {
				t.Errorf("eq filter present = %v, want %v", gotEq, tc.wantEq)
			}
		})
	}
}

func TestTextLayerChaining(t *testing.T) {
	clips := []timeline.Clip{testClip(10, timeline.DefaultEffects())}
	layers := []timeline.TextLayer{
		{Text: "one", FontSize: 48, Color: "white", StartTime: 0, EndTime: 2},
		{Text: "two", FontSize: 48, Color: "white", StartTime: 2, EndTime: 4},
		{Text: "three", FontSize: 48, Color: "white", StartTime: 4, EndTime: 6},
	}

	graph, err := Compile(clips, layers)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	var overlays []Node
	for _, node := range graph.Nodes {
		if node.Find("drawtext") != nil {
			overlays = append(overlays, node)
		}
	}
	if len(overlays) != 3 {
		t.Fatalf("expected 3 overlay nodes, got %d", len(overlays))
	}

	if overlays[0].Inputs[0] != "vconcat" || overlays[0].Output != "vtext0" {
		t.Errorf("first overlay wiring = %v -> %s", overlays[0].Inputs, overlays[0].Output)
	}
	if overlays[1].Inputs[0] != "vtext0" || overlays[1].Output != "vtext1" {
		t.Errorf("second overlay wiring = %v -> %s", overlays[1].Inputs, overlays[1].Output)
	}
	if overlays[2].Inputs[0] != "vtext1" || overlays[2].Output != FinalPad {
		t.Errorf("last overlay must produce the final pad, got %v -> %s", overlays[2].Inputs, overlays[2].Output)
	}
}

func TestTextLayerVisibilityWindow(t *testing.T) {
	clips := []timeline.Clip{testClip(10, timeline.DefaultEffects())}
	layers := []timeline.TextLayer{
		{Text: "Hi", X: 10, Y: 20, FontSize: 48, Color: "white", StartTime: 2, EndTime: 7},
	}

	graph, err := Compile(clips, layers)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	overlay := graph.NodeProducing(FinalPad)
	if overlay == nil || overlay.Find("drawtext") == nil {
		t.Fatal("final pad is not produced by an overlay node")
	}
	if overlay.Inputs[0] != "vconcat" {
		t.Errorf("overlay input = %q, want vconcat", overlay.Inputs[0])
	}

	args := overlay.Find("drawtext").Args
	for _, fragment := range []string{
		"text='Hi'",
		"x=10",
		"y=20",
		"fontsize=48",
		"fontcolor=white",
		`enable='between(t\,2\,7)'`,
	} {
		if !strings.Contains(args, fragment) {
			t.Errorf("drawtext args missing %q: %s", fragment, args)
		}
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	clips := []timeline.Clip{
		testClip(5, timeline.DefaultEffects()),
		testClip(7, timeline.DefaultEffects()),
	}
	// Ids must not influence the compiled output, only input order does.
	clips[0].ID = "zzz"
	clips[1].ID = "aaa"
	layers := []timeline.TextLayer{
		{ID: "9", Text: "x", FontSize: 48, Color: "white", StartTime: 0, EndTime: 1},
	}

	first, err := Compile(clips, layers)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	second, err := Compile(clips, layers)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if first.Serialize() != second.Serialize() {
		t.Error("identical inputs compiled to different descriptions")
	}
}

func TestEscapeText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"it's", `it'\\\''s`},
		{"a:b", `a\:b`},
		{"'x':y", `'\\\''x'\\\''\:y`},
	}

	for _, tc := range cases {
		if got := EscapeText(tc.in); got != tc.want {
			t.Errorf("EscapeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
