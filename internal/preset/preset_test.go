package preset

import "testing"

func TestGetKnown(t *testing.T) {
	p := Get("strong")
	if p.Name != "strong" || p.Intensity != 80 {
		t.Errorf("unexpected preset: %+v", p)
	}
}

func TestGetFallback(t *testing.T) {
	p := Get("no-such-look")
	std := Get("standard")
	if p.Name != "no-such-look" {
		t.Errorf("fallback should keep requested name, got %q", p.Name)
	}
	if p.Intensity != std.Intensity || p.ShadowStrength != std.ShadowStrength {
		t.Errorf("fallback should carry standard values: %+v", p)
	}
}

func TestNamesResolve(t *testing.T) {
	for _, name := range Names() {
		if Get(name).Name != name {
			t.Errorf("preset %q does not resolve to itself", name)
		}
	}
	if len(Names()) != len(presets) {
		t.Errorf("Names() lists %d presets, map has %d", len(Names()), len(presets))
	}
}

func TestRanges(t *testing.T) {
	for _, name := range Names() {
		p := Get(name)
		if p.Intensity < 0 || p.Intensity > 100 ||
			p.ShadowStrength < 0 || p.ShadowStrength > 100 {
			t.Errorf("preset %q has out-of-range sliders: %+v", name, p)
		}
		if p.AnalysisEdge <= 0 {
			t.Errorf("preset %q has no analysis edge", name)
		}
	}
}
