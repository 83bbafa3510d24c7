// Package preset defines named grading looks: parameter bundles for the
// CLI so common strengths don't need three flags.
package preset

// Preset bundles the user-facing grading parameters.
type Preset struct {
	Name           string
	Intensity      int // 0-100
	ShadowStrength int // 0-100
	AnalysisEdge   int // long-edge pixels for statistics extraction
}

// Built-in presets.
var presets = map[string]Preset{
	"subtle": {
		Name:           "subtle",
		Intensity:      30,
		ShadowStrength: 20,
		AnalysisEdge:   480,
	},
	"standard": {
		Name:           "standard",
		Intensity:      50,
		ShadowStrength: 50,
		AnalysisEdge:   480,
	},
	"strong": {
		Name:           "strong",
		Intensity:      80,
		ShadowStrength: 70,
		AnalysisEdge:   480,
	},
	"film": {
		Name:           "film",
		Intensity:      65,
		ShadowStrength: 85,
		AnalysisEdge:   640,
	},
}

// Get returns a preset by name. Falls back to standard if unknown.
func Get(name string) Preset {
	if p, ok := presets[name]; ok {
		return p
	}
	p := presets["standard"]
	p.Name = name // preserve requested name
	return p
}

// Names returns the built-in preset names in display order.
func Names() []string {
	return []string{"subtle", "standard", "strong", "film"}
}
