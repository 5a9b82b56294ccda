// Package constants holds the static lookup tables shared across symprobe.
//
// The tables are keyed by mesh or parameter name and are never mutated at
// runtime.
package constants

import "image/color"

// ConfigEnvVar names the environment variable pointing at the simulation
// configuration root used by the sweep driver.
const ConfigEnvVar = "CHASTE_MODELLING_CONFIG_DIR"

// PointIDColumn is the header of the point id column in ParaView exports.
const PointIDColumn = "vtkOriginalPointIds"

// DefaultSimName is the default simulation file prefix.
const DefaultSimName = "simulation"

// DefaultBase is the default data root, relative to the home directory.
const DefaultBase = "Documents/phd"

// DefaultSimulator is the simulator binary invoked by sweeps.
const DefaultSimulator = "uterine-simulation"

// DefaultSpikeHeight is the minimum peak height, in mV, for a spike.
const DefaultSpikeHeight = -50.0

// DefaultTau is the Van Rossum kernel time constant in seconds.
const DefaultTau = 1.0

// Channel indices of the canonical recording sites.
const (
	Ovary  = 0
	Centre = 1
	Cervix = 2
)

// ChannelNames labels the canonical channels in order.
var ChannelNames = []string{"ovary", "centre", "cervix"}

// EstrusAll selects every estrus stage.
const EstrusAll = "all"

// Estrus lists the estrus stages in cycle order.
var Estrus = []string{"proestrus", "estrus", "metestrus", "diestrus"}

// Points maps a mesh to the point ids extracted from it, ordered
// ovarian end, centre, cervical end.
var Points = map[string][]int{
	"uterus_scaffold_scaled_1": {195, 265, 329},
	"uterus_scaffold_scaled_2": {1088, 1493, 1971},
	"uterus_scaffold_scaled_3": {1595, 2192, 2908},
	"uterus_scaffold_scaled_4": {2387, 3824, 4358},
	"uterus_scaffold_scaled_5": {3183, 4379, 5813},
	"AWA026_proestrus_mesh":    {38608, 41874, 42446},
	"AWA033_estrus_mesh":       {31768, 9323, 31933},
	"AWB008_metestrus_mesh":    {27499, 27256, 27826},
	"AWB003_diestrus_mesh":     {44899, 44192, 43638},
}

// Resolutions maps a scaffold mesh to its element count.
var Resolutions = map[string]int{
	"uterus_scaffold_scaled_1": 1258,
	"uterus_scaffold_scaled_2": 9984,
	"uterus_scaffold_scaled_3": 14976,
	"uterus_scaffold_scaled_4": 22464,
	"uterus_scaffold_scaled_5": 33696,
}

// HornLengths maps a mesh to the length of its left horn in mm.
var HornLengths = map[string]float64{
	"uterus_scaffold_scaled_3": 20,
	"AWA026_proestrus_mesh":    21,
	"AWA033_estrus_mesh":       20,
	"AWB008_metestrus_mesh":    19,
	"AWB003_diestrus_mesh":     20,
}

// Colours assigns a plot colour to each estrus stage.
var Colours = map[string]color.Color{
	"proestrus": color.RGBA{R: 255, A: 255},
	"estrus":    color.RGBA{B: 255, A: 255},
	"metestrus": color.RGBA{G: 128, A: 255},
	"diestrus":  color.Black,
}

// ParamLabels gives the axis label of a swept parameter.
var ParamLabels = map[string]string{
	"gkv43":        "gKv4.3",
	"gcal":         "gCaL",
	"gna":          "gNa",
	"gkca":         "gKCa",
	"stim_current": "Istim",
}

// ParamUnits gives the unit of a swept parameter.
var ParamUnits = map[string]string{
	"gkv43":        "nS/pF",
	"gcal":         "nS/pF",
	"gkca":         "nS/pF",
	"gna":          "nS/pF",
	"stim_current": "pA/pF",
}

// IsEstrusStage reports whether s names a single estrus stage.
func IsEstrusStage(s string) bool {
	for _, stage := range Estrus {
		if stage == s {
			return true
		}
	}
	return false
}

// StageColour returns the colour for stage, black when unknown.
func StageColour(stage string) color.Color {
	if c, ok := Colours[stage]; ok {
		return c
	}
	return color.Black
}

// ParamAxisLabel builds an axis label for a parameter, falling back to the
// raw name when no display label is known.
func ParamAxisLabel(param string) string {
	label, ok := ParamLabels[param]
	if !ok {
		label = param
	}
	if unit, ok := ParamUnits[param]; ok {
		return label + " (" + unit + ")"
	}
	return label
}
