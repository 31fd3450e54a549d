package facade

import "strings"

type orientationBin struct {
	name    string
	azimuth float64
}

// Eight-point compass bins, azimuth degrees clockwise from north.
var orientationBins = []orientationBin{
	{"north", 0},
	{"northeast", 45},
	{"east", 90},
	{"southeast", 135},
	{"south", 180},
	{"southwest", 225},
	{"west", 270},
	{"northwest", 315},
}

var orientationAliases = map[string]string{
	"n": "north", "no": "north", "north": "north",
	"ne": "northeast", "northeast": "northeast", "north-east": "northeast",
	"e": "east", "east": "east",
	"se": "southeast", "southeast": "southeast", "south-east": "southeast",
	"s": "south", "south": "south",
	"sw": "southwest", "southwest": "southwest", "south-west": "southwest",
	"w": "west", "west": "west",
	"nw": "northwest", "northwest": "northwest", "north-west": "northwest",
}

// AzimuthFromOrientation resolves a compass name to its bin azimuth.
func AzimuthFromOrientation(name string) (float64, bool) {
	canonical, ok := orientationAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, false
	}
	for _, bin := range orientationBins {
		if bin.name == canonical {
			return bin.azimuth, true
		}
	}
	return 0, false
}

// OrientationLabel bins an azimuth to the nearest eight-point compass name.
func OrientationLabel(azimuthDeg float64) string {
	azimuth := normalizeAzimuth(azimuthDeg)
	best := orientationBins[0]
	bestDist := angularDistance(azimuth, best.azimuth)
	for _, bin := range orientationBins[1:] {
		if d := angularDistance(azimuth, bin.azimuth); d < bestDist {
			best = bin
			bestDist = d
		}
	}
	return best.name
}

// IsNorthFacing reports whether an azimuth falls in the north bin.
func IsNorthFacing(azimuthDeg float64) bool {
	return OrientationLabel(azimuthDeg) == "north"
}

func angularDistance(a, b float64) float64 {
	d := normalizeAzimuth(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}
