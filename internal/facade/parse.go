package facade

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// RawElement is one window or curtain-wall panel from a BIM schedule export.
type RawElement struct {
	Key        string
	Label      string
	Level      string
	AzimuthDeg float64
	TiltDeg    float64
	WidthM     float64
	HeightM    float64
	AreaM2     float64
	GlassRatio float64
}

// GlassAreaM2 is the glazed portion of the element area.
func (e RawElement) GlassAreaM2() float64 {
	return e.AreaM2 * e.GlassRatio
}

type columnIndex struct {
	key, label, level, orientation, azimuth, tilt, width, height, area, glassRatio int
}

var headerAliases = map[string]string{
	"id": "key", "elementid": "key", "element": "key", "guid": "key", "mark": "key",
	"label": "label", "name": "label", "familyandtype": "label", "type": "label",
	"level": "level", "storey": "level", "story": "level", "floor": "level",
	"orientation": "orientation", "facing": "orientation", "direction": "orientation",
	"azimuth": "azimuth", "azimuthdeg": "azimuth",
	"tilt": "tilt", "tiltdeg": "tilt", "slope": "tilt",
	"width": "width", "widthm": "width",
	"height": "height", "heightm": "height",
	"area": "area", "aream2": "area",
	"glassratio": "glassRatio", "glazingratio": "glassRatio", "glazing": "glassRatio",
}

// LoadElementsFile reads and parses a BIM schedule CSV from disk.
func LoadElementsFile(path string, defaultGlassRatio float64) ([]RawElement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open elements file: %w", err)
	}
	defer f.Close()

	elements, err := ParseElements(f, defaultGlassRatio)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return elements, nil
}

// ParseElements parses a window schedule CSV. The header row names the
// columns; an element id column plus either an orientation or azimuth column
// are required, geometry comes from width/height or an explicit area.
// Elements without a glass ratio column use defaultGlassRatio.
func ParseElements(r io.Reader, defaultGlassRatio float64) ([]RawElement, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read schedule header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var elements []RawElement
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read schedule row: %w", err)
		}
		line++
		if isBlank(record) {
			continue
		}
		element, err := parseRow(record, cols, defaultGlassRatio)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		elements = append(elements, element)
	}
	if len(elements) == 0 {
		return nil, errors.New("no elements found in schedule")
	}
	return elements, nil
}

func mapColumns(header []string) (columnIndex, error) {
	cols := columnIndex{key: -1, label: -1, level: -1, orientation: -1, azimuth: -1, tilt: -1, width: -1, height: -1, area: -1, glassRatio: -1}
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		name = strings.Map(func(r rune) rune {
			switch r {
			case ' ', '_', '-', '(', ')', '[', ']', '.':
				return -1
			}
			return r
		}, name)
		switch headerAliases[name] {
		case "key":
			cols.key = i
		case "label":
			if cols.label == -1 {
				cols.label = i
			}
		case "level":
			cols.level = i
		case "orientation":
			cols.orientation = i
		case "azimuth":
			cols.azimuth = i
		case "tilt":
			cols.tilt = i
		case "width":
			cols.width = i
		case "height":
			cols.height = i
		case "area":
			cols.area = i
		case "glassRatio":
			cols.glassRatio = i
		}
	}
	if cols.key == -1 {
		return cols, errors.New("schedule missing an element id column")
	}
	if cols.orientation == -1 && cols.azimuth == -1 {
		return cols, errors.New("schedule missing an orientation or azimuth column")
	}
	if cols.area == -1 && (cols.width == -1 || cols.height == -1) {
		return cols, errors.New("schedule missing area or width/height columns")
	}
	return cols, nil
}

func parseRow(record []string, cols columnIndex, defaultGlassRatio float64) (RawElement, error) {
	element := RawElement{TiltDeg: 90, GlassRatio: defaultGlassRatio}

	element.Key = field(record, cols.key)
	if element.Key == "" {
		return element, errors.New("empty element id")
	}
	element.Label = field(record, cols.label)
	element.Level = field(record, cols.level)

	if raw := field(record, cols.azimuth); raw != "" {
		azimuth, err := parseFloat(raw)
		if err != nil {
			return element, fmt.Errorf("invalid azimuth %q", raw)
		}
		element.AzimuthDeg = normalizeAzimuth(azimuth)
	} else {
		orientation := field(record, cols.orientation)
		azimuth, ok := AzimuthFromOrientation(orientation)
		if !ok {
			return element, fmt.Errorf("unknown orientation %q", orientation)
		}
		element.AzimuthDeg = azimuth
	}

	if raw := field(record, cols.tilt); raw != "" {
		tilt, err := parseFloat(raw)
		if err != nil || tilt < 0 || tilt > 180 {
			return element, fmt.Errorf("invalid tilt %q", raw)
		}
		element.TiltDeg = tilt
	}

	if raw := field(record, cols.width); raw != "" {
		if element.WidthM, _ = parseFloat(raw); element.WidthM < 0 {
			return element, fmt.Errorf("invalid width %q", raw)
		}
	}
	if raw := field(record, cols.height); raw != "" {
		if element.HeightM, _ = parseFloat(raw); element.HeightM < 0 {
			return element, fmt.Errorf("invalid height %q", raw)
		}
	}
	if raw := field(record, cols.area); raw != "" {
		area, err := parseFloat(raw)
		if err != nil || area < 0 {
			return element, fmt.Errorf("invalid area %q", raw)
		}
		element.AreaM2 = area
	} else {
		element.AreaM2 = element.WidthM * element.HeightM
	}
	if element.AreaM2 <= 0 {
		return element, errors.New("element has no usable area")
	}

	if raw := field(record, cols.glassRatio); raw != "" {
		ratio, err := parseFloat(raw)
		if err != nil || ratio < 0 {
			return element, fmt.Errorf("invalid glass ratio %q", raw)
		}
		if ratio > 1 {
			// Percentage notation.
			ratio /= 100
		}
		if ratio > 1 {
			return element, fmt.Errorf("invalid glass ratio %q", raw)
		}
		element.GlassRatio = ratio
	}

	return element, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseFloat(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	return strconv.ParseFloat(cleaned, 64)
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func normalizeAzimuth(azimuth float64) float64 {
	for azimuth < 0 {
		azimuth += 360
	}
	for azimuth >= 360 {
		azimuth -= 360
	}
	return azimuth
}
