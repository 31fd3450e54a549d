package facade

import (
	"context"
	"fmt"

	"bipv/internal/config"
	"bipv/internal/store"
)

// Filter decides which schedule elements become pipeline candidates.
type Filter struct {
	MinAreaM2    float64
	IncludeNorth bool
}

// FilterFromConfig builds the candidate filter from the loaded configuration.
func FilterFromConfig(cfg *config.Config) Filter {
	return Filter{
		MinAreaM2:    cfg.PV.MinElementArea,
		IncludeNorth: cfg.PV.IncludeNorth,
	}
}

// Candidate reports whether an element should enter the pipeline; when it
// should not, the second return names the reason.
func (f Filter) Candidate(e RawElement) (bool, string) {
	if e.GlassAreaM2() < f.MinAreaM2 {
		return false, "below minimum glass area"
	}
	if !f.IncludeNorth && IsNorthFacing(e.AzimuthDeg) {
		return false, "north-facing"
	}
	return true, ""
}

// Summary aggregates the outcome of one import run.
type Summary struct {
	Parsed     int
	Registered int
	Duplicates int
	Filtered   map[string]int
}

// Register filters, fingerprints, and idempotently registers schedule
// elements for a project. Rows whose fingerprint already exists count as
// duplicates and are left untouched.
func Register(ctx context.Context, st *store.Store, projectID int64, elements []RawElement, filter Filter) (Summary, error) {
	summary := Summary{Parsed: len(elements), Filtered: make(map[string]int)}
	for _, raw := range elements {
		ok, reason := filter.Candidate(raw)
		if !ok {
			summary.Filtered[reason]++
			continue
		}
		element := &store.Element{
			ProjectID:   projectID,
			ElementKey:  raw.Key,
			Fingerprint: Fingerprint(raw),
			Label:       raw.Label,
			Level:       raw.Level,
			AzimuthDeg:  normalizeAzimuth(raw.AzimuthDeg),
			TiltDeg:     raw.TiltDeg,
			WidthM:      raw.WidthM,
			HeightM:     raw.HeightM,
			GlassAreaM2: raw.GlassAreaM2(),
		}
		_, created, err := st.RegisterElement(ctx, element)
		if err != nil {
			return summary, fmt.Errorf("register element %s: %w", raw.Key, err)
		}
		if created {
			summary.Registered++
		} else {
			summary.Duplicates++
		}
	}
	return summary, nil
}
