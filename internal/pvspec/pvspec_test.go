package pvspec_test

import (
	"math"
	"testing"

	"bipv/internal/pvspec"
)

func TestSelectPanelPrefersEfficiencyAtHighIrradiation(t *testing.T) {
	panel, err := pvspec.SelectPanel(900, 0)
	if err != nil {
		t.Fatalf("SelectPanel failed: %v", err)
	}
	if panel.Code != "mono-00" {
		t.Fatalf("expected opaque monocrystalline at 900 kWh/m2, got %s", panel.Code)
	}
}

func TestSelectPanelRespectsTransparency(t *testing.T) {
	panel, err := pvspec.SelectPanel(900, 0.10)
	if err != nil {
		t.Fatalf("SelectPanel failed: %v", err)
	}
	if panel.Transparency < 0.10 {
		t.Fatalf("transparency constraint violated: %v", panel.Transparency)
	}
	if panel.Code != "cdte-10" {
		t.Fatalf("expected CdTe class, got %s", panel.Code)
	}
}

func TestSelectPanelLowIrradiationFallsBack(t *testing.T) {
	panel, err := pvspec.SelectPanel(200, 0)
	if err != nil {
		t.Fatalf("SelectPanel failed: %v", err)
	}
	if panel.Code != "asi-20" {
		t.Fatalf("expected amorphous silicon for weak facades, got %s", panel.Code)
	}
}

func TestSelectPanelImpossibleConstraint(t *testing.T) {
	if _, err := pvspec.SelectPanel(900, 0.5); err == nil {
		t.Fatal("expected error for unsatisfiable transparency")
	}
}

func TestMatchElementSizing(t *testing.T) {
	match, err := pvspec.MatchElement(10, 900, 0)
	if err != nil {
		t.Fatalf("MatchElement failed: %v", err)
	}
	if math.Abs(match.CapacityKWp-1.9) > 1e-9 {
		t.Fatalf("expected 1.9 kWp from 10 m2 at 19%%, got %v", match.CapacityKWp)
	}
	wantCost := 10*450 + 1.9*400
	if math.Abs(match.CostEUR-wantCost) > 1e-6 {
		t.Fatalf("expected cost %v, got %v", wantCost, match.CostEUR)
	}
}

func TestMatchElementRejectsZeroArea(t *testing.T) {
	if _, err := pvspec.MatchElement(0, 900, 0); err == nil {
		t.Fatal("expected error for zero glass area")
	}
}

func TestCatalogLookup(t *testing.T) {
	if _, ok := pvspec.PanelByCode("cigs-05"); !ok {
		t.Fatal("expected cigs-05 in catalog")
	}
	if _, ok := pvspec.PanelByCode("unknown"); ok {
		t.Fatal("unexpected catalog hit")
	}
	panels := pvspec.Catalog()
	for i := 1; i < len(panels); i++ {
		if panels[i].Efficiency < panels[i-1].Efficiency {
			t.Fatal("catalog must be ordered by efficiency")
		}
	}
}
