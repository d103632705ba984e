package geofence

import (
	"testing"

	"github.com/nandanugg/safetrip/module/core/domain"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	if c.Len() != 5 {
		t.Fatalf("expected 5 zones, got %d", c.Len())
	}

	zones := c.Zones()
	for i, want := range []string{"1", "2", "3", "4", "5"} {
		if zones[i].ID != want {
			t.Errorf("zone %d: expected id %s, got %s", i, want, zones[i].ID)
		}
		if len(zones[i].Polygon) != 4 {
			t.Errorf("zone %s: expected 4 vertices, got %d", zones[i].ID, len(zones[i].Polygon))
		}
	}

	z, ok := c.Zone("1")
	if !ok {
		t.Fatal("expected zone 1")
	}
	if z.Name != "High Crime District" {
		t.Errorf("expected High Crime District, got %s", z.Name)
	}
	if z.RiskLevel != domain.RiskHigh {
		t.Errorf("expected high, got %s", z.RiskLevel)
	}
	if z.Polygon[0] != (domain.LatLng{Lat: 40.7589, Lon: -73.9851}) {
		t.Errorf("unexpected first vertex %v", z.Polygon[0])
	}
}

func TestCatalog_ZonesAreCopies(t *testing.T) {
	c := DefaultCatalog()
	zones := c.Zones()
	zones[0].Polygon[0].Lat = 0
	zones[0].Name = "changed"

	z, _ := c.Zone("1")
	if z.Polygon[0].Lat != 40.7589 || z.Name != "High Crime District" {
		t.Error("catalog was mutated through returned slice")
	}
}

func TestLoadCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{`},
		{"missing id", `[{"risk_level":"low","coordinates":[]}]`},
		{"duplicate id", `[{"id":"a","risk_level":"low"},{"id":"a","risk_level":"high"}]`},
		{"unknown risk", `[{"id":"a","risk_level":"extreme"}]`},
		{"bad vertex", `[{"id":"a","risk_level":"low","coordinates":[[1,2,3]]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadCatalog([]byte(tt.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadCatalog_AcceptsDegeneratePolygon(t *testing.T) {
	c, err := LoadCatalog([]byte(`[{"id":"x","risk_level":"low","coordinates":[[1,1],[2,2]]}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.Zone("missing"); ok {
		t.Error("expected unknown zone lookup to fail")
	}
}

func TestRiskLevelSeverity(t *testing.T) {
	order := []domain.RiskLevel{domain.RiskLow, domain.RiskMedium, domain.RiskHigh, domain.RiskCritical}
	for i := 1; i < len(order); i++ {
		if order[i].Severity() <= order[i-1].Severity() {
			t.Errorf("%s should be more severe than %s", order[i], order[i-1])
		}
	}
	if domain.RiskLevel("other").Valid() {
		t.Error("expected unknown level to be invalid")
	}
}
