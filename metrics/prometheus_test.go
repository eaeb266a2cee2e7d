package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestObserveBuildExposedAsGauges(t *testing.T) {
	m := New()
	m.ObserveBuild("group.yaml", 0.01, 256, 2)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		`cocaine_continuum_points{source="group.yaml"} 256`,
		`cocaine_continuum_members{source="group.yaml"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("exposition missing %q\nbody:\n%s", want, body)
		}
	}
}

func TestObserveBuildErrorIncrementsCounter(t *testing.T) {
	m := New()
	m.ObserveBuildError("group.yaml")
	m.ObserveBuildError("group.yaml")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), `cocaine_continuum_build_errors_total{source="group.yaml"} 2`) {
		t.Fatalf("build error counter not incremented as expected, body:\n%s", rec.Body.String())
	}
}

func TestObserveLookupIncrementsCounter(t *testing.T) {
	m := New()
	m.ObserveLookup("keyed", "alpha")
	m.ObserveLookup("keyed", "alpha")
	m.ObserveLookup("keyless", "beta")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `cocaine_locator_lookups_total{kind="keyed",value="alpha"} 2`) {
		t.Fatalf("keyed lookup counter wrong, body:\n%s", body)
	}
	if !strings.Contains(body, `cocaine_locator_lookups_total{kind="keyless",value="beta"} 1`) {
		t.Fatalf("keyless lookup counter wrong, body:\n%s", body)
	}
}
