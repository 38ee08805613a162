package convert

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"geo2ipe/internal/cache"
	"geo2ipe/internal/geodata"
	"geo2ipe/internal/ipe"
	"geo2ipe/internal/metrics"
	"geo2ipe/internal/walker"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

const (
	sentinelOnly = `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"ADM0_ISO":"-99","NAME_LONG":"X"},"geometry":{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]]]}}]}`
	usaOnly      = `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"ADM0_ISO":"USA","NAME_LONG":"United States"},"geometry":{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]]]}}]}`
	polygonOnly  = `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"ADM0_ISO":"NLD","NAME_LONG":"Netherlands"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`
)

func defaultOptions() Options {
	return Options{Policy: walker.DefaultPolicy()}
}

func TestConvertScenarios(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		paths     int
		diag      string
		fragments []string
	}{
		{"sentinel excluded", sentinelOnly, 0, "", []string{"<page>\n</page>\n"}},
		{"single country", usaOnly, 1, "USA -> United States\n",
			[]string{"<path>\n0 0 m\n1 0 l\n1 1 l\n0 0 l\nh\n</path>\n"}},
		{"bare polygon omitted", polygonOnly, 0, "", []string{"<page>\n</page>\n"}},
	}
	for _, tc := range tests {
		var out, diag bytes.Buffer
		n, err := Convert([]byte(tc.input), tc.name, defaultOptions(), &out, &diag)
		if err != nil {
			t.Errorf("%s: Convert: %v", tc.name, err)
			continue
		}
		if n != tc.paths || strings.Count(out.String(), "<path>") != tc.paths {
			t.Errorf("%s: paths = %d (doc has %d), want %d", tc.name, n, strings.Count(out.String(), "<path>"), tc.paths)
		}
		if diag.String() != tc.diag {
			t.Errorf("%s: diag = %q, want %q", tc.name, diag.String(), tc.diag)
		}
		for _, f := range tc.fragments {
			if !strings.Contains(out.String(), f) {
				t.Errorf("%s: document missing %q:\n%s", tc.name, f, out.String())
			}
		}
	}
}

func TestConvertSchemaErrorIsFatal(t *testing.T) {
	var out, diag bytes.Buffer
	_, err := Convert([]byte(`{"type":"Topology","features":[]}`), "topo.json", defaultOptions(), &out, &diag)
	var se *geodata.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *geodata.SchemaError", err)
	}
	if out.Len() != 0 {
		t.Errorf("document written despite schema error: %q", out.String())
	}
}

func TestConvertDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	if _, err := Convert([]byte(usaOnly), "a", defaultOptions(), &a, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if _, err := Convert([]byte(usaOnly), "a", defaultOptions(), &b, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("identical input produced different output")
	}
}

type staticSource struct {
	data []byte
	err  error
}

func (s staticSource) Name() string { return "static" }

func (s staticSource) Read(context.Context) ([]byte, error) { return s.data, s.err }

type memStore struct {
	entries map[string]cache.Entry
	sets    int
}

func (m *memStore) Get(_ context.Context, key string) (cache.Entry, bool, error) {
	e, ok := m.entries[key]
	return e, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, e cache.Entry) error {
	m.entries[key] = e
	m.sets++
	return nil
}

func TestRunnerCacheReplay(t *testing.T) {
	store := &memStore{entries: map[string]cache.Entry{}}
	opts := defaultOptions()
	opts.Ipe = ipe.Options{Labels: true}

	hits := testutil.ToFloat64(metrics.CacheHitsTotal)

	var out1, diag1 bytes.Buffer
	r := &Runner{Source: staticSource{data: []byte(usaOnly)}, Cache: store, Options: opts, Out: &out1, Diag: &diag1}
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if store.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", store.sets)
	}

	var out2, diag2 bytes.Buffer
	r.Out, r.Diag = &out2, &diag2
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if store.sets != 1 {
		t.Errorf("cache written again on hit")
	}
	if !bytes.Equal(out1.Bytes(), out2.Bytes()) || diag1.String() != diag2.String() {
		t.Errorf("replay differs:\n%q\n%q", out1.String(), out2.String())
	}
	if got := testutil.ToFloat64(metrics.CacheHitsTotal) - hits; got != 1 {
		t.Errorf("cache hit delta = %v, want 1", got)
	}

	// different options must miss
	r.Options.Ipe.Labels = false
	var out3 bytes.Buffer
	r.Out, r.Diag = &out3, &bytes.Buffer{}
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if store.sets != 2 || strings.Contains(out3.String(), "<text") {
		t.Errorf("options change did not bypass cache (sets=%d)", store.sets)
	}
}

func TestRunnerSourceError(t *testing.T) {
	want := &geodata.IOError{Op: "read", Path: "x", Err: errors.New("boom")}
	r := &Runner{Source: staticSource{err: want}, Options: defaultOptions(), Out: &bytes.Buffer{}, Diag: &bytes.Buffer{}}
	if err := r.Run(context.Background()); !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}
