package pipeline

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trigen/pkg/bucket"
	"github.com/matzehuels/trigen/pkg/cache"
	"github.com/matzehuels/trigen/pkg/dedup"
	"github.com/matzehuels/trigen/pkg/errors"
	pkgio "github.com/matzehuels/trigen/pkg/io"
	"github.com/matzehuels/trigen/pkg/graph"
	"github.com/matzehuels/trigen/pkg/observability"
	"github.com/matzehuels/trigen/pkg/roots"
	"github.com/matzehuels/trigen/pkg/rules"
)

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, nil, log.New(io.Discard))
}

func prismConfig(dir string, workers int, steps ...Step) *Config {
	return &Config{DataDir: dir, Root: "PR", Workers: workers, Steps: steps}
}

var (
	rootBucket = bucket.MustParse("6_9_rt")
	e1Bucket   = bucket.MustParse("6_10_e1")
	e2Bucket   = bucket.MustParse("6_11_e2")
	c1Bucket   = bucket.MustParse("7_11_c1")
)

func countRecords(t *testing.T, path string) int {
	t.Helper()
	cs, err := pkgio.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", path, err)
	}
	return len(cs)
}

func readSummary(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open summary: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	return rows
}

func TestConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DataDir != DefaultDataDir || cfg.Root != DefaultRoot || cfg.RootTag != DefaultRootTag {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Workers != DefaultWorkers || cfg.Store.Backend != DefaultBackend {
		t.Errorf("defaults = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if got := cfg.SummaryPath(); got != filepath.Join(DefaultDataDir, DefaultSummary) {
		t.Errorf("SummaryPath = %s", got)
	}

	badger := &Config{DataDir: "out", Store: dedup.Options{Backend: "badger"}}
	badger.SetDefaults()
	if badger.Store.Path != filepath.Join("out", "certs") {
		t.Errorf("badger path = %q", badger.Store.Path)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"unknown rule", func(c *Config) { c.Steps = []Step{{Rule: "x9", Input: rootBucket}} }},
		{"bad input bucket", func(c *Config) { c.Steps = []Step{{Rule: "e1", Input: bucket.Bucket{N: 6, M: 9, Type: "Root!"}}} }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "nope" }},
		{"redis without addr", func(c *Config) { c.Store.Backend = "redis" }},
		{"bad root tag", func(c *Config) { c.RootTag = "ROOT" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(cfg)
			if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.toml")
	src := `
data_dir = "out"
root = "K3"
workers = 2

[store]
backend = "memory"

[[step]]
rule = "e1"
input = { n = 6, m = 9, type = "rt" }

[[step]]
rule = "c1"
input = { n = 6, m = 10, type = "e1" }
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DataDir != "out" || cfg.Root != "K3" || cfg.Workers != 2 {
		t.Errorf("cfg = %+v", cfg)
	}
	want := []Step{{Rule: "e1", Input: rootBucket}, {Rule: "c1", Input: e1Bucket}}
	if len(cfg.Steps) != len(want) {
		t.Fatalf("steps = %v", cfg.Steps)
	}
	for i := range want {
		if cfg.Steps[i] != want[i] {
			t.Errorf("step %d = %v, want %v", i, cfg.Steps[i], want[i])
		}
	}
	if cfg.Summary != DefaultSummary {
		t.Errorf("Summary = %q", cfg.Summary)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing", filepath.Join(dir, "none.toml"), errors.ErrCodeNotFound},
		{"syntax", write("syntax.toml", "workers = = 2"), errors.ErrCodeInvalidConfig},
		{"unknown key", write("unknown.toml", "colour = \"red\""), errors.ErrCodeInvalidConfig},
		{"bad rule", write("rule.toml", "[[step]]\nrule = \"zz\"\n"), errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(tt.path); !errors.Is(err, tt.code) {
				t.Errorf("LoadConfig = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDefaultPlan(t *testing.T) {
	plan := DefaultPlan(6, 9)
	got := make([]string, len(plan))
	for i, s := range plan {
		got[i] = s.String()
	}
	want := "e1(6_9_rt) e2(6_10_e1) c1(6_10_e1) c1(6_11_e2) c2(7_11_c1) c3(6_11_e2)"
	if strings.Join(got, " ") != want {
		t.Errorf("DefaultPlan = %s", strings.Join(got, " "))
	}
	for _, s := range plan {
		if err := s.Validate(); err != nil {
			t.Errorf("%s: %v", s, err)
		}
	}
}

func TestExecuteEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := prismConfig(dir, 2, Step{Rule: "e1", Input: rootBucket})

	res, err := quietRunner(nil).Execute(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.RunID == "" {
		t.Error("empty run id")
	}
	if res.Seed.Stats.Admitted != 1 {
		t.Errorf("seed stats = %+v", res.Seed.Stats)
	}
	if len(res.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(res.Steps))
	}

	// The six prism non-edges form one orbit under the prism's symmetries.
	st := res.Steps[0]
	want := observabilityStats(1, 6, 1, 5)
	if st.Stats != want {
		t.Errorf("e1 stats = %+v, want %+v", st.Stats, want)
	}
	if len(st.Outputs) != 1 || st.Outputs[0] != e1Bucket {
		t.Errorf("outputs = %v", st.Outputs)
	}
	if n := countRecords(t, pkgio.Path(dir, rootBucket)); n != 1 {
		t.Errorf("root file has %d records", n)
	}
	if n := countRecords(t, pkgio.Path(dir, e1Bucket)); n != 1 {
		t.Errorf("e1 file has %d records", n)
	}

	rows := readSummary(t, cfg.SummaryPath())
	if len(rows) != 2 {
		t.Fatalf("summary rows = %d, want 2", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(SummaryHeader, ",") {
		t.Errorf("header = %v", rows[0])
	}
	row := rows[1]
	if row[0] != res.RunID || strings.Join(row[1:8], ",") != "1,e1,6_9_rt,1,6,1,5" {
		t.Errorf("row = %v", row)
	}
}

func mustRoot(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := roots.Builtin("PR")
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func observabilityStats(parents, children, admitted, dups int) observability.StepStats {
	return observability.StepStats{Parents: parents, Children: children, Admitted: admitted, Duplicates: dups}
}

func TestExecuteResume(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	step := Step{Rule: "e1", Input: rootBucket}
	ctx := context.Background()

	if _, err := quietRunner(fc).Execute(ctx, prismConfig(dir, 1, step)); err != nil {
		t.Fatalf("first run: %v", err)
	}
	rootDigest, _ := fileDigest(pkgio.Path(dir, rootBucket))

	// Fresh stores, same cache: the seed is recognized from the file and the
	// step is replayed from cache.
	res, err := quietRunner(fc).Execute(ctx, prismConfig(dir, 1, step))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Seed.Stats.Duplicates != 1 {
		t.Errorf("seed stats = %+v", res.Seed.Stats)
	}
	if again, _ := fileDigest(pkgio.Path(dir, rootBucket)); again != rootDigest {
		t.Error("reseeding changed the root file")
	}
	if !res.Steps[0].Stats.Cached || res.Steps[0].Stats.Admitted != 1 {
		t.Errorf("cached stats = %+v", res.Steps[0].Stats)
	}

	// Without a cache the step reruns and every child is a duplicate of the
	// record already on disk.
	res, err = quietRunner(nil).Execute(ctx, prismConfig(dir, 1, step))
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if got := res.Steps[0].Stats; got != observabilityStats(1, 6, 0, 6) {
		t.Errorf("rerun stats = %+v", got)
	}
	if n := countRecords(t, pkgio.Path(dir, e1Bucket)); n != 1 {
		t.Errorf("e1 file has %d records after rerun", n)
	}
	if rows := readSummary(t, filepath.Join(dir, DefaultSummary)); len(rows) != 4 {
		t.Errorf("summary rows = %d, want 4", len(rows))
	}
}

func TestExecuteDeterministicAcrossWorkers(t *testing.T) {
	steps := []Step{
		{Rule: "e1", Input: rootBucket},
		{Rule: "e2", Input: e1Bucket},
		{Rule: "c1", Input: e1Bucket},
	}
	ctx := context.Background()
	serial, parallel := t.TempDir(), t.TempDir()
	if _, err := quietRunner(nil).Execute(ctx, prismConfig(serial, 1, steps...)); err != nil {
		t.Fatalf("serial: %v", err)
	}
	if _, err := quietRunner(nil).Execute(ctx, prismConfig(parallel, 4, steps...)); err != nil {
		t.Fatalf("parallel: %v", err)
	}

	for _, b := range []bucket.Bucket{e1Bucket, e2Bucket, c1Bucket} {
		a, err := pkgio.ReadFile(pkgio.Path(serial, b))
		if err != nil {
			t.Fatalf("%s: %v", b, err)
		}
		p, err := pkgio.ReadFile(pkgio.Path(parallel, b))
		if err != nil {
			t.Fatalf("%s: %v", b, err)
		}
		if len(a) != len(p) {
			t.Fatalf("%s: %d vs %d records", b, len(a), len(p))
		}
		for i := range a {
			if !a[i].Graph.History().Equal(p[i].Graph.History()) {
				t.Errorf("%s record %d differs", b, i)
			}
		}
	}
}

func TestRunStepMissingInput(t *testing.T) {
	dir := t.TempDir()
	cfg := prismConfig(dir, 1)
	cfg.SetDefaults()
	res, err := quietRunner(nil).RunStep(context.Background(), cfg, Step{Rule: "c2", Input: c1Bucket})
	if err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if res.Stats != (observability.StepStats{}) || len(res.Outputs) != 0 {
		t.Errorf("res = %+v", res)
	}
}

func TestRunStepPreconditionFails(t *testing.T) {
	dir := t.TempDir()
	r := quietRunner(nil)
	cfg := prismConfig(dir, 2, Step{Rule: "c2", Input: rootBucket})
	_, err := r.Execute(context.Background(), cfg)
	if !errors.Is(err, errors.ErrCodeInvariantViolation) {
		t.Errorf("err = %v, want INVARIANT_VIOLATION", err)
	}
	if _, statErr := os.Stat(cfg.SummaryPath()); !os.IsNotExist(statErr) {
		t.Error("summary written for a run without finished steps")
	}
}

func TestRunStepPath(t *testing.T) {
	dir := t.TempDir()
	r := quietRunner(nil)
	cfg := prismConfig(dir, 1)
	cfg.SetDefaults()
	if _, err := r.Seed(context.Background(), dir, mustRoot(t)); err != nil {
		t.Fatal(err)
	}
	res, err := r.RunStep(context.Background(), cfg, Step{Rule: "e1", Path: pkgio.Path(dir, rootBucket)})
	if err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if res.Input != rootBucket || res.Stats.Admitted != 1 {
		t.Errorf("res = %+v", res)
	}
}

func TestExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := quietRunner(nil).Execute(ctx, prismConfig(t.TempDir(), 2, Step{Rule: "e1", Input: rootBucket}))
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu    sync.Mutex
	done  []observability.StepStats
	start int
}

func (h *recordingHooks) OnStepStart(context.Context, string, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.start++
}

func (h *recordingHooks) OnStepComplete(_ context.Context, _, _ string, s observability.StepStats, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done = append(h.done, s)
}

func TestPipelineHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	defer observability.Reset()

	_, err := quietRunner(nil).Execute(context.Background(), prismConfig(t.TempDir(), 1, Step{Rule: "e1", Input: rootBucket}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if h.start != 1 || len(h.done) != 1 {
		t.Fatalf("hooks start=%d done=%d", h.start, len(h.done))
	}
	if h.done[0].Admitted != 1 {
		t.Errorf("hook stats = %+v", h.done[0])
	}
}

func TestRunStepZeroConfig(t *testing.T) {
	dir := t.TempDir()
	r := quietRunner(nil)
	if _, err := r.Seed(context.Background(), dir, mustRoot(t)); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	cfg := &Config{DataDir: dir}
	res, err := r.RunStep(ctx, cfg, Step{Rule: "e1", Input: rootBucket})
	if err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", cfg.Workers, DefaultWorkers)
	}
	if res.Stats.Parents != 1 || res.Stats.Admitted != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if got := countRecords(t, pkgio.Path(dir, e1Bucket)); got != 1 {
		t.Errorf("records = %d, want 1", got)
	}
}

func TestRunStepInvalidConfig(t *testing.T) {
	cfg := &Config{DataDir: t.TempDir(), Workers: -1}
	_, err := quietRunner(nil).RunStep(context.Background(), cfg, Step{Rule: "e1", Input: rootBucket})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestApplyClampsWorkers(t *testing.T) {
	dir := t.TempDir()
	r := quietRunner(nil)
	if _, err := r.Seed(context.Background(), dir, mustRoot(t)); err != nil {
		t.Fatal(err)
	}
	rule := rules.Find("e1")
	outs, stats, err := r.apply(context.Background(), rule, pkgio.Path(dir, rootBucket), dir, 0)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(outs) != 1 || outs[0] != e1Bucket || stats.Children != 6 {
		t.Errorf("outs = %v, stats = %+v", outs, stats)
	}
}
