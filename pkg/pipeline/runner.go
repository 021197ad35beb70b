package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/trigen/pkg/bucket"
	"github.com/matzehuels/trigen/pkg/cache"
	"github.com/matzehuels/trigen/pkg/dedup"
	"github.com/matzehuels/trigen/pkg/errors"
	"github.com/matzehuels/trigen/pkg/graph"
	pkgio "github.com/matzehuels/trigen/pkg/io"
	"github.com/matzehuels/trigen/pkg/observability"
	"github.com/matzehuels/trigen/pkg/roots"
	"github.com/matzehuels/trigen/pkg/rules"
)

// Runner executes seeds and steps with caching and deduplication.
//
// Steps run one at a time; parallelism lives inside a step. A Runner keeps
// track of which bucket stores it has already warmed from their files, so
// reuse one Runner for the whole run.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Dedup  *dedup.Deduplicator
	Logger *log.Logger

	mu     sync.Mutex
	warmed map[bucket.Bucket]bool
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If dd is nil, an in-memory deduplicator is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, dd *dedup.Deduplicator, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if dd == nil {
		dd = dedup.New(nil, dedup.NewMemoryFactory())
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Dedup:  dd,
		Logger: logger,
		warmed: make(map[bucket.Bucket]bool),
	}
}

// Result describes a finished run.
type Result struct {
	RunID string
	Root  *graph.Graph
	Seed  StepResult
	Steps []StepResult
}

// StepResult describes one seed or step.
type StepResult struct {
	RunID    string
	Index    int
	Rule     string
	Input    bucket.Bucket
	Outputs  []bucket.Bucket
	Stats    observability.StepStats
	Duration time.Duration
}

// cachedStep is the step cache payload.
type cachedStep struct {
	Outputs []bucket.Bucket         `json:"outputs"`
	Stats   observability.StepStats `json:"stats"`
}

// Execute seeds the root and runs every step of cfg, appending one summary
// row per step. Steps stop at the first error; rows for the steps that
// finished are still written.
func (r *Runner) Execute(ctx context.Context, cfg *Config) (*Result, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	root, err := roots.Resolve(cfg.Root, cfg.RootTag)
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}

	res := &Result{RunID: uuid.NewString(), Root: root}
	r.Logger.Info("starting run", "run", res.RunID, "root", root.Root(),
		"n", root.Size(), "m", root.EdgeCount(), "store", r.Dedup.Backend(), "workers", cfg.Workers)

	seed, err := r.Seed(ctx, cfg.DataDir, root)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	seed.RunID = res.RunID
	res.Seed = seed

	steps := cfg.Steps
	if len(steps) == 0 {
		steps = DefaultPlan(root.Size(), root.EdgeCount())
	}

	var runErr error
	for i, s := range steps {
		sr, err := r.RunStep(ctx, cfg, s)
		sr.RunID = res.RunID
		sr.Index = i + 1
		if err != nil {
			runErr = fmt.Errorf("step %d %s: %w", i+1, s, err)
			break
		}
		res.Steps = append(res.Steps, sr)
	}

	if len(res.Steps) > 0 {
		if err := AppendSummary(cfg.SummaryPath(), res.Steps); err != nil && runErr == nil {
			runErr = err
		}
	}
	return res, runErr
}

// Seed admits root to its bucket and writes it when new.
func (r *Runner) Seed(ctx context.Context, dir string, root *graph.Graph) (StepResult, error) {
	start := time.Now()
	c := rules.Seed(root)
	b := bucket.Of(root.Size(), root.EdgeCount(), bucket.RootType)
	res := StepResult{Rule: bucket.RootType, Input: b, Stats: observability.StepStats{Children: 1}}

	out := newSink(r, dir)
	ok, err := out.admit(ctx, b, c)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return res, err
	}
	if ok {
		res.Stats.Admitted = 1
		res.Outputs = []bucket.Bucket{b}
	} else {
		res.Stats.Duplicates = 1
	}
	res.Duration = time.Since(start)
	r.Logger.Info("seeded root", "bucket", b, "cycles", c.Cycles.Len(), "new", ok)
	return res, nil
}

// RunStep applies one step. cfg is filled with defaults and validated
// first. A missing input file skips the step with a warning and zero stats.
func (r *Runner) RunStep(ctx context.Context, cfg *Config, s Step) (res StepResult, err error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return res, err
	}
	rule := rules.Find(s.Rule)
	if rule == nil {
		return res, errors.New(errors.ErrCodeInvalidConfig, "unknown rule %q", s.Rule)
	}
	path := s.Path
	if path == "" {
		path = pkgio.Path(cfg.DataDir, s.Input)
	} else if s.Input == (bucket.Bucket{}) {
		if s.Input, err = pkgio.BucketOf(path); err != nil {
			return res, err
		}
	}
	res.Rule, res.Input = s.Rule, s.Input

	hooks := observability.Pipeline()
	hooks.OnStepStart(ctx, s.Rule, s.Input.String())
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		hooks.OnStepComplete(ctx, s.Rule, s.Input.String(), res.Stats, res.Duration, err)
	}()

	digest, err := fileDigest(path)
	if os.IsNotExist(err) {
		r.Logger.Warn("input bucket missing, skipping step", "rule", s.Rule, "input", s.Input)
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("digest %s: %w", path, err)
	}

	key := r.Keyer.StepKey(s.Rule, s.Input.String(), digest, cache.StepKeyOpts{
		Store:   r.Dedup.Backend(),
		DataDir: cfg.DataDir,
	})
	if cached, ok := r.cachedStep(ctx, cfg.DataDir, key); ok {
		res.Outputs = cached.Outputs
		res.Stats = cached.Stats
		res.Stats.Cached = true
		r.Logger.Info("step cached", "rule", s.Rule, "input", s.Input, "admitted", res.Stats.Admitted)
		return res, nil
	}

	res.Outputs, res.Stats, err = r.apply(ctx, rule, path, cfg.DataDir, cfg.Workers)
	if err != nil {
		return res, err
	}
	r.storeStep(ctx, key, cachedStep{Outputs: res.Outputs, Stats: res.Stats})

	r.Logger.Info("step complete",
		"rule", s.Rule,
		"input", s.Input,
		"parents", res.Stats.Parents,
		"children", res.Stats.Children,
		"admitted", res.Stats.Admitted,
		"duplicates", res.Stats.Duplicates,
		"duration", time.Since(start))
	return res, nil
}

// cachedStep returns the cached outcome of key when every output file
// still exists.
func (r *Runner) cachedStep(ctx context.Context, dir, key string) (cachedStep, bool) {
	var out cachedStep
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "step")
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		observability.Cache().OnCacheMiss(ctx, "step")
		return out, false
	}
	for _, b := range out.Outputs {
		if _, err := os.Stat(pkgio.Path(dir, b)); err != nil {
			observability.Cache().OnCacheMiss(ctx, "step")
			return out, false
		}
	}
	observability.Cache().OnCacheHit(ctx, "step")
	return out, true
}

func (r *Runner) storeStep(ctx context.Context, key string, s cachedStep) {
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, 0); err != nil {
		r.Logger.Debug("step cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "step", len(data))
}

type job struct {
	idx    int
	parent *rules.Candidate
}

type result struct {
	idx      int
	children []*rules.Candidate
}

// apply fans the parents of path out to workers and admits the children
// in parent order.
func (r *Runner) apply(ctx context.Context, rule *rules.Rule, path, dir string, workers int) ([]bucket.Bucket, observability.StepStats, error) {
	var stats observability.StepStats
	in, err := pkgio.Open(path)
	if err != nil {
		return nil, stats, err
	}
	defer in.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers = max(workers, 1)
	jobs := make(chan job, workers*2)
	results := make(chan result, workers*2)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		idx := 0
		for parent, err := range in.All() {
			if err != nil {
				return err
			}
			select {
			case jobs <- job{idx: idx, parent: parent}:
				idx++
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for range workers {
		g.Go(func() error {
			for j := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				kids, err := expand(rule, j.parent)
				if err != nil {
					return fmt.Errorf("parent %d: %w", j.idx, err)
				}
				select {
				case results <- result{idx: j.idx, children: kids}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
		close(results)
	}()

	out := newSink(r, dir)
	cerr := r.collect(ctx, string(rule.Name), results, out, &stats, cancel)
	werr := <-done
	if err := out.Close(); err != nil && cerr == nil {
		cerr = err
	}
	if cerr != nil {
		return nil, stats, cerr
	}
	if werr != nil {
		return nil, stats, werr
	}
	return out.buckets(), stats, nil
}

// collect admits children in parent order. After a failure it keeps
// draining results so the workers can exit.
func (r *Runner) collect(ctx context.Context, typ string, results <-chan result, out *sink, stats *observability.StepStats, cancel context.CancelFunc) error {
	pending := make(map[int][]*rules.Candidate)
	next := 0
	var failed error
	for res := range results {
		if failed != nil {
			continue
		}
		pending[res.idx] = res.children
		for failed == nil {
			kids, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			stats.Parents++
			for _, c := range kids {
				stats.Children++
				b := bucket.Of(c.Graph.Size(), c.Graph.EdgeCount(), typ)
				ok, err := out.admit(ctx, b, c)
				if err != nil {
					failed = err
					cancel()
					break
				}
				if ok {
					stats.Admitted++
				} else {
					stats.Duplicates++
				}
			}
		}
		if next%1000 == 0 && next > 0 {
			r.Logger.Debug("progress", "rule", typ, "parents", next, "admitted", stats.Admitted)
		}
	}
	return failed
}

// expand collects every child of parent.
func expand(rule *rules.Rule, parent *rules.Candidate) ([]*rules.Candidate, error) {
	seq, err := rule.Apply(parent)
	if err != nil {
		return nil, err
	}
	var kids []*rules.Candidate
	for c, err := range seq {
		if err != nil {
			return nil, err
		}
		kids = append(kids, c)
	}
	return kids, nil
}

// warm admits the graphs already stored in b's file, so that an empty
// store does not readmit them. It runs once per bucket and runner.
func (r *Runner) warm(ctx context.Context, b bucket.Bucket, path string) error {
	r.mu.Lock()
	done := r.warmed[b]
	r.warmed[b] = true
	r.mu.Unlock()
	if done {
		return nil
	}

	store, err := r.Dedup.Store(ctx, b)
	if err != nil {
		return err
	}
	if n, err := store.Len(ctx); err != nil || n > 0 {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	in, err := pkgio.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	n := 0
	for c, err := range in.All() {
		if err != nil {
			return fmt.Errorf("warm %s: %w", b, err)
		}
		if _, err := r.Dedup.Admit(ctx, b, c.Graph); err != nil {
			return err
		}
		n++
	}
	r.Logger.Debug("warmed store from file", "bucket", b, "records", n)
	return nil
}

// sink holds the open output files of one step.
type sink struct {
	r       *Runner
	dir     string
	writers map[bucket.Bucket]*pkgio.Writer
	order   []bucket.Bucket
}

func newSink(r *Runner, dir string) *sink {
	return &sink{r: r, dir: dir, writers: make(map[bucket.Bucket]*pkgio.Writer)}
}

// admit deduplicates c in b and writes it when new. Files are opened on
// the first admitted record only, so a step without new graphs leaves the
// bucket files untouched.
func (s *sink) admit(ctx context.Context, b bucket.Bucket, c *rules.Candidate) (bool, error) {
	path := pkgio.Path(s.dir, b)
	if err := s.r.warm(ctx, b, path); err != nil {
		return false, err
	}
	ok, err := s.r.Dedup.Admit(ctx, b, c.Graph)
	if err != nil || !ok {
		return false, err
	}
	w, ok := s.writers[b]
	if !ok {
		if w, err = pkgio.Create(path); err != nil {
			return false, err
		}
		s.writers[b] = w
		s.order = append(s.order, b)
	}
	return true, w.Write(c)
}

// buckets lists the buckets written to, in first-write order.
func (s *sink) buckets() []bucket.Bucket { return s.order }

// Close closes every writer.
func (s *sink) Close() error {
	var first error
	for _, b := range s.order {
		if err := s.writers[b].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// fileDigest hashes the content of path.
func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return cache.HashReader(f)
}

// Close releases the cache and the deduplicator.
func (r *Runner) Close() error {
	cerr := r.Cache.Close()
	derr := r.Dedup.Close()
	if cerr != nil {
		return cerr
	}
	return derr
}
