// Package pipeline drives generation runs for trigen.
//
// A run seeds the root bucket and then walks an ordered plan of steps. Each
// step applies one rule to every graph of one input bucket, deduplicates
// the children per output bucket and appends the survivors to the bucket
// files. The CLI commands seed, apply and run all go through a [Runner].
//
// # Architecture
//
// A step has three stages:
//
//  1. Feed: parents are read from the input bucket file in order
//  2. Apply: a bounded pool of workers runs the rule on each parent
//  3. Admit: a single collector admits children in parent order and writes
//     them, so output is identical for any worker count
//
// Steps whose input file is unchanged since a previous run are skipped via
// the step cache.
//
// # Usage
//
//	cfg, err := pipeline.LoadConfig("plan.toml")
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(cache, nil, dd, logger)
//	result, err := runner.Execute(ctx, cfg)
//
// # Configuration
//
//	data_dir = "data"
//	root = "PR"
//	workers = 4
//	summary = "summary.csv"
//
//	[store]
//	backend = "memory"
//
//	[[step]]
//	rule = "e1"
//	input = { n = 6, m = 9, type = "rt" }
//
// When no steps are given, [DefaultPlan] derives one from the root size.
package pipeline

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/trigen/pkg/bucket"
	"github.com/matzehuels/trigen/pkg/dedup"
	"github.com/matzehuels/trigen/pkg/errors"
	"github.com/matzehuels/trigen/pkg/rules"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultDataDir holds bucket files and the summary.
	DefaultDataDir = "data"

	// DefaultRoot is the prism.
	DefaultRoot = "PR"

	// DefaultRootTag tags roots loaded from JSON files.
	DefaultRootTag = "UR"

	// DefaultSummary is the summary CSV name, relative to the data dir.
	DefaultSummary = "summary.csv"

	// DefaultBackend is the certificate store backend.
	DefaultBackend = "memory"
)

// DefaultWorkers is the worker count when none is configured.
var DefaultWorkers = runtime.NumCPU()

// =============================================================================
// Config
// =============================================================================

// Config describes a generation run. It decodes from TOML.
type Config struct {
	DataDir string        `toml:"data_dir"`
	Root    string        `toml:"root"`     // built-in tag or JSON file
	RootTag string        `toml:"root_tag"` // history tag of a JSON root
	Workers int           `toml:"workers"`
	Summary string        `toml:"summary"`
	Store   dedup.Options `toml:"store"`
	Steps   []Step        `toml:"step"`
}

// Step applies one rule to one input bucket.
type Step struct {
	Rule  string        `toml:"rule"`
	Input bucket.Bucket `toml:"input"`

	// Path overrides the input file location. The bucket is then parsed
	// from the file name when Input is empty.
	Path string `toml:"path,omitempty"`
}

// String formats s as "rule(input)".
func (s Step) String() string {
	return s.Rule + "(" + s.Input.String() + ")"
}

// LoadConfig reads a TOML plan. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "plan %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %v", path, undecoded)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns a config with every default applied and no steps.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills unset fields. Steps are left alone.
func (c *Config) SetDefaults() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.Root == "" {
		c.Root = DefaultRoot
	}
	if c.RootTag == "" {
		c.RootTag = DefaultRootTag
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.Summary == "" {
		c.Summary = DefaultSummary
	}
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultBackend
	}
	if c.Store.Backend == "badger" && c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.DataDir, "certs")
	}
}

// Validate rejects unknown rules, unknown backends and non-positive worker
// counts.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be positive, got %d", c.Workers)
	}
	if err := errors.ValidatePath(c.DataDir); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "data_dir")
	}
	if err := errors.ValidateTag(c.RootTag); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "root_tag")
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	for i, s := range c.Steps {
		if err := s.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "step %d", i)
		}
	}
	return nil
}

// Validate checks the rule name and the input bucket.
func (s Step) Validate() error {
	if rules.Find(s.Rule) == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown rule %q (available: %v)", s.Rule, rules.Names())
	}
	if s.Path != "" && s.Input == (bucket.Bucket{}) {
		return nil
	}
	return s.Input.Validate()
}

// SummaryPath resolves the summary file against the data dir.
func (c *Config) SummaryPath() string {
	if filepath.IsAbs(c.Summary) {
		return c.Summary
	}
	return filepath.Join(c.DataDir, c.Summary)
}

// =============================================================================
// Plans
// =============================================================================

// DefaultPlan returns the standard plan for a root with n vertices and m
// edges: one and two extensions, then each coextension rule on the
// buckets it accepts.
func DefaultPlan(n, m int) []Step {
	root := bucket.Of(n, m, bucket.RootType)
	e1 := bucket.Of(n, m+1, string(rules.E1.Name))
	e2 := bucket.Of(n, m+2, string(rules.E2.Name))
	c1 := bucket.Of(n+1, m+2, string(rules.C1.Name))
	return []Step{
		{Rule: "e1", Input: root},
		{Rule: "e2", Input: e1},
		{Rule: "c1", Input: e1},
		{Rule: "c1", Input: e2},
		{Rule: "c2", Input: c1},
		{Rule: "c3", Input: e2},
	}
}
