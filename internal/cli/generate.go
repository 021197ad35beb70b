package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/trigen/pkg/bucket"
	pkgio "github.com/matzehuels/trigen/pkg/io"
	"github.com/matzehuels/trigen/pkg/pipeline"
	"github.com/matzehuels/trigen/pkg/roots"
	"github.com/matzehuels/trigen/pkg/rules"
)

// seedCommand creates the seed command.
func (c *CLI) seedCommand() *cobra.Command {
	cfg := pipeline.Config{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the root bucket file",
		Long: `Write the root graph to its bucket file DIR/<n>_<m>_rt.jsonl.gz.

The root is a built-in tag (` + fmt.Sprint(roots.Tags()) + `) or a JSON file holding a
square 0/1 adjacency matrix. Seeding twice does not duplicate the root.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSeed(cmd.Context(), &cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.Root, "root", pipeline.DefaultRoot, "built-in root tag or JSON adjacency file")
	cmd.Flags().StringVar(&cfg.RootTag, "tag", pipeline.DefaultRootTag, "history tag for a JSON root")
	cmd.Flags().StringVarP(&cfg.DataDir, "out", "o", pipeline.DefaultDataDir, "output directory")

	return cmd
}

func (c *CLI) runSeed(ctx context.Context, cfg *pipeline.Config) error {
	root, err := roots.Resolve(cfg.Root, cfg.RootTag)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Seed(ctx, cfg.DataDir, root)
	if err != nil {
		return err
	}
	if res.Stats.Admitted == 1 {
		printSuccess("Seeded %s", StyleHighlight.Render(root.Root()))
	} else {
		printInfo("Root %s already present", StyleHighlight.Render(root.Root()))
	}
	printFile(pkgio.Path(cfg.DataDir, res.Input))
	return nil
}

// applyCommand creates the apply command.
func (c *CLI) applyCommand() *cobra.Command {
	var input string
	cfg := pipeline.Config{}

	cmd := &cobra.Command{
		Use:   "apply RULE",
		Short: "Apply one rule to one bucket file",
		Long: `Apply one rule to every graph of a bucket file.

Children are deduplicated per output bucket and appended to
DIR/<n>_<m>_<rule>.jsonl.gz. One summary row is appended per call.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: rules.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runApply(cmd.Context(), &cfg, pipeline.Step{Rule: args[0], Path: input})
		},
	}

	cmd.Flags().StringVarP(&input, "in", "i", "", "input bucket file")
	cmd.Flags().StringVarP(&cfg.DataDir, "out", "o", pipeline.DefaultDataDir, "output directory")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func (c *CLI) runApply(ctx context.Context, cfg *pipeline.Config, step pipeline.Step) error {
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.RunStep(ctx, cfg, step)
	if err != nil {
		return err
	}
	res.RunID = uuid.NewString()
	res.Index = 1
	if err := pipeline.AppendSummary(cfg.SummaryPath(), []pipeline.StepResult{res}); err != nil {
		return err
	}

	printSteps([]pipeline.StepResult{res})
	for _, path := range outputFiles(cfg.DataDir, res.Outputs) {
		printFile(path)
	}
	return nil
}

// outputFiles returns the bucket file paths of outputs under dir.
func outputFiles(dir string, outputs []bucket.Bucket) []string {
	paths := make([]string, 0, len(outputs))
	for _, b := range outputs {
		paths = append(paths, pkgio.Path(dir, b))
	}
	return paths
}

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	var (
		planPath string
		root     string
		dataDir  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Seed the root and walk a plan of steps",
		Long: `Seed the root and walk a plan of steps.

Without --plan the built-in plan is used: e1 and e2 on the root, then c1,
c2 and c3 on the buckets they accept. A TOML plan lists steps as

  [[step]]
  rule = "e1"
  input = { n = 6, m = 9, type = "rt" }

Steps whose input file is unchanged since an earlier run are replayed from
the step cache unless --no-cache is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := pipeline.DefaultConfig()
			if planPath != "" {
				var err error
				if cfg, err = pipeline.LoadConfig(planPath); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("root") {
				cfg.Root = root
			}
			if cmd.Flags().Changed("out") {
				cfg.DataDir = dataDir
			}
			return c.runPlan(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "TOML plan file")
	cmd.Flags().StringVar(&root, "root", pipeline.DefaultRoot, "root tag or JSON file (overrides the plan)")
	cmd.Flags().StringVarP(&dataDir, "out", "o", pipeline.DefaultDataDir, "output directory (overrides the plan)")

	return cmd
}

func (c *CLI) runPlan(ctx context.Context, cfg *pipeline.Config) error {
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, runErr := runner.Execute(ctx, cfg)
	if res != nil && len(res.Steps) > 0 {
		printSteps(res.Steps)
	}
	if runErr != nil {
		return runErr
	}
	prog.done(fmt.Sprintf("Finished run %s", res.RunID))
	printKeyValue("Data", cfg.DataDir)
	printKeyValue("Summary", cfg.SummaryPath())
	return nil
}
