package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trigen/pkg/errors"
	"github.com/matzehuels/trigen/pkg/graph"
	pkgio "github.com/matzehuels/trigen/pkg/io"
	"github.com/matzehuels/trigen/pkg/pipeline"
	"github.com/matzehuels/trigen/pkg/roots"
)

// verifyCommand creates the verify command.
func (c *CLI) verifyCommand() *cobra.Command {
	var root, tag string

	cmd := &cobra.Command{
		Use:   "verify FILE",
		Short: "Replay and check every record of a bucket file",
		Long: `Replay the history of every record from its root and check the result.

A record passes when the replayed graph equals the stored one, its edge
count matches its adjacency and every tracked cycle is a cycle of the graph.
Records whose cycle set misses cycles are counted as incomplete.

Without --root each record is replayed from the built-in root named by its
history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVerify(cmd.Context(), args[0], root, tag)
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "root tag or JSON adjacency file")
	cmd.Flags().StringVar(&tag, "tag", pipeline.DefaultRootTag, "history tag for a JSON root")

	return cmd
}

// verifyResult tallies a verify run.
type verifyResult struct {
	Checked    int
	Incomplete int
	Failed     int
}

func (c *CLI) runVerify(ctx context.Context, path, rootRef, tag string) error {
	var fixed *graph.Graph
	if rootRef != "" {
		g, err := roots.Resolve(rootRef, tag)
		if err != nil {
			return err
		}
		fixed = g
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Verifying "+path)
	spinner.Start()

	res, err := c.verifyFile(ctx, path, fixed, spinner)
	spinner.Stop()
	if err != nil {
		return err
	}

	if res.Incomplete > 0 {
		printWarning("%d of %d records track an incomplete cycle set", res.Incomplete, res.Checked)
	}
	if res.Failed > 0 {
		printError("%d of %d records failed", res.Failed, res.Checked)
		return errors.New(errors.ErrCodeInvariantViolation, "%d records failed verification", res.Failed)
	}
	prog.done(fmt.Sprintf("Verified %d records", res.Checked))
	return nil
}

func (c *CLI) verifyFile(ctx context.Context, path string, fixed *graph.Graph, spinner *Spinner) (verifyResult, error) {
	var res verifyResult

	r, err := pkgio.Open(path)
	if err != nil {
		return res, err
	}
	defer r.Close()

	builtins := make(map[string]*graph.Graph)
	rootFor := func(tag string) (*graph.Graph, error) {
		if fixed != nil {
			return fixed, nil
		}
		if g, ok := builtins[tag]; ok {
			return g, nil
		}
		g, err := roots.Builtin(tag)
		if err != nil {
			return nil, err
		}
		builtins[tag] = g
		return g, nil
	}

	for cand, err := range r.All() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		if err != nil {
			return res, fmt.Errorf("record %d: %w", res.Checked, err)
		}
		root, err := rootFor(cand.Graph.Root())
		if err != nil {
			return res, err
		}

		report, err := roots.Verify(cand, root)
		switch {
		case err != nil:
			res.Failed++
			c.Logger.Warn("record failed", "index", res.Checked, "code", errors.GetCode(err), "error", err)
		case !report.Complete():
			res.Incomplete++
			c.Logger.Debug("incomplete cycle set", "index", res.Checked, "tracked", report.Tracked, "actual", report.Actual)
		}
		res.Checked++
		if res.Checked%100 == 0 {
			spinner.Update(fmt.Sprintf("Verifying %s (%d records)", path, res.Checked))
		}
	}
	return res, nil
}
