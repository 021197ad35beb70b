package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trigen/pkg/errors"
	pkgio "github.com/matzehuels/trigen/pkg/io"
	"github.com/matzehuels/trigen/pkg/render"
	"github.com/matzehuels/trigen/pkg/rules"
)

// renderOpts holds the render command flags.
type renderOpts struct {
	index    int
	output   string
	format   string
	layout   string
	detailed bool
	cycle    int
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Draw one record of a bucket file",
		Long: `Draw one record of a bucket file as SVG or DOT.

Edges added by the last transformation are drawn thick. With --cycle the
chosen cycle of the record is drawn in color.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.index, "index", 0, "record index in the file")
	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "output file (default: derived from FILE)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "svg", "output format: svg, dot")
	cmd.Flags().StringVar(&opts.layout, "layout", render.DefaultLayout, "graphviz layout engine")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label the drawing with root and history length")
	cmd.Flags().IntVar(&opts.cycle, "cycle", -1, "highlight the cycle with this index")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	if opts.format != "svg" && opts.format != "dot" {
		return errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (use svg or dot)", opts.format)
	}

	cand, err := readRecord(path, opts.index)
	if err != nil {
		return err
	}

	ropts := render.Options{Layout: opts.layout, Detailed: opts.detailed}
	if opts.cycle >= 0 {
		cs := cand.Cycles.Cycles()
		if opts.cycle >= len(cs) {
			return errors.New(errors.ErrCodeOutOfRange, "cycle %d out of range (record has %d)", opts.cycle, len(cs))
		}
		ropts.Highlight = &cs[opts.cycle]
	}

	out := []byte(render.ToDOT(cand.Graph, ropts))
	if opts.format == "svg" {
		if out, err = render.RenderSVG(ctx, string(out)); err != nil {
			return err
		}
	}

	dest := opts.output
	if dest == "" {
		dest = fmt.Sprintf("%s_%d.%s", strings.TrimSuffix(path, pkgio.Ext), opts.index, opts.format)
	}
	if err := os.WriteFile(dest, out, 0o644); err != nil {
		return err
	}
	printSuccess("Rendered record %d", opts.index)
	printFile(dest)
	return nil
}

// readRecord returns the record at index in the bucket file at path.
func readRecord(path string, index int) (*rules.Candidate, error) {
	if index < 0 {
		return nil, errors.New(errors.ErrCodeOutOfRange, "negative record index %d", index)
	}
	r, err := pkgio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	i := 0
	for cand, err := range r.All() {
		if err != nil {
			return nil, err
		}
		if i == index {
			return cand, nil
		}
		i++
	}
	return nil, errors.New(errors.ErrCodeOutOfRange, "record %d out of range (file has %d)", index, i)
}
