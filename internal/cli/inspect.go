package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/trigen/pkg/io"
	"github.com/matzehuels/trigen/pkg/rules"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		limit      int
		showCycles bool
	)

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "List the records of a bucket file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0], limit, showCycles)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "records to list (0 for all)")
	cmd.Flags().BoolVar(&showCycles, "cycles", false, "print the cycles of each listed record")

	return cmd
}

func (c *CLI) runInspect(path string, limit int, showCycles bool) error {
	r, err := pkgio.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	var (
		rows   [][]string
		listed []*rules.Candidate
		total  int
	)
	for cand, err := range r.All() {
		if err != nil {
			return fmt.Errorf("record %d: %w", total, err)
		}
		if limit <= 0 || total < limit {
			rows = append(rows, recordRow(total, cand))
			listed = append(listed, cand)
		}
		total++
	}

	printTable([]string{"#", "n", "m", "root", "steps", "last", "cycles"}, rows)
	if showCycles {
		for i, cand := range listed {
			printNewline()
			printInfo("Record %s", StyleNumber.Render(strconv.Itoa(i)))
			for cyc := range cand.Cycles.All() {
				printDetail("%s", cyc)
			}
		}
	}
	if total > len(rows) {
		printDetail("%d of %d records shown", len(rows), total)
	} else {
		printDetail("%d records", total)
	}
	return nil
}

func recordRow(i int, c *rules.Candidate) []string {
	h := c.Graph.History()
	last := "-"
	if t, ok := h.Last(); ok {
		last = string(t.Algorithm)
	}
	return []string{
		strconv.Itoa(i),
		strconv.Itoa(c.Graph.Size()),
		strconv.Itoa(c.Graph.EdgeCount()),
		h.Root,
		strconv.Itoa(h.Len()),
		last,
		strconv.Itoa(c.Cycles.Len()),
	}
}
