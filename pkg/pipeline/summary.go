package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// SummaryHeader is the first row of a summary file.
var SummaryHeader = []string{
	"run_id", "step", "rule", "input", "parents", "children", "admitted", "duplicates", "seconds",
}

// Row formats s as one summary row.
func (s StepResult) Row() []string {
	return []string{
		s.RunID,
		strconv.Itoa(s.Index),
		s.Rule,
		s.Input.String(),
		strconv.Itoa(s.Stats.Parents),
		strconv.Itoa(s.Stats.Children),
		strconv.Itoa(s.Stats.Admitted),
		strconv.Itoa(s.Stats.Duplicates),
		strconv.FormatFloat(s.Duration.Seconds(), 'f', 3, 64),
	}
}

// AppendSummary appends one row per step to the CSV at path, writing the
// header first when the file is new.
func AppendSummary(path string, steps []StepResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	_, statErr := os.Stat(path)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if os.IsNotExist(statErr) {
		if err := w.Write(SummaryHeader); err != nil {
			return err
		}
	}
	for _, s := range steps {
		if err := w.Write(s.Row()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
