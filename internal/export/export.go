// Package export moves bake data across the process boundary: a full
// JSON snapshot for backup, and a plain-text formula block that can be
// pasted into a message and parsed back.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hammamikhairi/proofbox/internal/domain"
	"github.com/hammamikhairi/proofbox/internal/idgen"
)

// Snapshot is the complete exportable state.
type Snapshot struct {
	Formulas   []*domain.Formula `json:"formulas"`
	History    []*domain.Bake    `json:"bakeHistory"`
	Settings   *domain.Settings  `json:"settings"`
	ExportedAt time.Time         `json:"exportedAt"`
}

// Build assembles a snapshot from the stores. The active bake is
// deliberately excluded: an in-flight bake is not portable state.
func Build(ctx context.Context, formulas domain.FormulaSource, bakes domain.BakeStore, settings domain.SettingsStore) (*Snapshot, error) {
	summaries, err := formulas.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing formulas: %w", err)
	}
	full := make([]*domain.Formula, 0, len(summaries))
	for _, s := range summaries {
		f, err := formulas.Get(ctx, s.ID)
		if err != nil {
			return nil, fmt.Errorf("getting formula %s: %w", s.ID, err)
		}
		full = append(full, f)
	}

	history, err := bakes.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	set, err := settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	return &Snapshot{
		Formulas:   full,
		History:    history,
		Settings:   set,
		ExportedAt: time.Now(),
	}, nil
}

// Write serializes the snapshot into dir and returns the file path.
// The filename carries a timestamp so repeated exports never collide.
func Write(snap *Snapshot, dir string) (string, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	name := fmt.Sprintf("sourdough-data-%s.json", snap.ExportedAt.Format("2006-01-02-150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return path, nil
}

// Read loads a snapshot file written by Write.
func Read(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}

// FormatFormula renders a formula as a shareable text block.
func FormatFormula(f *domain.Formula) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sourdough Formula: %s\n", f.Name)
	fmt.Fprintf(&b, "Total dough: %sg\n", trimFloat(f.TotalDoughG))
	fmt.Fprintf(&b, "Hydration: %s%%\n", trimFloat(f.HydrationPct))
	fmt.Fprintf(&b, "Salt: %s%%\n", trimFloat(f.SaltPct))
	fmt.Fprintf(&b, "Levain: %s%%\n", trimFloat(f.LevainPct))
	if f.LevainHydrationPct != nil {
		fmt.Fprintf(&b, "Levain hydration: %s%%\n", trimFloat(*f.LevainHydrationPct))
	}
	if f.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", f.Notes)
	}
	return b.String()
}

// Share-text field patterns. Case-insensitive, tolerant of extra
// whitespace and a missing % suffix.
var (
	reName    = regexp.MustCompile(`(?i)sourdough formula:\s*(.+)`)
	reTotal   = regexp.MustCompile(`(?i)total dough:\s*([\d.]+)\s*g?`)
	reHydra   = regexp.MustCompile(`(?i)^hydration:\s*([\d.]+)\s*%?`)
	reSalt    = regexp.MustCompile(`(?i)salt:\s*([\d.]+)\s*%?`)
	reLevain  = regexp.MustCompile(`(?i)^levain:\s*([\d.]+)\s*%?`)
	reLevainH = regexp.MustCompile(`(?i)levain hydration:\s*([\d.]+)\s*%?`)
	reNotes   = regexp.MustCompile(`(?i)notes:\s*(.+)`)
)

// ParseFormula is the inverse of FormatFormula. Required fields that
// cannot be found are collected into a ParseError rather than failing
// on the first one.
func ParseFormula(text string) (*domain.Formula, error) {
	f := &domain.Formula{ID: idgen.New(), Version: 1}
	var missing []string

	lines := strings.Split(text, "\n")
	find := func(re *regexp.Regexp) (string, bool) {
		for _, line := range lines {
			if m := re.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				return strings.TrimSpace(m[1]), true
			}
		}
		return "", false
	}
	findFloat := func(re *regexp.Regexp, field string, dst *float64) {
		raw, ok := find(re)
		if !ok {
			missing = append(missing, field)
			return
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			missing = append(missing, field)
			return
		}
		*dst = v
	}

	if name, ok := find(reName); ok {
		f.Name = name
	} else {
		missing = append(missing, "name")
	}
	findFloat(reTotal, "total dough", &f.TotalDoughG)
	findFloat(reHydra, "hydration", &f.HydrationPct)
	findFloat(reSalt, "salt", &f.SaltPct)
	findFloat(reLevain, "levain", &f.LevainPct)

	if raw, ok := find(reLevainH); ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			f.LevainHydrationPct = &v
		}
	}
	if notes, ok := find(reNotes); ok {
		f.Notes = notes
	}

	if len(missing) > 0 {
		return nil, &domain.ParseError{
			Missing: missing,
			Reason:  "text does not look like a shared formula",
		}
	}
	return f, nil
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
