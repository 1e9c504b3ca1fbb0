// Package secrets scans folder previews for leaked credentials before they
// reach compressed output.
package secrets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// Finding is a single detected secret's location.
type Finding struct {
	RuleID string
	Line   int
	Start  int
	End    int
	Match  string
}

// Detect scans content for secrets using Gitleaks' default 800+ pattern
// ruleset.
func Detect(content string) ([]Finding, error) {
	d, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("secrets: building detector: %w", err)
	}
	raw := d.DetectString(content)
	findings := make([]Finding, 0, len(raw))
	for _, f := range raw {
		findings = append(findings, Finding{
			RuleID: f.RuleID,
			Line:   f.StartLine,
			Start:  f.StartColumn,
			End:    f.EndColumn,
			Match:  f.Secret,
		})
	}
	return findings, nil
}

// Redact replaces every detected secret in content with a
// "[REDACTED:rule-id:preview]" marker, preserving line structure so the
// surrounding preview stays useful. Findings are applied in reverse
// line/column order so earlier rewrites don't shift the offsets of later
// ones on the same line.
func Redact(content string) (string, []Finding, error) {
	findings, err := Detect(content)
	if err != nil {
		return content, nil, err
	}
	if len(findings) == 0 {
		return content, findings, nil
	}

	sorted := make([]Finding, len(findings))
	copy(sorted, findings)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Line != sorted[j].Line {
			return sorted[i].Line > sorted[j].Line
		}
		return sorted[i].Start > sorted[j].Start
	})

	lines := strings.Split(content, "\n")
	for _, f := range sorted {
		if f.Line < 1 || f.Line > len(lines) {
			continue
		}
		line := lines[f.Line-1]
		// Start/End are gitleaks' 1-indexed, inclusive column numbers;
		// convert to a 0-indexed, end-exclusive byte range for slicing.
		start, end := f.Start-1, f.End
		if start < 0 || end > len(line) || start > end {
			continue
		}
		marker := fmt.Sprintf("[REDACTED:%s:%s]", f.RuleID, preview(f.Match))
		lines[f.Line-1] = line[:start] + marker + line[end:]
	}
	return strings.Join(lines, "\n"), findings, nil
}

func preview(s string) string {
	if len(s) <= 4 {
		return s
	}
	return s[:4]
}
