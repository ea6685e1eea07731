package check

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

// Outcome classifies a single check result
type Outcome int

const (
	OutcomePassed Outcome = iota
	OutcomeWarned
	OutcomeFailed
)

// Report collects check results and renders the readiness summary
type Report struct {
	FileResults       []FileCheckResult
	ValidationResults []ValidationResult
}

// NewReport creates an empty report
func NewReport() *Report {
	return &Report{
		FileResults:       make([]FileCheckResult, 0),
		ValidationResults: make([]ValidationResult, 0),
	}
}

// AddFileResult records a configuration file check
func (r *Report) AddFileResult(result FileCheckResult) {
	r.FileResults = append(r.FileResults, result)
}

// AddValidationResult records a configuration or runtime validation
func (r *Report) AddValidationResult(result ValidationResult) {
	r.ValidationResults = append(r.ValidationResults, result)
}

// Summary is the tally of a check run
type Summary struct {
	Passed  int
	Warned  int
	Failed  int
	Created []string
	// Notes are the individual warning messages, in check order
	Notes []string
}

// Ready reports whether reports can be generated with this environment.
// Warnings degrade it (PDF export, history) but do not block it.
func (s Summary) Ready() bool {
	return s.Failed == 0
}

// Headline is the one-line tally printed at the end of a check
func (s Summary) Headline() string {
	return fmt.Sprintf("Environment check: %d passed, %d warnings, %d failed", s.Passed, s.Warned, s.Failed)
}

// Verdict describes what the tally means for the report pipeline
func (s Summary) Verdict() string {
	switch {
	case !s.Ready():
		return "Report pipeline readiness: blocked, fix the failures above before serving"
	case s.Warned > 0:
		return "Report pipeline readiness: degraded, HTML rendering works but some exports may not"
	default:
		return "Report pipeline readiness: ready"
	}
}

func fileOutcome(r FileCheckResult) Outcome {
	switch {
	case r.Error != nil:
		return OutcomeFailed
	case !r.Exists && !r.Created:
		return OutcomeWarned
	default:
		return OutcomePassed
	}
}

func validationOutcome(r ValidationResult) Outcome {
	switch {
	case r.Error != nil:
		return OutcomeFailed
	case len(r.Warnings) > 0 || !r.Valid:
		return OutcomeWarned
	default:
		return OutcomePassed
	}
}

func (s *Summary) count(o Outcome) {
	switch o {
	case OutcomeFailed:
		s.Failed++
	case OutcomeWarned:
		s.Warned++
	default:
		s.Passed++
	}
}

// Summarize tallies every recorded result
func (r *Report) Summarize() Summary {
	var s Summary
	for _, f := range r.FileResults {
		s.count(fileOutcome(f))
		if f.Created {
			s.Created = append(s.Created, f.Path)
		}
		if !f.Exists && !f.Created && f.Error == nil {
			s.Notes = append(s.Notes, fmt.Sprintf("%s not found, defaults apply", f.Path))
		}
	}
	for _, v := range r.ValidationResults {
		s.count(validationOutcome(v))
		s.Notes = append(s.Notes, v.Warnings...)
	}
	return s
}

// Print writes the readiness summary to stdout
func (r *Report) Print() {
	r.Render(color.Output)
}

// Render writes the readiness summary to w
func (r *Report) Render(w io.Writer) {
	s := r.Summarize()

	rule := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	fmt.Fprintln(w, rule.Render(strings.Repeat("─", 50)))

	mark, c := "✓", color.New(color.FgGreen, color.Bold)
	switch {
	case !s.Ready():
		mark, c = "✗", color.New(color.FgRed, color.Bold)
	case s.Warned > 0:
		mark, c = "⚠", color.New(color.FgYellow, color.Bold)
	}
	c.Fprintf(w, "%s %s\n", mark, s.Headline())

	for _, path := range s.Created {
		fmt.Fprintf(w, "  + created %s\n", path)
	}
	for _, note := range s.Notes {
		fmt.Fprintf(w, "  - %s\n", note)
	}
	fmt.Fprintln(w, s.Verdict())
}
