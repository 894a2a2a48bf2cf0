package booking

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// LogLevel represents the console verbosity level
type LogLevel int

const (
	// LogLevelQuiet shows only critical information (errors, warnings, final summary)
	LogLevelQuiet LogLevel = iota
	// LogLevelNormal shows standard execution progress (default)
	LogLevelNormal
	// LogLevelVerbose shows detailed execution information
	LogLevelVerbose
	// LogLevelDebug shows all internal details for debugging
	LogLevelDebug
)

// ParseLogLevel maps a config verbosity name to a LogLevel.
// Unknown names map to LogLevelNormal.
func ParseLogLevel(name string) LogLevel {
	switch strings.ToLower(name) {
	case "quiet":
		return LogLevelQuiet
	case "verbose":
		return LogLevelVerbose
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelNormal
	}
}

// Reporter prints run progress to the console.
type Reporter struct {
	level  LogLevel
	writer io.Writer

	header  lipgloss.Style
	step    lipgloss.Style
	success lipgloss.Style
	info    lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style

	stepCount int
}

// NewReporter creates a reporter writing to stdout.
func NewReporter(level LogLevel) *Reporter {
	return NewReporterTo(os.Stdout, level)
}

// NewReporterTo creates a reporter writing to w. Colours are only emitted
// when w is a terminal that supports them.
func NewReporterTo(w io.Writer, level LogLevel) *Reporter {
	r := lipgloss.NewRenderer(w)
	return &Reporter{
		level:   level,
		writer:  w,
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		step:    r.NewStyle().Foreground(lipgloss.Color("6")),
		success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		info:    r.NewStyle().Foreground(lipgloss.Color("217")), // Salmon pink
		warning: r.NewStyle().Foreground(lipgloss.Color("3")),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (r *Reporter) println(style lipgloss.Style, text string) {
	fmt.Fprintln(r.writer, style.Render(text))
}

// Header prints a prominent header message
func (r *Reporter) Header(message string) {
	if r.level >= LogLevelNormal {
		rule := strings.Repeat("=", 70)
		fmt.Fprintln(r.writer)
		r.println(r.header, rule)
		r.println(r.header, "  "+message)
		r.println(r.header, rule)
	}
}

// Step prints a numbered step in the execution
func (r *Reporter) Step(message string) {
	if r.level >= LogLevelNormal {
		r.stepCount++
		fmt.Fprintln(r.writer)
		r.println(r.step, fmt.Sprintf("[%d] %s", r.stepCount, message))
	}
}

// Successf prints a success message with checkmark
func (r *Reporter) Successf(format string, args ...interface{}) {
	if r.level >= LogLevelNormal {
		r.println(r.success, "✓ "+fmt.Sprintf(format, args...))
	}
}

// Infof prints an informational message
func (r *Reporter) Infof(format string, args ...interface{}) {
	if r.level >= LogLevelNormal {
		r.println(r.info, fmt.Sprintf(format, args...))
	}
}

// Warningf prints a warning message
func (r *Reporter) Warningf(format string, args ...interface{}) {
	if r.level >= LogLevelQuiet {
		r.println(r.warning, "⚠ Warning: "+fmt.Sprintf(format, args...))
	}
}

// Errorf prints an error message
func (r *Reporter) Errorf(format string, args ...interface{}) {
	if r.level >= LogLevelQuiet {
		r.println(r.failure, "✗ Error: "+fmt.Sprintf(format, args...))
	}
}

// Verbosef prints detailed information (only in verbose mode)
func (r *Reporter) Verbosef(format string, args ...interface{}) {
	if r.level >= LogLevelVerbose {
		r.println(r.muted, "→ "+fmt.Sprintf(format, args...))
	}
}

// Debugf prints debug information (only in debug mode)
func (r *Reporter) Debugf(format string, args ...interface{}) {
	if r.level >= LogLevelDebug {
		r.println(r.muted, "[DEBUG] "+fmt.Sprintf(format, args...))
	}
}

// Summary prints the final run summary. It is shown at every level.
func (r *Reporter) Summary(res *Result) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(r.writer)
	r.println(r.header, rule)
	r.println(r.header, "  RUN SUMMARY")
	r.println(r.header, rule)

	fmt.Fprint(r.writer, "  Status: ")
	switch res.Status {
	case StatusSuccess:
		r.println(r.success, "✓ RESERVED")
	case StatusDryRun:
		r.println(r.warning, "◌ DRY RUN (nothing booked)")
	case StatusFailed:
		r.println(r.failure, "✗ FAILED")
	default:
		fmt.Fprintln(r.writer, res.Status)
	}

	fmt.Fprintf(r.writer, "  Venue: %s\n", res.Venue)
	fmt.Fprintf(r.writer, "  Date: %s, party of %d\n", res.Date, res.PartySize)
	if res.Slot != "" {
		fmt.Fprintf(r.writer, "  Slot: %s\n", res.Slot)
	}
	fmt.Fprintf(r.writer, "  Duration: %s\n", res.Duration.Round(time.Second))

	if res.Error != "" {
		if res.FailedStep != "" {
			fmt.Fprintf(r.writer, "  Failed step: %s\n", res.FailedStep)
		}
		r.println(r.failure, "  Error: "+res.Error)
	}
	if res.Screenshot != "" && r.level >= LogLevelNormal {
		r.println(r.muted, "  Screenshot: "+res.Screenshot)
	}
	if res.LogPath != "" && r.level >= LogLevelVerbose {
		r.println(r.muted, "  Log: "+res.LogPath)
	}

	r.println(r.header, rule)
}
