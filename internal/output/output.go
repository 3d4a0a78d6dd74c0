// Package output handles CLI output formatting including verbose mode, status
// lines and progress indicators.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// ColorMode selects when status prefixes are colored.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a --color value. Empty means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
	}
}

// Status labels a per-item result line.
type Status string

const (
	StatusOK   Status = "OK"
	StatusSkip Status = "SKIP"
	StatusFail Status = "FAIL"
)

// Config holds output configuration.
type Config struct {
	Verbose   bool      // Enable verbose output
	Writer    io.Writer // Output destination (default: os.Stdout)
	ErrWriter io.Writer // Error output destination (default: os.Stderr)
	IsTTY     bool      // Whether output is a terminal
	Color     ColorMode // Defaults to ColorAuto
}

// Output handles formatted output with verbose and progress support.
type Output struct {
	config     Config
	styles     map[Status]lipgloss.Style
	colored    bool
	progress   *progressbar.ProgressBar
	progressMu sync.Mutex
}

// New creates a new Output instance with the given configuration.
func New(config Config) *Output {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.ErrWriter == nil {
		config.ErrWriter = os.Stderr
	}
	if config.Color == "" {
		config.Color = ColorAuto
	}

	o := &Output{config: config}
	o.colored = useColor(config)

	renderer := lipgloss.NewRenderer(config.Writer)
	if o.colored {
		renderer.SetColorProfile(termenv.ANSI256)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}
	o.styles = map[Status]lipgloss.Style{
		StatusOK:   renderer.NewStyle().Foreground(lipgloss.Color("#95E1A3")),
		StatusSkip: renderer.NewStyle().Foreground(lipgloss.Color("#FFE66D")),
		StatusFail: renderer.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	}
	return o
}

// DefaultConfig returns a Config with sensible defaults and TTY detection.
func DefaultConfig() Config {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	return Config{
		Verbose:   false,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		IsTTY:     isTTY,
		Color:     ColorAuto,
	}
}

func useColor(config Config) bool {
	switch config.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return config.IsTTY
}

// Verbose prints a message only when verbose mode is enabled.
func (o *Output) Verbose(format string, args ...interface{}) {
	if !o.config.Verbose {
		return
	}
	o.println(o.config.Writer, fmt.Sprintf(format, args...))
}

// Info prints an informational message (always shown).
func (o *Output) Info(format string, args ...interface{}) {
	o.println(o.config.Writer, fmt.Sprintf(format, args...))
}

// Error prints an error message to stderr.
func (o *Output) Error(format string, args ...interface{}) {
	o.println(o.config.ErrWriter, fmt.Sprintf(format, args...))
}

// Status prints a result line prefixed with "[OK]", "[SKIP]" or "[FAIL]".
func (o *Output) Status(status Status, format string, args ...interface{}) {
	prefix := o.styles[status].Render("[" + string(status) + "]")
	o.println(o.config.Writer, prefix+" "+fmt.Sprintf(format, args...))
}

func (o *Output) println(w io.Writer, msg string) {
	o.clearProgressLine()
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(w, msg)
}

// clearProgressLine clears the current progress line if active.
func (o *Output) clearProgressLine() {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if o.progress != nil {
		_ = o.progress.Clear()
	}
}

// StartProgress begins a progress bar session with the given description.
func (o *Output) StartProgress(total int, description string) {
	// Suppress progress when not TTY or when verbose mode is enabled
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	o.progress = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(o.config.Writer),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionEnableColorCodes(o.colored),
	)
}

// UpdateProgress moves the progress bar to current.
func (o *Output) UpdateProgress(current int) {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if o.progress == nil {
		return
	}
	_ = o.progress.Set(current)
}

// EndProgress clears the progress bar.
func (o *Output) EndProgress() {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if o.progress == nil {
		return
	}
	_ = o.progress.Finish()
	o.progress = nil
}

// IsVerbose returns whether verbose mode is enabled.
func (o *Output) IsVerbose() bool {
	return o.config.Verbose
}

// IsTTY returns whether the output is a terminal.
func (o *Output) IsTTY() bool {
	return o.config.IsTTY
}
