package errors

import (
	goerrors "errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Level represents the severity of a diagnostic
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelNote    Level = "note"
)

// Reporter handles consistent diagnostic formatting for the CLI
type Reporter struct {
	out io.Writer
}

// NewReporter creates a reporter writing to out (normally stderr)
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Report formats and prints err. DriverErrors get the coded
// "error[E0001]: message" header; anything else a plain error line.
func (r *Reporter) Report(err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()

	var de *DriverError
	if goerrors.As(err, &de) {
		fmt.Fprintf(r.out, "%s[%s]: %s\n", red(string(LevelError)), de.Code, de.Message)
		if de.Err != nil {
			r.note("caused by: %v", de.Err)
		}
		return
	}
	fmt.Fprintf(r.out, "%s: %v\n", red(string(LevelError)), err)
}

// Warn prints a non-fatal diagnostic. Warnings never alter control flow.
func (r *Reporter) Warn(format string, args ...interface{}) {
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	fmt.Fprintf(r.out, "%s: %s\n", yellow(string(LevelWarning)), fmt.Sprintf(format, args...))
}

func (r *Reporter) note(format string, args ...interface{}) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(r.out, "  %s %s\n", dim("-->"), fmt.Sprintf(format, args...))
}
