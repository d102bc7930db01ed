// Package logger provides leveled logging for the oslo-sync CLI.
// Debug and info messages are only printed when verbose mode is enabled
// via the --verbose flag. Warnings and errors are always printed, since
// collection-creation and bulk-write failures must never go unnoticed.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
	log               = newLogger(os.Stderr)
)

// newLogger builds a zerolog logger that renders "[LEVEL] message" lines.
func newLogger(w io.Writer) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: func(i any) string {
			s, _ := i.(string)
			return "[" + strings.ToUpper(s) + "]"
		},
	}
	return zerolog.New(cw).Level(zerolog.DebugLevel)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = newLogger(w)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		log.Debug().Msgf(format, args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		log.Info().Msgf(format, args...)
	}
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	log.Warn().Msgf(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	log.Error().Msgf(format, args...)
}
