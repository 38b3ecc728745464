// Package logger provides thermald's single logging surface: a
// prefixed, leveled wrapper around the standard log package.
package logger

import (
	"log"
	"os"
)

// Quiet suppresses Info and Warn output when true; Error and Fatal always print.
var Quiet bool

const prefix = "thermald: "

// Info logs a routine message, suppressed when Quiet is set.
func Info(format string, args ...interface{}) {
	if Quiet {
		return
	}
	log.Printf(prefix+"I "+format, args...)
}

// Warn logs a recoverable condition (skipped sample, dropped sensor), suppressed when Quiet is set.
func Warn(format string, args ...interface{}) {
	if Quiet {
		return
	}
	log.Printf(prefix+"W "+format, args...)
}

// Error logs a failure that does not abort the process. Always printed.
func Error(format string, args ...interface{}) {
	log.Printf(prefix+"E "+format, args...)
}

// Fatal logs a configuration inconsistency and terminates the process,
// matching the "configuration errors are fatal" rule.
func Fatal(format string, args ...interface{}) {
	log.Printf(prefix+"F "+format, args...)
	os.Exit(1)
}
