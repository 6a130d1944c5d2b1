// Package logging provides the stderr progress log the prover and verifier
// emit between major stages (spec §5, "progress logs are emitted
// synchronously between major stages").
package logging

import (
	"fmt"
	"os"
)

// Stage writes a progress line to stderr, prefixed with the program name
// so it is distinguishable from proof bytes written to stdout.
func Stage(msg string) {
	fmt.Fprintln(os.Stderr, "gostark:", msg)
}

// Stagef is Stage with fmt.Sprintf-style formatting.
func Stagef(format string, args ...interface{}) {
	Stage(fmt.Sprintf(format, args...))
}

// Error writes an error line to stderr.
func Error(msg string) {
	Stage("ERROR: " + msg)
}

// Errorf is Error with fmt.Sprintf-style formatting.
func Errorf(format string, args ...interface{}) {
	Error(fmt.Sprintf(format, args...))
}
