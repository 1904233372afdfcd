// Package debug provides simple conditional debugging output to stderr,
// controlled by a global flag. Messages are prefixed for easy filtering and
// are independent of the structured logger so they survive log redirection.
package debug

import (
	"fmt"
	"os"
	"strings"
)

var (
	// Enabled indicates whether debug output is active.
	Enabled bool

	// debugPrefix is prepended to all debug messages.
	debugPrefix = "[DEBUG] "
)

// Init sets the global enabled state. Call before using other functions.
func Init(enabled bool) {
	Enabled = enabled
}

// Printf prints a formatted debug message if debugging is enabled.
func Printf(format string, args ...interface{}) {
	if Enabled {
		fmt.Fprintf(os.Stderr, debugPrefix+format+"\n", args...)
	}
}

// Println prints a debug message if debugging is enabled.
func Println(args ...interface{}) {
	if Enabled {
		fmt.Fprintln(os.Stderr, debugPrefix+fmt.Sprint(args...))
	}
}

// DumpValue dumps a labeled value if debugging is enabled.
func DumpValue(label string, value interface{}) {
	if Enabled {
		fmt.Fprintf(os.Stderr, "%s%s: %+v\n", debugPrefix, label, value)
	}
}

// SetPrefix sets a custom prefix for debug messages.
func SetPrefix(prefix string) {
	if !strings.HasSuffix(prefix, " ") {
		prefix += " "
	}
	debugPrefix = prefix
}
