package main

import (
	"os"

	"github.com/lucas-albers-lz4/relint/pkg/debug"
	"github.com/lucas-albers-lz4/relint/pkg/exitcodes"
	log "github.com/lucas-albers-lz4/relint/pkg/log"
)

// main is the entry point of the application. It delegates command setup and
// dispatch to Execute (defined in root.go) and maps returned errors onto
// process exit codes.
func main() {
	// Check for RELINT_DEBUG environment variable before any command logic
	// runs so early setup is traced too.
	if os.Getenv("RELINT_DEBUG") != "" {
		debug.Init(true)
	}

	if err := Execute(); err != nil {
		log.Errorf("Error: %v", err)
		if code, ok := exitcodes.IsExitCodeError(err); ok {
			os.Exit(code)
		}
		os.Exit(exitcodes.ExitGeneralRuntimeError)
	}
}
