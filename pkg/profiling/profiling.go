// Package profiling writes pprof CPU and heap profiles and mounts the
// net/http/pprof handlers.
package profiling

import (
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	rpprof "runtime/pprof"
)

// PprofPrefix is the path the pprof handlers are mounted under.
const PprofPrefix = "/debug/pprof/"

// MaybeStartCPUProfile starts CPU profiling to the given file.
// Returns a stop function that must be deferred. Returns a no-op if path is empty.
func MaybeStartCPUProfile(path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}

	profileFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}

	err = rpprof.StartCPUProfile(profileFile)
	if err != nil {
		profileFile.Close()

		return nil, fmt.Errorf("could not start CPU profile: %w", err)
	}

	stopAndClose := func() {
		rpprof.StopCPUProfile()

		_ = profileFile.Close()
	}

	return stopAndClose, nil
}

// MaybeWriteHeapProfile writes a heap profile to the given file.
// No-op if path is empty.
func MaybeWriteHeapProfile(path string) error {
	if path == "" {
		return nil
	}

	profileFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create heap profile: %w", err)
	}
	defer profileFile.Close()

	runtime.GC()

	writeErr := rpprof.WriteHeapProfile(profileFile)
	if writeErr != nil {
		return fmt.Errorf("could not write heap profile: %w", writeErr)
	}

	return nil
}

// RegisterPprof mounts the pprof index and profile handlers on mux.
func RegisterPprof(mux *http.ServeMux) {
	mux.HandleFunc(PprofPrefix, pprof.Index)
	mux.HandleFunc(PprofPrefix+"cmdline", pprof.Cmdline)
	mux.HandleFunc(PprofPrefix+"profile", pprof.Profile)
	mux.HandleFunc(PprofPrefix+"symbol", pprof.Symbol)
	mux.HandleFunc(PprofPrefix+"trace", pprof.Trace)
}
