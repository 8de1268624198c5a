// Package profiling mounts pprof and runtime stats routes. They expose
// goroutine stacks and heap contents, so callers must mount them behind
// an admin check.
package profiling

import (
	"net/http"
	"net/http/pprof"
	"runtime"

	"github.com/go-chi/chi/v5"

	"github.com/wpschema/wpschema/internal/web/response"
)

// Config holds profiling configuration
type Config struct {
	// Path is the URL prefix, default /debug/pprof
	Path string
	// BlockRate sets the block profiling rate (0 = disabled)
	BlockRate int
	// MutexFraction sets the mutex profiling fraction (0 = disabled)
	MutexFraction int
}

// DefaultConfig returns the profiling defaults
func DefaultConfig() Config {
	return Config{Path: "/debug/pprof"}
}

// RegisterRoutes mounts the pprof handlers and /stats under config.Path
func RegisterRoutes(router chi.Router, config Config) {
	if config.Path == "" {
		config.Path = DefaultConfig().Path
	}
	runtime.SetBlockProfileRate(config.BlockRate)
	runtime.SetMutexProfileFraction(config.MutexFraction)

	router.Route(config.Path, func(r chi.Router) {
		r.HandleFunc("/", pprof.Index)
		r.HandleFunc("/cmdline", pprof.Cmdline)
		r.HandleFunc("/profile", pprof.Profile)
		r.HandleFunc("/symbol", pprof.Symbol)
		r.HandleFunc("/trace", pprof.Trace)
		for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
			r.Handle("/"+name, pprof.Handler(name))
		}
		r.Get("/stats", StatsHandler)
	})
}

// Stats is a snapshot of the Go runtime
type Stats struct {
	Goroutines int   `json:"goroutines"`
	NumCPU     int   `json:"num_cpu"`
	Memory     Mem   `json:"memory"`
	CgoCalls   int64 `json:"num_cgo_call"`
}

// Mem holds the memory figures from runtime.MemStats
type Mem struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
}

// RuntimeStats reads the current runtime statistics
func RuntimeStats() Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Stats{
		Goroutines: runtime.NumGoroutine(),
		NumCPU:     runtime.NumCPU(),
		CgoCalls:   runtime.NumCgoCall(),
		Memory: Mem{
			Alloc:      m.Alloc,
			TotalAlloc: m.TotalAlloc,
			Sys:        m.Sys,
			NumGC:      m.NumGC,
		},
	}
}

// StatsHandler serves RuntimeStats as JSON
func StatsHandler(w http.ResponseWriter, r *http.Request) {
	response.RenderJSON(w, http.StatusOK, RuntimeStats())
}
