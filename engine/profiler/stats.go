// Package profiler records named spans for speedscope when built with the
// "profile" tag, and reports process statistics in every build.
package profiler

import "runtime"

// Memory holds a snapshot of the Go heap.
type Memory struct {
	Alloc      uint64
	Mallocs    uint64
	NumGC      uint32
	Goroutines int
}

// ReadMemory samples the runtime. It stops the world briefly, so call it at
// most a few times per second.
func ReadMemory() Memory {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Memory{
		Alloc:      m.Alloc,
		Mallocs:    m.Mallocs,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
	}
}
