package telemetry

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// ProfilingConfig configures continuous profiling through a Pyroscope
// server. Profiling is independent of tracing; either can run without the
// other.
type ProfilingConfig struct {
	Enabled bool

	// ServiceName becomes the Pyroscope application name.
	ServiceName string

	// ServiceVersion is attached to every profile as a tag.
	ServiceVersion string

	// Endpoint is the Pyroscope server URL, e.g. "http://localhost:4040".
	Endpoint string

	// ProfileTypes selects what to collect; see profileTypes for the
	// accepted names.
	ProfileTypes []string
}

// profileTypes maps config names to collector types. The mutex and block
// profiles additionally need runtime sampling switched on, which
// InitProfiling handles.
var profileTypes = map[string]pyroscope.ProfileType{
	"cpu":            pyroscope.ProfileCPU,
	"alloc_objects":  pyroscope.ProfileAllocObjects,
	"alloc_space":    pyroscope.ProfileAllocSpace,
	"inuse_objects":  pyroscope.ProfileInuseObjects,
	"inuse_space":    pyroscope.ProfileInuseSpace,
	"goroutines":     pyroscope.ProfileGoroutines,
	"mutex_count":    pyroscope.ProfileMutexCount,
	"mutex_duration": pyroscope.ProfileMutexDuration,
	"block_count":    pyroscope.ProfileBlockCount,
	"block_duration": pyroscope.ProfileBlockDuration,
}

// contendedProfileSampleRate is handed to the runtime for mutex and block
// profiles; 1 in 5 events is recorded.
const contendedProfileSampleRate = 5

var (
	profiler         *pyroscope.Profiler
	profilingEnabled bool
)

// InitProfiling starts the profiler, or does nothing when disabled. The
// returned shutdown flushes and stops collection; it is non-nil either way.
func InitProfiling(cfg ProfilingConfig) (shutdown func() error, err error) {
	profilingEnabled = cfg.Enabled
	if !cfg.Enabled {
		return func() error { return nil }, nil
	}

	types := make([]pyroscope.ProfileType, 0, len(cfg.ProfileTypes))
	for _, name := range cfg.ProfileTypes {
		pt, err := parseProfileType(name)
		if err != nil {
			return nil, fmt.Errorf("invalid profile type %q: %w", name, err)
		}
		types = append(types, pt)

		switch name {
		case "mutex_count", "mutex_duration":
			runtime.SetMutexProfileFraction(contendedProfileSampleRate)
		case "block_count", "block_duration":
			runtime.SetBlockProfileRate(contendedProfileSampleRate)
		}
	}

	profiler, err = pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.Endpoint,
		Tags:            map[string]string{"version": cfg.ServiceVersion},
		ProfileTypes:    types,
	})
	if err != nil {
		return nil, fmt.Errorf("start profiler: %w", err)
	}

	return func() error {
		if profiler == nil {
			return nil
		}
		return profiler.Stop()
	}, nil
}

// IsProfilingEnabled reports whether InitProfiling started a profiler.
func IsProfilingEnabled() bool {
	return profilingEnabled
}

// parseProfileType resolves a config name, listing the accepted names in
// the error so a typo in the YAML is self-explaining.
func parseProfileType(name string) (pyroscope.ProfileType, error) {
	pt, ok := profileTypes[name]
	if !ok {
		known := make([]string, 0, len(profileTypes))
		for k := range profileTypes {
			known = append(known, k)
		}
		sort.Strings(known)
		return pyroscope.ProfileCPU, fmt.Errorf("unknown profile type (expected one of %s)", strings.Join(known, ", "))
	}
	return pt, nil
}
