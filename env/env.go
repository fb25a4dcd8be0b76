// Package env resolves the environment variables recognized by the library
// into ordered path lists.
//
// Only a fixed set of variables is supported. Each resolves to the
// OS-path-separator-split value of the runtime environment, followed by a
// compile-time default that can be injected at build time, e.g.
//
//	go build -ldflags "-X github.com/flooklab/godaq/env.DefaultDevDescDirs=/usr/share/daq/devices"
//
// Duplicate paths are removed while preserving first-occurrence order.
package env

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flooklab/godaq/errors"
)

// DevDescDirs lists directories searched for device description files.
const DevDescDirs = "GODAQ_DEV_DESC_DIRS"

// DefaultDevDescDirs is the compile-time default for DevDescDirs,
// intended to be set via -ldflags -X.
var DefaultDevDescDirs string

var (
	once  sync.Once
	cache map[string][]string
)

// defaults maps each supported variable to its compile-time default list.
func defaults(name string) string {
	switch name {
	case DevDescDirs:
		return DefaultDevDescDirs
	default:
		return ""
	}
}

// Paths returns the resolved path list for a supported variable. The result
// is computed once per process from the environment at first call.
// Unsupported names are a usage error.
func Paths(name string) ([]string, error) {
	if name != DevDescDirs {
		return nil, errors.WrapUsage(
			fmt.Errorf("environment variable %q is not recognized", name),
			"env", "Paths", "variable lookup")
	}

	once.Do(func() {
		cache = map[string][]string{
			DevDescDirs: merge(os.Getenv(DevDescDirs), defaults(DevDescDirs)),
		}
	})
	return cache[name], nil
}

// merge splits both values on the OS path list separator, keeping the runtime
// value's paths before the compiled-in defaults and dropping duplicates.
func merge(runtime, compiled string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, raw := range append(split(runtime), split(compiled)...) {
		p := strings.TrimSpace(raw)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func split(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, string(filepath.ListSeparator))
}
