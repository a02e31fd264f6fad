// features.go - build-time feature flag reporting.
//
// Grounded on features.go/voodoo_vulkan_headless.go's compiledFeatures
// pattern: each optional subsystem registers its own name via init() in
// the build-tagged file that provides it, so this file never needs to
// know which combination of tags produced the current binary.

package hollycore

import (
	"fmt"
	"io"
	"runtime"
	"sort"
)

var compiledFeatures []string

// Version identifies this build for PrintFeatures' banner line.
const Version = "0.1.0-dev"

// PrintFeatures writes a build summary (Go toolchain, OS/arch, and every
// optional subsystem registered via init()) to the given sink.
func PrintFeatures(w io.Writer) {
	fmt.Fprintf(w, "hollycore %s\n", Version)
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
	fmt.Fprintf(w, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compiled features:")

	sorted := append([]string(nil), compiledFeatures...)
	sort.Strings(sorted)
	for _, f := range sorted {
		fmt.Fprintf(w, "  %s\n", f)
	}
	if len(sorted) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
}
