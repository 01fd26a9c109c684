// Package abi decides the physical parameter and return shape of
// calls that carry aggregate (struct) values, per target architecture.
// Layout tables and strategies are built once per compilation unit and
// are read-only afterwards; lowering itself threads its scratch state
// explicitly so independent call sites can lower in parallel.
package abi

import "fmt"

// Target describes an ABI target triple and its word properties.
type Target struct {
	Triple   string
	PtrSize  int // bytes
	PtrAlign int // bytes

	// RegWords is how many machine words an aggregate may occupy and
	// still travel in registers. Zero means aggregates never do.
	RegWords int
}

// X8664LinuxGNU is the register-packing calling convention family:
// aggregates up to two machine words are split into their fields.
func X8664LinuxGNU() Target {
	return Target{
		Triple:   "x86_64-linux-gnu",
		PtrSize:  8,
		PtrAlign: 8,
		RegWords: 2,
	}
}

// Wasm32Unknown is the indirect family: every known aggregate crosses
// the boundary behind a pointer.
func Wasm32Unknown() Target {
	return Target{
		Triple:   "wasm32-unknown",
		PtrSize:  4,
		PtrAlign: 4,
		RegWords: 0,
	}
}

// TargetFor resolves an architecture identity string.
func TargetFor(arch string) (Target, error) {
	switch arch {
	case "x86_64", "x86_64-linux-gnu", "amd64":
		return X8664LinuxGNU(), nil
	case "wasm32", "wasm32-unknown":
		return Wasm32Unknown(), nil
	}
	return Target{}, fmt.Errorf("unsupported target architecture %q", arch)
}
