//go:build linux

package topo

import "golang.org/x/sys/unix"

// Pin binds the calling OS thread to a single logical CPU. The caller is
// expected to have locked the goroutine to its thread first
// (runtime.LockOSThread); pinning a migrating goroutine is meaningless.
//
// Failures from sched_setaffinity (EPERM under restrictive cgroups,
// EINVAL for offline CPUs) surface as ErrPinUnsupported so the caller can
// fall back to running unpinned.
func Pin(cpu int) error {
	if cpu < 0 {
		return ErrPinUnsupported
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return ErrPinUnsupported
	}
	return nil
}
