// Package topo discovers the machine's processor topology (how many
// NUMA sockets exist and which logical CPUs belong to each) and offers
// best-effort pinning of the calling OS thread to a single CPU.
//
// What
//
//   - Detect() reads /sys/devices/system/node on Linux and groups logical
//     CPUs by NUMA node. On other platforms, or when sysfs is unavailable,
//     the whole machine collapses to a single socket.
//   - Topology maps worker slots onto CPUs and sockets so that socket-aware
//     worklists can keep hot data on the socket that produced it.
//   - Pin(cpu) binds the calling OS thread to one logical CPU
//     (sched_setaffinity on Linux; a no-op elsewhere).
//
// Why
//
//	Per-socket worklists only pay off when workers actually stay on their
//	socket. Topology supplies the worker→socket mapping; Pin makes the
//	mapping stick when thread binding is requested.
//
// Errors
//
//	Detection never fails: every fallback path yields a valid single-socket
//	Topology. Pin swallows EPERM/EINVAL-class failures and reports them as
//	ErrPinUnsupported; on a cgroup-restricted host the caller simply runs
//	unpinned.
package topo
