package topo

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// ErrPinUnsupported is returned by Pin when the platform or the host
// configuration does not allow binding the calling thread to a CPU.
var ErrPinUnsupported = errors.New("topo: thread pinning unsupported on this host")

// Topology describes the sockets of the machine and the logical CPUs that
// belong to each. The zero value is not usable; obtain one via Detect or
// Fake.
type Topology struct {
	// sockets[i] holds the logical CPU ids of socket i, ascending.
	sockets [][]int
}

var (
	detectOnce sync.Once
	detected   *Topology
)

// Detect returns the machine topology. The result is computed once and
// cached; it never fails. When NUMA information is unavailable the machine
// is reported as a single socket holding every logical CPU.
func Detect() *Topology {
	detectOnce.Do(func() {
		detected = sysfsTopology()
		if detected == nil {
			detected = Fake(1, runtime.NumCPU())
		}
	})
	return detected
}

// Fake builds a synthetic topology of `sockets` sockets with `perSocket`
// CPUs each. Intended for tests and for forcing the single-socket layout.
func Fake(sockets, perSocket int) *Topology {
	if sockets < 1 {
		sockets = 1
	}
	if perSocket < 1 {
		perSocket = 1
	}
	t := &Topology{sockets: make([][]int, sockets)}
	cpu := 0
	for s := 0; s < sockets; s++ {
		t.sockets[s] = make([]int, perSocket)
		for c := 0; c < perSocket; c++ {
			t.sockets[s][c] = cpu
			cpu++
		}
	}
	return t
}

// Sockets reports the number of sockets.
func (t *Topology) Sockets() int { return len(t.sockets) }

// CPUs reports the total number of logical CPUs known to the topology.
func (t *Topology) CPUs() int {
	n := 0
	for _, s := range t.sockets {
		n += len(s)
	}
	return n
}

// SocketOf maps a worker slot to a socket. Workers are dealt round-robin
// across sockets so that any pool size spreads evenly.
func (t *Topology) SocketOf(worker int) int {
	if worker < 0 {
		worker = 0
	}
	return worker % len(t.sockets)
}

// CPUOf maps a worker slot to a concrete logical CPU on its socket.
// Together with Pin this realizes the worker→socket mapping promised by
// SocketOf.
func (t *Topology) CPUOf(worker int) int {
	s := t.sockets[t.SocketOf(worker)]
	return s[(worker/len(t.sockets))%len(s)]
}

// sysfsTopology groups CPUs by NUMA node from sysfs. Returns nil when the
// layout cannot be read (non-Linux, masked sysfs, exotic containers).
func sysfsTopology() *Topology {
	const nodeRoot = "/sys/devices/system/node"
	entries, err := os.ReadDir(nodeRoot)
	if err != nil {
		return nil
	}
	var nodes []int
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "node") {
			continue
		}
		id, convErr := strconv.Atoi(strings.TrimPrefix(name, "node"))
		if convErr != nil {
			continue
		}
		nodes = append(nodes, id)
	}
	if len(nodes) == 0 {
		return nil
	}
	sort.Ints(nodes)
	t := &Topology{}
	for _, id := range nodes {
		raw, readErr := os.ReadFile(filepath.Join(nodeRoot, "node"+strconv.Itoa(id), "cpulist"))
		if readErr != nil {
			return nil
		}
		cpus := parseCPUList(strings.TrimSpace(string(raw)))
		if len(cpus) == 0 {
			continue
		}
		t.sockets = append(t.sockets, cpus)
	}
	if len(t.sockets) == 0 {
		return nil
	}
	return t
}

// parseCPUList expands the kernel's "0-3,8,10-11" cpulist format.
func parseCPUList(s string) []int {
	var cpus []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			a, err1 := strconv.Atoi(lo)
			b, err2 := strconv.Atoi(hi)
			if err1 != nil || err2 != nil || b < a {
				continue
			}
			for c := a; c <= b; c++ {
				cpus = append(cpus, c)
			}
		} else if c, err := strconv.Atoi(part); err == nil {
			cpus = append(cpus, c)
		}
	}
	sort.Ints(cpus)
	return cpus
}
