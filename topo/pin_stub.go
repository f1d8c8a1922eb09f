//go:build !linux

package topo

// Pin is a no-op outside Linux; affinity syscalls are not portable and the
// per-socket worklists degrade gracefully without binding.
func Pin(cpu int) error {
	return ErrPinUnsupported
}
