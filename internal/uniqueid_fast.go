//go:build !nounsafe

package internal

import "unsafe"

// Using unsafe to retrieve addresses avoids reflect in cycle checks, which run
// on every inspection of a nested array and every module ancestry walk.

// UniqueID returns the array's address.
func (a *Array) UniqueID() uintptr {
	return uintptr(unsafe.Pointer(a))
}

// UniqueID returns the module's address.
func (m *Module) UniqueID() uintptr {
	return uintptr(unsafe.Pointer(m))
}

// UniqueID returns the frame's address.
func (f *Frame) UniqueID() uintptr {
	return uintptr(unsafe.Pointer(f))
}

// UniqueID returns the proc's address.
func (p *Proc) UniqueID() uintptr {
	return uintptr(unsafe.Pointer(p))
}
