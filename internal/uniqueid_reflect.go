//go:build nounsafe

package internal

import "reflect"

// The default implementation of UniqueID uses unsafe.Pointer. If you can't use
// packages importing unsafe, you can build with -tags=nounsafe to select this
// implementation instead.

// UniqueID returns the array's address.
func (a *Array) UniqueID() uintptr {
	return reflect.ValueOf(a).Pointer()
}

// UniqueID returns the module's address.
func (m *Module) UniqueID() uintptr {
	return reflect.ValueOf(m).Pointer()
}

// UniqueID returns the frame's address.
func (f *Frame) UniqueID() uintptr {
	return reflect.ValueOf(f).Pointer()
}

// UniqueID returns the proc's address.
func (p *Proc) UniqueID() uintptr {
	return reflect.ValueOf(p).Pointer()
}
