package internal

import "runtime"

// initSystem defines constants describing the interpreter and the host.
func (vm *VM) initSystem() {
	vm.Object.SetConst("RUBBLE_VERSION", Version)
	vm.Object.SetConst("PLATFORM", platform())
}

func fallbackPlatform() string {
	return runtime.GOARCH + "-" + runtime.GOOS
}
