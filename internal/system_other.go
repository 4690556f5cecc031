//go:build !unix

package internal

// platform returns the architecture and operating system for the PLATFORM
// constant.
func platform() string {
	return fallbackPlatform()
}
