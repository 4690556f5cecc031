//go:build unix

package internal

import (
	"bytes"
	"strings"

	"golang.org/x/sys/unix"
)

// platform returns the machine and system names for the PLATFORM constant,
// e.g. "x86_64-linux". It is declared in each platform-specific file so that
// a compilation error occurs on any platform on which it is not implemented.
func platform() string {
	var uname unix.Utsname
	if unix.Uname(&uname) != nil {
		// Nothing else to try.
		return fallbackPlatform()
	}
	m := bytes.TrimRight(uname.Machine[:], "\x00")
	s := bytes.TrimRight(uname.Sysname[:], "\x00")
	return string(m) + "-" + strings.ToLower(string(s))
}
