//go:build linux || darwin

package logger

import (
	"syscall"
	"unsafe"
)

// isTerminal reports whether fd is attached to a tty by asking the kernel
// for its terminal attributes; the ioctl fails on anything that is not one.
func isTerminal(fd uintptr) bool {
	var t syscall.Termios
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, termioGetReq, uintptr(unsafe.Pointer(&t)))
	return errno == 0
}
