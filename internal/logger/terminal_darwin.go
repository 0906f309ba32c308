//go:build darwin

package logger

import "syscall"

const termioGetReq = syscall.TIOCGETA
