//go:build linux

package logger

import "syscall"

const termioGetReq = syscall.TCGETS
