//go:build windows

package sidecar

import "syscall"

// hideWindowAttr suppresses the console window Windows would otherwise
// pop up for a spawned child process.
func hideWindowAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{HideWindow: true}
}
