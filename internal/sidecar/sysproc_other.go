//go:build !windows

package sidecar

import "syscall"

func hideWindowAttr() *syscall.SysProcAttr {
	return nil
}
