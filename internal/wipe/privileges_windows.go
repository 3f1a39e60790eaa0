//go:build windows

package wipe

import "golang.org/x/sys/windows"

func defaultIsPrivileged() bool {
	token := windows.GetCurrentProcessToken()
	return token.IsElevated()
}
