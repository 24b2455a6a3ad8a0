//go:build windows

package hittest

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"hoversnap/src/geometry"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procIsIconic                 = user32.NewProc("IsIconic")
	procGetWindowRect            = user32.NewProc("GetWindowRect")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
)

type winRect struct {
	Left, Top, Right, Bottom int32
}

type win32Lister struct{}

func newWindowLister() WindowLister { return win32Lister{} }

// OnScreenWindows enumerates visible top-level windows. EnumWindows walks
// them in z-order from the foreground down, which is the order the fallback
// hit test needs.
func (win32Lister) OnScreenWindows() ([]WindowInfo, error) {
	var wins []WindowInfo
	cb := syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		if visible, _, _ := procIsWindowVisible.Call(hwnd); visible == 0 {
			return 1
		}
		if iconic, _, _ := procIsIconic.Call(hwnd); iconic != 0 {
			return 1
		}
		var r winRect
		if ok, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r))); ok == 0 {
			return 1
		}
		var pid uint32
		procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
		wins = append(wins, WindowInfo{
			PID: int(pid),
			Frame: geometry.Rect{
				X: float64(r.Left),
				Y: float64(r.Top),
				W: float64(r.Right - r.Left),
				H: float64(r.Bottom - r.Top),
			},
		})
		return 1
	})
	if ret, _, err := procEnumWindows.Call(cb, 0); ret == 0 {
		return nil, err
	}
	return wins, nil
}
