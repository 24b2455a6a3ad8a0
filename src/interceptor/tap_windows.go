//go:build windows

package interceptor

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"hoversnap/src/geometry"
)

var (
	tapUser32               = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookExW   = tapUser32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = tapUser32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = tapUser32.NewProc("CallNextHookEx")
	procGetMessageW         = tapUser32.NewProc("GetMessageW")
	procPostThreadMessageW  = tapUser32.NewProc("PostThreadMessageW")
)

const (
	whMouseLL     = 14
	wmLButtonDown = 0x0201
	wmQuit        = 0x0012
)

type tapPoint struct {
	X, Y int32
}

type msllHookStruct struct {
	Pt        tapPoint
	MouseData uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type threadMsg struct {
	HWnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      tapPoint
}

// The hook procedure is a process-wide callback, so the active handler lives
// in a package global. syscall.NewCallback registrations are permanent; the
// procedure pointer is created once and reused.
var (
	hookMu      sync.Mutex
	hookHandler func(MouseEvent) bool
	hookProcPtr uintptr
)

func lowLevelMouseProc(code, wparam, lparam uintptr) uintptr {
	if int32(code) >= 0 && wparam == wmLButtonDown {
		hookMu.Lock()
		handler := hookHandler
		hookMu.Unlock()
		if handler != nil {
			info := (*msllHookStruct)(unsafe.Pointer(lparam))
			ev := MouseEvent{Kind: LeftDown, Pos: geometry.Point{X: float64(info.Pt.X), Y: float64(info.Pt.Y)}}
			if handler(ev) {
				// A nonzero return is what withholds the click from the
				// foreground application.
				return 1
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, code, wparam, lparam)
	return ret
}

// mouseHook runs a WH_MOUSE_LL hook on a dedicated message-pump thread.
// Low-level hooks are delivered through the installing thread's message
// queue, so the thread does nothing but pump until told to quit.
type mouseHook struct {
	mu      sync.Mutex
	handler func(MouseEvent) bool
	done    chan struct{}
	tid     atomic.Uint32
}

func newPlatformTap(*Hook) platformTap { return &mouseHook{} }

func (m *mouseHook) install(handler func(MouseEvent) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done != nil {
		return fmt.Errorf("mouse hook already running")
	}
	hookMu.Lock()
	hookHandler = handler
	if hookProcPtr == 0 {
		hookProcPtr = syscall.NewCallback(lowLevelMouseProc)
	}
	hookMu.Unlock()

	ready := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		hhook, _, callErr := procSetWindowsHookExW.Call(uintptr(whMouseLL), hookProcPtr, 0, 0)
		if hhook == 0 {
			ready <- fmt.Errorf("SetWindowsHookEx failed: %v", callErr)
			close(done)
			return
		}
		m.tid.Store(windows.GetCurrentThreadId())
		ready <- nil

		var msg threadMsg
		for {
			ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
			if int32(ret) <= 0 {
				break
			}
		}
		procUnhookWindowsHookEx.Call(hhook)
		close(done)
	}()

	if err := <-ready; err != nil {
		hookMu.Lock()
		hookHandler = nil
		hookMu.Unlock()
		return err
	}
	m.handler = handler
	m.done = done
	return nil
}

// reenable reinstalls the hook. Windows silently removes low-level hooks
// whose thread stops responding within the system timeout, without any
// notification, so revival is a full teardown and reinstall.
func (m *mouseHook) reenable() error {
	m.mu.Lock()
	handler := m.handler
	m.mu.Unlock()
	if handler == nil {
		return fmt.Errorf("no mouse hook running")
	}
	m.remove()
	return m.install(handler)
}

func (m *mouseHook) remove() {
	m.mu.Lock()
	done := m.done
	m.done = nil
	m.handler = nil
	m.mu.Unlock()
	if done == nil {
		return
	}
	hookMu.Lock()
	hookHandler = nil
	hookMu.Unlock()
	procPostThreadMessageW.Call(uintptr(m.tid.Load()), wmQuit, 0, 0)
	<-done
}
