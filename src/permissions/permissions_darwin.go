//go:build darwin

package permissions

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework ApplicationServices -framework CoreGraphics
#import <Cocoa/Cocoa.h>
#import <ApplicationServices/ApplicationServices.h>
#import <CoreGraphics/CoreGraphics.h>

static int accessibilityGranted(int prompt) {
    NSDictionary *options = @{(__bridge NSString *)kAXTrustedCheckOptionPrompt: prompt ? @YES : @NO};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
}

static int screenRecordingGranted() {
    if (@available(macOS 10.15, *)) {
        // Window names are only readable with the screen-recording grant, so
        // an on-screen list with no readable names means we lack it.
        CFArrayRef windows = CGWindowListCopyWindowInfo(
            kCGWindowListOptionOnScreenOnly | kCGWindowListExcludeDesktopElements,
            kCGNullWindowID);
        if (windows == NULL) {
            return 0;
        }
        CFIndex count = CFArrayGetCount(windows);
        int readable = 0;
        for (CFIndex i = 0; i < count; i++) {
            CFDictionaryRef w = (CFDictionaryRef)CFArrayGetValueAtIndex(windows, i);
            CFStringRef name = (CFStringRef)CFDictionaryGetValue(w, kCGWindowName);
            if (name != NULL && CFStringGetLength(name) > 0) {
                readable = 1;
                break;
            }
        }
        CFRelease(windows);
        return (count == 0 || readable) ? 1 : 0;
    }
    return 1;
}

static void openScreenRecordingPane() {
    NSString *url = @"x-apple.systempreferences:com.apple.preference.security?Privacy_ScreenCapture";
    [[NSWorkspace sharedWorkspace] openURL:[NSURL URLWithString:url]];
}
*/
import "C"

type systemChecker struct{}

// NewChecker returns the macOS permission checker.
func NewChecker() Checker { return systemChecker{} }

func (systemChecker) IsAccessibilityGranted() bool {
	return C.accessibilityGranted(0) == 1
}

func (systemChecker) IsScreenRecordingGranted() bool {
	return C.screenRecordingGranted() == 1
}

func (systemChecker) RequestAccessibility() bool {
	return C.accessibilityGranted(1) == 1
}

func (systemChecker) RequestScreenRecording() {
	C.openScreenRecordingPane()
}
