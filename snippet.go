package snippet

import (
	"sync"
	"sync/atomic"
)

type pathHolder struct {
	path ExecutionPath
}

var (
	installed atomic.Pointer[pathHolder]

	defaultSettings     *Settings
	defaultSettingsOnce sync.Once
)

// Install makes path the process-wide execution path. Only the first call
// with a non-nil path takes effect; it reports whether this call did.
func Install(path ExecutionPath) bool {
	if path == nil {
		return false
	}
	return installed.CompareAndSwap(nil, &pathHolder{path: path})
}

// Installed returns the active execution path.
func Installed() ExecutionPath {
	return current()
}

func current() ExecutionPath {
	if h := installed.Load(); h != nil {
		return h.path
	}
	return InertPath{}
}

// DefaultSettings returns the settings shared by the package-level helpers.
func DefaultSettings() *Settings {
	defaultSettingsOnce.Do(func() {
		defaultSettings = NewSettings()
	})
	return defaultSettings
}

// Capture runs fn on the installed path.
func Capture(fn func()) Record {
	return current().Capture(fn)
}

// CaptureWithMessage runs fn on the installed path with a message.
func CaptureWithMessage(message string, fn func()) Record {
	return current().CaptureWithMessage(message, fn)
}

// StartCapture begins a token capture on the installed path.
func StartCapture() Token {
	return current().StartCapture()
}

// StartCaptureWithTag begins a tagged token capture on the installed path.
func StartCaptureWithTag(tag Tag) Token {
	return current().StartCaptureWithTag(tag)
}

// Find looks up a tagged token on the installed path.
func Find(tag Tag) Token {
	return current().Find(tag)
}

// SetFilter sets the default filter and returns the previous one.
func SetFilter(filter string) string {
	return DefaultSettings().SetFilter(filter)
}

// AddFlags enables metadata flags on the default settings.
func AddFlags(flags Flag) Flag {
	return DefaultSettings().AddFlags(flags)
}

// ClearFlags disables every metadata flag on the default settings.
func ClearFlags() {
	DefaultSettings().ClearFlags()
}

// HasFlag reports whether flag is enabled on the default settings.
func HasFlag(flag Flag) bool {
	return DefaultSettings().HasFlag(flag)
}

// SetNamespace changes the library frame prefix on the default settings.
func SetNamespace(namespace string) {
	DefaultSettings().SetNamespace(namespace)
}

// SetDebug toggles internal tracing on the default settings.
func SetDebug(on bool) {
	DefaultSettings().SetDebug(on)
}
