package snippet

import (
	"fmt"
	"runtime"
	"strings"
)

// DefaultNamespace is the import path prefix of this library.
const DefaultNamespace = "github.com/zoobzio/snippet"

// maxFrames bounds the stack walk. Library frames sit at the top of the
// stack, so the calling frame is always well within this depth.
const maxFrames = 64

// API identifies the public entry point whose caller should be resolved.
type API int

const (
	// APICapture resolves the caller of Capture or CaptureWithMessage.
	APICapture API = iota
	// APIEndCapture resolves the caller of EndCapture or EndCaptureWithMessage.
	APIEndCapture
)

var apiNames = [...][2]string{
	APICapture:    {"Capture", "CaptureWithMessage"},
	APIEndCapture: {"EndCapture", "EndCaptureWithMessage"},
}

func (a API) String() string {
	if a < 0 || int(a) >= len(apiNames) {
		return "unknown"
	}
	return apiNames[a][0]
}

func (a API) matches(function string) bool {
	if a < 0 || int(a) >= len(apiNames) {
		return false
	}
	return function == apiNames[a][0] || function == apiNames[a][1]
}

// Frame is a resolved call site.
type Frame struct {
	Package  string
	Symbol   string
	Function string
	File     string
	Line     int
}

// Resolver finds the user frame that invoked an API.
type Resolver interface {
	Resolve(api API) (Frame, error)
}

// ResolverFunc adapts a function to Resolver. It is handy for callers that
// already know their source location.
type ResolverFunc func(api API) (Frame, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(api API) (Frame, error) {
	return f(api)
}

// ResolverFactory builds a resolver for a namespace prefix.
type ResolverFactory func(namespace string) Resolver

// StackResolver walks the current goroutine's stack.
// It finds the innermost library frame named after the API, steps over the
// library frames named after the same API that called it (the facade,
// decorating paths, embedded tokens) and returns the next frame, which is
// the user code that called into the library.
//
// Library frames are functions in the namespace package or any package
// below it. Only frames named after the API are stepped over, so user code
// living under the namespace, such as tests and examples, still resolves
// to itself.
type StackResolver struct {
	namespace string
}

// NewStackResolver creates a resolver treating every function in namespace,
// or in a package below it, as library code.
func NewStackResolver(namespace string) *StackResolver {
	return &StackResolver{namespace: namespace}
}

// NewStackResolverFactory is the default ResolverFactory.
func NewStackResolverFactory(namespace string) Resolver {
	return NewStackResolver(namespace)
}

// Namespace returns the prefix the resolver was built with.
func (r *StackResolver) Namespace() string {
	return r.namespace
}

// Resolve returns the frame that called the innermost library entry point for api.
func (r *StackResolver) Resolve(api API) (Frame, error) {
	var pcs [maxFrames]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var (
		caller  runtime.Frame
		entered bool
		found   bool
	)
	for !found {
		f, more := frames.Next()
		switch {
		case r.isAPIFrame(f, api):
			entered = true
		case entered:
			caller = f
			found = true
		}
		if !more {
			break
		}
	}
	if !found {
		return Frame{}, fmt.Errorf("%w: %s", ErrResolution, api)
	}

	pkg, symbol, fn := splitFunctionName(caller.Function)
	return Frame{
		Package:  pkg,
		Symbol:   symbol,
		Function: fn,
		File:     caller.File,
		Line:     caller.Line,
	}, nil
}

func (r *StackResolver) isAPIFrame(f runtime.Frame, api API) bool {
	if !r.inNamespace(f.Function) {
		return false
	}
	_, _, fn := splitFunctionName(f.Function)
	return api.matches(fn)
}

// inNamespace reports whether qualified belongs to the namespace package or
// a package below it. "github.com/acme/lib_test" is not below "github.com/acme/lib".
func (r *StackResolver) inNamespace(qualified string) bool {
	if !strings.HasPrefix(qualified, r.namespace) {
		return false
	}
	if len(qualified) == len(r.namespace) {
		return false
	}
	next := qualified[len(r.namespace)]
	return next == '.' || next == '/'
}

// splitFunctionName breaks a runtime function name such as
// "github.com/acme/app.(*Server).Start" into its import path, the symbol that
// owns it and the function name. For plain functions the symbol is the
// package name.
func splitFunctionName(qualified string) (pkg, symbol, fn string) {
	lastSlash := strings.LastIndexByte(qualified, '/')
	dot := strings.IndexByte(qualified[lastSlash+1:], '.')
	if dot < 0 {
		return "", qualified, qualified
	}
	dot += lastSlash + 1
	pkg = qualified[:dot]
	rest := qualified[dot+1:]
	pkgName := pkg[lastSlash+1:]

	if strings.HasPrefix(rest, "(") {
		closeParen := strings.IndexByte(rest, ')')
		if closeParen > 0 && closeParen+2 <= len(rest) {
			return pkg, strings.TrimPrefix(rest[1:closeParen], "*"), rest[closeParen+2:]
		}
		return pkg, pkgName, rest
	}

	// Value receivers look like "T.Method", closures like "Func.func1".
	if i := strings.IndexByte(rest, '.'); i > 0 && !isClosureSegment(rest[i+1:]) {
		return pkg, rest[:i], rest[i+1:]
	}
	return pkg, pkgName, rest
}

func isClosureSegment(s string) bool {
	if j := strings.IndexByte(s, '.'); j >= 0 {
		s = s[:j]
	}
	s = strings.TrimPrefix(s, "func")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
