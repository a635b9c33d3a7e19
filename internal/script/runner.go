package script

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/PokeMichele/lumo/internal/editor"
	"github.com/PokeMichele/lumo/internal/library"
	"github.com/PokeMichele/lumo/internal/log"
)

// Common errors for the script runner.
var (
	// ErrClosed means the runner has been closed.
	ErrClosed = errors.New("script runner closed")

	// ErrNilEditor means no editor was supplied.
	ErrNilEditor = errors.New("nil editor")

	// ErrNilLibrary means no media library was supplied.
	ErrNilLibrary = errors.New("nil library")
)

// Runner executes Lua scripts against one editor session.
//
// The underlying interpreter is not goroutine-safe, so every execution runs
// under the runner's mutex. Scripts therefore never interleave, but the
// editor they drive stays live, a script observes edits made between runs.
type Runner struct {
	mu     sync.Mutex
	L      *lua.LState
	logger *log.Logger
	closed bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Runner bound to the given editor and library.
func New(ed *editor.Editor, lib *library.Library, opts ...Option) (*Runner, error) {
	if ed == nil {
		return nil, ErrNilEditor
	}
	if lib == nil {
		return nil, ErrNilLibrary
	}

	r := &Runner{logger: log.Discard}
	for _, opt := range opts {
		opt(r)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	sealLoaders(L)

	mod := &editorModule{ed: ed, lib: lib}
	mod.register(L)

	r.L = L
	return r, nil
}

// openSafeLibraries opens only the Lua libraries an edit script needs.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sealLoaders removes the functions that load code from outside the script.
func sealLoaders(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// DoString executes a Lua chunk. The call is synchronous and a Lua error or
// panic comes back as a Go error.
func (r *Runner) DoString(code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	err := r.doWithRecovery(func() error {
		return r.L.DoString(code)
	})
	if err != nil {
		r.logger.Error("script failed", "error", err)
	}
	return err
}

// DoFile executes a Lua file.
func (r *Runner) DoFile(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	err := r.doWithRecovery(func() error {
		return r.L.DoFile(path)
	})
	if err != nil {
		r.logger.Error("script failed", "path", path, "error", err)
	}
	return err
}

func (r *Runner) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()
	return fn()
}

// Global returns a global value from the script environment, for reading
// results a script left behind. Returns nil for unset globals and on a
// closed runner.
func (r *Runner) Global(name string) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	return toGoValue(r.L.GetGlobal(name))
}

// Close releases the interpreter. Further executions return ErrClosed.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.L.Close()
	r.closed = true
	return nil
}

// toGoValue converts a Lua result to a plain Go value. Tables with
// contiguous integer keys become slices, other tables become maps.
func toGoValue(lv lua.LValue) interface{} {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LTable:
		n := v.Len()
		if n > 0 {
			arr := make([]interface{}, n)
			for i := 1; i <= n; i++ {
				arr[i-1] = toGoValue(v.RawGetInt(i))
			}
			return arr
		}
		m := make(map[string]interface{})
		v.ForEach(func(k, val lua.LValue) {
			m[k.String()] = toGoValue(val)
		})
		return m
	default:
		return nil
	}
}
