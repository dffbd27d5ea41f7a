package procmacro

import (
	"fmt"
	"plugin"
	"sync"
)

// ExpansionFunc is the Go-side signature every loaded symbol of kind
// inline/attribute/derive must satisfy, mirroring the length-prefixed
// frame exchange of §4.I across an in-process call instead of a pipe: the
// plugin package's exported symbol receives an encoded TokenStream frame
// and returns an encoded ExpansionResult frame.
type ExpansionFunc func(frame []byte) ([]byte, error)

// FingerprintFunc is the optional symbol a macro exposes to fold
// non-source inputs (environment variables, etc.) into the unit
// fingerprint (§4.I "Determinism & fingerprints").
type FingerprintFunc func() uint64

// LoadedPlugin is a process-wide handle on an opened shared library: its
// registered callables by macro name and kind, plus an optional
// fingerprint function.
type LoadedPlugin struct {
	LibraryPath string
	Callables   map[string]map[CallKind]ExpansionFunc
	Fingerprint FingerprintFunc
}

var (
	loadMu    sync.Mutex
	loadCache = map[string]*LoadedPlugin{} // keyed by library content hash
)

// PluginLoadFailedError wraps a plugin.Open or symbol-lookup failure
// (§7 KindPluginLoadFailed).
type PluginLoadFailedError struct {
	LibraryPath string
	Cause       error
}

func (e *PluginLoadFailedError) Error() string {
	return fmt.Sprintf("loading plugin %s: %v", e.LibraryPath, e.Cause)
}

func (e *PluginLoadFailedError) Unwrap() error { return e.Cause }

// registeredSymbol is the shape every plugin must export for each macro it
// registers: a name, call kind, and Go-callable entry point.
type registeredSymbol struct {
	MacroName string
	Kind      CallKind
	Func      ExpansionFunc
}

// pluginEntryPointSymbol is the single well-known exported symbol every
// plugin library must provide: a func() returning its registered symbols
// plus an optional fingerprint function. This mirrors the teacher's
// pattern of a single well-known entry point rather than scanning the
// library for arbitrarily-named exports.
const pluginEntryPointSymbol = "ScarbProcMacroRegister"

type pluginEntryPoint func() ([]registeredSymbol, FingerprintFunc)

// Load opens libraryPath (already built by Build) and memoizes the result
// keyed by contentHash, so a second unit referencing the same plugin
// within one process reuses the same loaded library (§4.I point 2: "The
// load is process-wide and memoized by the library's content hash").
func Load(libraryPath, contentHash string) (*LoadedPlugin, error) {
	loadMu.Lock()
	defer loadMu.Unlock()

	if lp, ok := loadCache[contentHash]; ok {
		return lp, nil
	}

	p, err := plugin.Open(libraryPath)
	if err != nil {
		return nil, &PluginLoadFailedError{LibraryPath: libraryPath, Cause: err}
	}

	sym, err := p.Lookup(pluginEntryPointSymbol)
	if err != nil {
		return nil, &PluginLoadFailedError{LibraryPath: libraryPath, Cause: err}
	}
	entry, ok := sym.(pluginEntryPoint)
	if !ok {
		entryPtr, ok2 := sym.(*pluginEntryPoint)
		if !ok2 {
			return nil, &PluginLoadFailedError{LibraryPath: libraryPath, Cause: fmt.Errorf("symbol %s has unexpected type %T", pluginEntryPointSymbol, sym)}
		}
		entry = *entryPtr
	}

	symbols, fp := entry()

	lp := &LoadedPlugin{
		LibraryPath: libraryPath,
		Callables:   make(map[string]map[CallKind]ExpansionFunc),
		Fingerprint: fp,
	}
	for _, s := range symbols {
		if lp.Callables[s.MacroName] == nil {
			lp.Callables[s.MacroName] = make(map[CallKind]ExpansionFunc)
		}
		lp.Callables[s.MacroName][s.Kind] = s.Func
	}

	loadCache[contentHash] = lp
	return lp, nil
}
