// Package scarbconfig resolves the ambient configuration every component
// reads: cache/target directory layout (§6.5) and the environment
// variables consumed by the core (§6.6). Grounded on the teacher's
// context.go Ctx struct, which plays the same role (carrying resolved
// filesystem roots derived from the environment) for GOPATH.
package scarbconfig

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config is the resolved, environment-overlaid configuration for one
// invocation of the core.
type Config struct {
	// CacheRoot is the OS-conventional cache directory root, containing
	// registry/, git/, plugins/proc_macro/, std/v<version>/ (§6.5).
	// Overridden by SCARB_CACHE.
	CacheRoot string
	// ConfigPath records SCARB_CONFIG, the path of an additional
	// tool-level configuration file; nothing in this module reads or
	// merges that file.
	ConfigPath string
	// Incremental records whether incremental builds are enabled;
	// nothing in this module consults it.
	// Overridden by SCARB_INCREMENTAL ("false"/"0" disables it).
	Incremental bool
	// RegistryAuthToken is sent as a bearer token to registry downloads
	// that require authentication. SCARB_REGISTRY_AUTH_TOKEN.
	RegistryAuthToken string
	// DocRemoteBaseURL is consumed by the (external) doc extractor;
	// the core only threads it through. SCARB_DOC_REMOTE_BASE_URL.
	DocRemoteBaseURL string
	// NetTimeout bounds network requests made by source providers (§5).
	NetTimeout time.Duration
}

const defaultNetTimeout = 30 * time.Second

// Load resolves Config from the environment, per §6.6. Unknown
// environment variables are ignored, per spec.
func Load() (Config, error) {
	cfg := Config{
		Incremental: true,
		NetTimeout:  defaultNetTimeout,
	}

	if v := os.Getenv("SCARB_CACHE"); v != "" {
		cfg.CacheRoot = v
	} else {
		root, err := os.UserCacheDir()
		if err != nil {
			return Config{}, err
		}
		cfg.CacheRoot = filepath.Join(root, "scarb")
	}

	cfg.ConfigPath = os.Getenv("SCARB_CONFIG")

	if v := os.Getenv("SCARB_INCREMENTAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Incremental = b
		}
	}

	cfg.RegistryAuthToken = os.Getenv("SCARB_REGISTRY_AUTH_TOKEN")
	cfg.DocRemoteBaseURL = os.Getenv("SCARB_DOC_REMOTE_BASE_URL")

	if v := os.Getenv("SCARB_NET_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.NetTimeout = time.Duration(secs) * time.Second
		}
	}

	return cfg, nil
}

// RegistryCacheDir is the on-disk layout path for the registry index/download
// cache (§6.5).
func (c Config) RegistryCacheDir() string { return filepath.Join(c.CacheRoot, "registry") }

// GitCacheDir is the process-global git repository cache (§4.C, §6.5).
func (c Config) GitCacheDir() string { return filepath.Join(c.CacheRoot, "git") }

// PluginCacheDir is the proc-macro shared-library build cache (§4.I, §6.5).
func (c Config) PluginCacheDir() string { return filepath.Join(c.CacheRoot, "plugins", "proc_macro") }

// StdlibCacheDir is the extracted standard-library cache for the given
// compiler version (§4.C, §6.5).
func (c Config) StdlibCacheDir(compilerVersion string) string {
	return filepath.Join(c.CacheRoot, "std", "v"+compilerVersion)
}

// TargetDir is the per-workspace build output directory for a profile
// (§4.J, §6.5).
func TargetDir(workspaceRoot, profile string) string {
	return filepath.Join(workspaceRoot, "target", profile)
}
