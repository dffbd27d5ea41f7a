package scarb

import (
	"os"

	toml "github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// RegistryCredentialsFileName is the per-user credentials file consulted
// for registries that require a bearer token (§5 "Authentication"),
// analogous to the teacher's Gopkg.reg but keyed by registry URL rather
// than carrying a single ambient one.
const RegistryCredentialsFileName = "registry-auth.toml"

type rawCredentials struct {
	Registries map[string]rawRegistryEntry `toml:"registries"`
}

type rawRegistryEntry struct {
	Token string `toml:"token"`
}

// RegistryCredentials maps a registry base URL to its bearer token.
// Grounded on the teacher's registry_config.go (registryConfig/rawConfig),
// generalized from a single registry to one entry per distinct URL a
// workspace's dependencies name.
type RegistryCredentials struct {
	tokens map[string]string
}

// LoadRegistryCredentials reads path (if it exists; a missing file is not
// an error, since most workspaces only use the default, unauthenticated
// registry).
func LoadRegistryCredentials(path string) (*RegistryCredentials, error) {
	text, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &RegistryCredentials{tokens: map[string]string{}}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	var raw rawCredentials
	if err := toml.Unmarshal(text, &raw); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	rc := &RegistryCredentials{tokens: make(map[string]string, len(raw.Registries))}
	for url, entry := range raw.Registries {
		rc.tokens[url] = entry.Token
	}
	return rc, nil
}

// TokenFor returns the bearer token configured for url, or "" if none is
// set.
func (rc *RegistryCredentials) TokenFor(url string) string {
	if rc == nil {
		return ""
	}
	return rc.tokens[url]
}
