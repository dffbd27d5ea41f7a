package plan

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/software-mansion/scarb/resolve"
)

// fingerprintUnit folds the unit's identity-relevant inputs into a single
// stable hash via resolve.FingerprintInputs: the main, component and
// plugin package ids, the cfg set and the compiler config. Content
// checksums of the components and plugin fingerprints are not part of it.
func fingerprintUnit(main Component, components, plugins []Component, cfgSet []string, compilerConfig map[string]interface{}) string {
	named := map[string]string{
		"main": main.Package.String(),
	}
	for _, c := range components {
		named["component:"+c.Package.String()] = c.Package.String()
	}
	for _, p := range plugins {
		named["plugin:"+p.Package.String()] = p.Package.String()
	}
	named["cfg"] = strings.Join(sortedCopy(cfgSet), ",")
	named["compiler_config"] = flattenCompilerConfig(compilerConfig)
	return resolve.FingerprintInputs(named)
}

func sortedCopy(s []string) []string {
	out := append([]string{}, s...)
	sort.Strings(out)
	return out
}

func flattenCompilerConfig(cfg map[string]interface{}) string {
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%v;", k, cfg[k])
	}
	return b.String()
}

// globMatchPackageKey matches pattern against a PackageId.String() key the
// way build-external-contracts glob patterns match against package names
// in §4.H: only the name portion before the first space is considered,
// since package-id strings are "<name> v<version> (<source>)".
func globMatchPackageKey(pattern, key string) bool {
	name := key
	if i := strings.IndexByte(key, ' '); i >= 0 {
		name = key[:i]
	}
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}
