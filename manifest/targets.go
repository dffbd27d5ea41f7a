package manifest

// canonicalizeTargets implements §4.B rules 3 and 4: inject a default
// `lib` target when no targets are declared at all; otherwise honor
// whatever was declared, and auto-detect unit/integration test targets
// when no `[[test]]` is present.
func canonicalizeTargets(path string, doc rawDoc) ([]Target, error) {
	var targets []Target

	if lib, ok := doc.table("lib"); ok {
		targets = append(targets, parseTarget(TargetKindLib, "lib", lib))
	}

	if tbl, ok := doc.table("target"); ok {
		for kindStr, v := range tbl {
			kind := TargetKind(kindStr)
			entries, ok := v.([]interface{})
			if !ok {
				continue
			}
			for _, e := range entries {
				if m, ok := e.(map[string]interface{}); ok {
					targets = append(targets, parseTarget(kind, kindStr, rawDoc(m)))
				}
			}
		}
	}

	explicitTests := doc.tableArray("test")
	for _, e := range explicitTests {
		targets = append(targets, parseTarget(TargetKindTest, "test", e))
	}

	if len(targets) == 0 {
		// Rule 3: presence of any target suppresses the default; here
		// there was none, so inject the implicit lib.
		pkgTbl, _ := doc.table("package")
		name, _ := pkgTbl.str("name")
		targets = append(targets, defaultLibTarget(name))
	}

	if len(explicitTests) == 0 {
		targets = append(targets, autoDetectTestTargets(targets)...)
	}

	return targets, nil
}

// autoDetectTestTargets synthesizes the unit test target pointing at the
// library entry file, plus a single integration test target whose source
// is the tests/ directory (§4.B rule 4, §6 "Auto-detected test targets").
// No file under tests/ is inspected, here or in the workspace layer; only
// the well-known synthetic names the planner expects are emitted.
func autoDetectTestTargets(existing []Target) []Target {
	var lib *Target
	for i := range existing {
		if existing[i].Kind == TargetKindLib {
			lib = &existing[i]
			break
		}
	}
	if lib == nil {
		return nil
	}
	unit := Target{
		Kind:   TargetKindTest,
		Name:   lib.Name + "_unittest",
		Source: lib.Source,
		Params: map[string]interface{}{"test-type": "unit"},
	}
	integration := Target{
		Kind:   TargetKindTest,
		Name:   lib.Name + "_integrationtest",
		Source: "tests/",
		Params: map[string]interface{}{"test-type": "integration"},
	}
	return []Target{unit, integration}
}
