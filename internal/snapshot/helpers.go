package snapshot

import "strconv"

func workerIDString(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// suppressedNames are well-known system binaries a suppressed OS-table scan
// must never attribute to the target, grounded directly in
// _examples/original_source/graphene_ha/test_harness.py's own suppression
// list for its /proc fallback layer.
var suppressedNames = map[string]bool{
	"sh":      true,
	"bash":    true,
	"systemd": true,
	"grep":    true,
	"ps":      true,
}

func isSuppressed(name string) bool {
	return suppressedNames[name]
}
