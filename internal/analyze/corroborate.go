package analyze

import "strings"

// resolveCrossReferences reports whether any claimed cross-reference matches
// a source name present in the corpus. Matching is case-insensitive and
// tolerant of partial names ("DeepMind blog" resolves against "deepmind").
// An empty reference list trivially resolves: there is nothing to verify.
func resolveCrossReferences(refs, sourceNames []string) bool {
	if len(refs) == 0 {
		return true
	}

	names := make([]string, 0, len(sourceNames))
	for _, name := range sourceNames {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			names = append(names, name)
		}
	}

	for _, ref := range refs {
		ref = strings.ToLower(strings.TrimSpace(ref))
		if ref == "" {
			continue
		}
		for _, name := range names {
			if strings.Contains(ref, name) || strings.Contains(name, ref) {
				return true
			}
		}
	}
	return false
}
