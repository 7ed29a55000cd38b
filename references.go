package knowledge

import getsafe "github.com/w-h-a/knowledge/util/get_safe"

// Reference precedence: an explicit text path beats a url beats a generic
// source field. Empty values do not count.
var referenceKeys = []string{"txtPath", "url", "source"}

// Reference extracts the source identifier from chunk metadata, or an
// empty string when none of the reference fields is set.
func Reference(metadata map[string]any) string {
	for _, key := range referenceKeys {
		if v := getsafe.String(metadata, key); len(v) > 0 {
			return v
		}
	}
	return ""
}

// referenceSet collects references, deduplicated in first-seen order.
type referenceSet struct {
	seen    map[string]struct{}
	ordered []string
}

func newReferenceSet() *referenceSet {
	return &referenceSet{seen: map[string]struct{}{}}
}

func (s *referenceSet) add(ref string) {
	if _, ok := s.seen[ref]; ok {
		return
	}
	s.seen[ref] = struct{}{}
	s.ordered = append(s.ordered, ref)
}

func (s *referenceSet) values() []string {
	return append([]string{}, s.ordered...)
}
