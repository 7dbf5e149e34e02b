package findings

import "sort"

// Sort orders findings by a stable key so the externally observable
// output sequence is deterministic given the same input and
// configuration (spec.md §6's ordering guarantee: "final sort of any
// merged parallel output by a stable key, typically stable id then
// span"). The key here is (stage, kind, first path location,
// message), since a finding has no single id of its own but its first
// path step is exactly the anchor location a reader would sort on.
func Sort(fs []Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]

		if a.Stage != b.Stage {
			return a.Stage < b.Stage
		}

		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}

		af, bf := anchor(a), anchor(b)

		if af.File != bf.File {
			return af.File < bf.File
		}

		if af.Line != bf.Line {
			return af.Line < bf.Line
		}

		if af.Col != bf.Col {
			return af.Col < bf.Col
		}

		return a.Message < b.Message
	})
}

// anchor returns a Finding's first path step, or a zero PathNode for a
// finding built with no resolvable path.
func anchor(f Finding) PathNode {
	if len(f.Path) == 0 {
		return PathNode{}
	}

	return f.Path[0]
}
