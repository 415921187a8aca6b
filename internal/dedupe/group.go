package dedupe

import (
	"sort"

	"github.com/chrt-labs/crm-sync-cli/internal/model"
)

// Group is a set of records transitively connected by a shared name key or
// URL key. Records are sorted ascending by ID.
type Group struct {
	Records []model.Record
}

// Groups computes duplicate groups over a record set: the connected
// components of the "shares a canonical key" relation, discarding singletons.
// A record matching one partner by name and another by URL pulls all three
// into one group. Output order and membership are deterministic for a given
// input set regardless of input ordering. A nil norm uses the standard
// normalizer.
func Groups(records []model.Record, norm *Normalizer) []Group {
	// Fix the arena ordering first: ascending ID, so union-by-minimum-root
	// always yields the same representative on repeated runs.
	sorted := make([]model.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return model.LessID(sorted[i].ID, sorted[j].ID) })

	indexOf := make(map[string]int, len(sorted))
	for i, r := range sorted {
		indexOf[r.ID] = i
	}

	d := newDSU(len(sorted))
	idx := BuildIndex(sorted, norm)
	for _, bucket := range []map[string][]string{idx.ByName, idx.ByURL} {
		for _, ids := range bucket {
			for i := 1; i < len(ids); i++ {
				d.union(indexOf[ids[0]], indexOf[ids[i]])
			}
		}
	}

	members := make(map[int][]model.Record)
	for i, r := range sorted {
		root := d.find(i)
		members[root] = append(members[root], r)
	}

	roots := make([]int, 0, len(members))
	for root, recs := range members {
		if len(recs) >= 2 {
			roots = append(roots, root)
		}
	}
	sort.Ints(roots)

	groups := make([]Group, 0, len(roots))
	for _, root := range roots {
		groups = append(groups, Group{Records: members[root]})
	}
	return groups
}
