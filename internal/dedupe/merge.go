package dedupe

import (
	"sort"

	"github.com/chrt-labs/crm-sync-cli/internal/model"
)

// ComputeMerge returns the property patch that fills the keeper's empty
// tracked fields from the other records in its group. Others are visited in
// ascending-ID order and the first non-empty value for a field wins; a
// keeper field that already has a value is never touched. An empty map means
// there is nothing to write and the caller should skip the update.
func ComputeMerge(keeper model.Record, others []model.Record, tracked []string) map[string]string {
	sorted := make([]model.Record, len(others))
	copy(sorted, others)
	sort.Slice(sorted, func(i, j int) bool { return model.LessID(sorted[i].ID, sorted[j].ID) })

	updates := make(map[string]string)
	for _, other := range sorted {
		for _, f := range tracked {
			if keeper.Has(f) {
				continue
			}
			if _, taken := updates[f]; taken {
				continue
			}
			if v := other.Get(f); v != "" {
				updates[f] = v
			}
		}
	}
	return updates
}
