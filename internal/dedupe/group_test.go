package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrt-labs/crm-sync-cli/internal/model"
)

func contact(id, first, last, url string, extra map[string]string) model.Record {
	props := map[string]string{
		model.FieldFirstName: first,
		model.FieldLastName:  last,
	}
	if url != "" {
		props[model.FieldLinkedInURL] = url
	}
	for k, v := range extra {
		props[k] = v
	}
	return model.Record{ID: id, Properties: props}
}

func groupIDs(g Group) []string {
	ids := make([]string, len(g.Records))
	for i, r := range g.Records {
		ids[i] = r.ID
	}
	return ids
}

func TestBuildIndex_SkipsShortAndEmptyKeys(t *testing.T) {
	records := []model.Record{
		contact("1", "Al", "", "", nil),          // name key "al" too short
		contact("2", "", "", "", nil),            // empty everything
		contact("3", "John", "Smith", "", nil),   // name only
		contact("4", "", "", "https://x/a", nil), // url only
	}
	idx := BuildIndex(records, nil)
	assert.Len(t, idx.ByName, 1)
	assert.Equal(t, []string{"3"}, idx.ByName["john smith"])
	assert.Equal(t, []string{"4"}, idx.ByURL["x/a"])
}

func TestGroups_DirectNameMatch(t *testing.T) {
	records := []model.Record{
		contact("10", "John", "Smith MBA", "", nil),
		contact("11", "John", "Smith", "", nil),
		contact("12", "Alice", "Wong", "", nil),
	}
	groups := Groups(records, nil)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"10", "11"}, groupIDs(groups[0]))
}

func TestGroups_DirectURLMatch(t *testing.T) {
	records := []model.Record{
		contact("1", "J", "S", "https://x/in/jsmith/", nil),
		contact("2", "Jon", "Smythe", "https://x/in/jsmith", nil),
	}
	groups := Groups(records, nil)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"1", "2"}, groupIDs(groups[0]))
}

func TestGroups_TransitiveAcrossKeyTypes(t *testing.T) {
	// A~B by name, B~C by URL: all three belong to one group even though
	// A and C share nothing directly.
	records := []model.Record{
		contact("1", "John", "Smith", "https://x/in/unrelated", nil),
		contact("2", "John", "Smith", "https://x/in/jsmith", nil),
		contact("3", "Johnny", "S", "https://x/in/jsmith/", nil),
	}
	groups := Groups(records, nil)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"1", "2", "3"}, groupIDs(groups[0]))
}

func TestGroups_DiscardsSingletons(t *testing.T) {
	records := []model.Record{
		contact("1", "John", "Smith", "", nil),
		contact("2", "Alice", "Wong", "", nil),
	}
	assert.Empty(t, Groups(records, nil))
}

func TestGroups_DeterministicAcrossInputOrder(t *testing.T) {
	records := []model.Record{
		contact("5", "John", "Smith", "https://x/in/a", nil),
		contact("3", "John", "Smith", "", nil),
		contact("9", "Jane", "Doe", "https://x/in/b", nil),
		contact("7", "J", "D", "https://x/in/b/", nil),
	}
	first := Groups(records, nil)

	reversed := []model.Record{records[3], records[2], records[1], records[0]}
	second := Groups(reversed, nil)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, groupIDs(first[i]), groupIDs(second[i]))
	}
}

func TestGroups_MembersSortedNumerically(t *testing.T) {
	records := []model.Record{
		contact("100", "John", "Smith", "", nil),
		contact("9", "John", "Smith", "", nil),
	}
	groups := Groups(records, nil)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"9", "100"}, groupIDs(groups[0]))
}
