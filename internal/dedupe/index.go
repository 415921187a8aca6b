package dedupe

import "github.com/chrt-labs/crm-sync-cli/internal/model"

// minNameKeyLen rejects keys too short to identify anyone ("al", "jj").
const minNameKeyLen = 3

// KeyIndex maps canonical keys to the IDs of the records carrying them.
// It records co-occurrence facts only; transitive grouping happens in Groups.
type KeyIndex struct {
	ByName map[string][]string
	ByURL  map[string][]string
}

// BuildIndex indexes a record set by canonical name key and URL key.
// Records with empty keys (or name keys shorter than three characters)
// are skipped for that key type. A nil norm uses the standard normalizer.
func BuildIndex(records []model.Record, norm *Normalizer) KeyIndex {
	if norm == nil {
		norm = defaultNormalizer
	}
	idx := KeyIndex{
		ByName: make(map[string][]string),
		ByURL:  make(map[string][]string),
	}
	for _, r := range records {
		if key := norm.Name(r.FullName()); len(key) >= minNameKeyLen {
			idx.ByName[key] = append(idx.ByName[key], r.ID)
		}
		if key := NormalizeURL(r.Get(model.FieldLinkedInURL)); key != "" {
			idx.ByURL[key] = append(idx.ByURL[key], r.ID)
		}
	}
	return idx
}
