package dedupe

import "github.com/chrt-labs/crm-sync-cli/internal/model"

// Score ranks a record by data completeness. Compared lexicographically:
// a record with an email always beats one without, then a LinkedIn URL,
// then the count of non-empty tracked fields.
type Score struct {
	HasEmail    bool
	HasLinkedIn bool
	Filled      int
}

// ScoreRecord computes the completeness score over the tracked field set.
func ScoreRecord(r model.Record, tracked []string) Score {
	s := Score{
		HasEmail:    r.Has(model.FieldEmail),
		HasLinkedIn: r.Has(model.FieldLinkedInURL),
	}
	for _, f := range tracked {
		if r.Has(f) {
			s.Filled++
		}
	}
	return s
}

// Compare returns -1, 0, or 1 ordering s against o.
func (s Score) Compare(o Score) int {
	if c := compareBool(s.HasEmail, o.HasEmail); c != 0 {
		return c
	}
	if c := compareBool(s.HasLinkedIn, o.HasLinkedIn); c != 0 {
		return c
	}
	switch {
	case s.Filled < o.Filled:
		return -1
	case s.Filled > o.Filled:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

// SelectKeeper picks the group's canonical record: highest completeness
// score, ties broken by the larger ID. The tie-break is arbitrary but fixed;
// combined with the score it gives a total order, so the keeper is identical
// across repeated runs on the same input. Returns the keeper and the
// remaining records in ascending-ID order.
func SelectKeeper(g Group, tracked []string) (model.Record, []model.Record) {
	keeper := g.Records[0]
	keeperScore := ScoreRecord(keeper, tracked)
	for _, r := range g.Records[1:] {
		s := ScoreRecord(r, tracked)
		switch c := s.Compare(keeperScore); {
		case c > 0:
			keeper, keeperScore = r, s
		case c == 0 && model.LessID(keeper.ID, r.ID):
			keeper, keeperScore = r, s
		}
	}

	others := make([]model.Record, 0, len(g.Records)-1)
	for _, r := range g.Records {
		if r.ID != keeper.ID {
			others = append(others, r)
		}
	}
	return keeper, others
}
