package dedupe

// dsu is an arena-indexed disjoint-set: nodes are dense indexes assigned by
// the caller, parent[i] == i marks a root. Unions always attach the larger
// root under the smaller, so the component representative is the
// lowest-indexed member and grouping is deterministic for a fixed ordering.
type dsu struct {
	parent []int
}

func newDSU(n int) *dsu {
	d := &dsu{parent: make([]int, n)}
	for i := range d.parent {
		d.parent[i] = i
	}
	return d
}

// find returns the root of x, compressing the path as it goes.
func (d *dsu) find(x int) int {
	root := x
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[x] != root {
		d.parent[x], x = root, d.parent[x]
	}
	return root
}

// union merges the components of a and b.
func (d *dsu) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		d.parent[rb] = ra
	} else {
		d.parent[ra] = rb
	}
}
