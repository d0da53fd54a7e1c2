// Package unionfind implements a disjoint-set structure with path compression
// and union by size. Plat Pursuit uses it to group regional releases of the
// same game (NA/EU/JP concept ids) into a single canonical title so that
// duplicate platinums do not inflate progression metrics.
// No external dependencies - uses only standard library.
package unionfind

// DisjointSet tracks connected groups of string keys.
type DisjointSet struct {
	parent map[string]string
	size   map[string]int
}

// New creates an empty DisjointSet.
func New() *DisjointSet {
	return &DisjointSet{
		parent: make(map[string]string),
		size:   make(map[string]int),
	}
}

// Add registers a key as its own singleton group.
// Adding an existing key is a no-op.
func (d *DisjointSet) Add(key string) {
	if _, ok := d.parent[key]; ok {
		return
	}
	d.parent[key] = key
	d.size[key] = 1
}

// Find returns the canonical representative of the key's group.
// Unknown keys are registered as singletons first.
// Applies path compression: every node on the walk is re-pointed at the root.
func (d *DisjointSet) Find(key string) string {
	if _, ok := d.parent[key]; !ok {
		d.Add(key)
		return key
	}

	root := key
	for d.parent[root] != root {
		root = d.parent[root]
	}

	// Compress the path
	for d.parent[key] != root {
		next := d.parent[key]
		d.parent[key] = root
		key = next
	}

	return root
}

// Union merges the groups containing a and b.
// The larger group absorbs the smaller one (union by size).
func (d *DisjointSet) Union(a, b string) {
	ra := d.Find(a)
	rb := d.Find(b)
	if ra == rb {
		return
	}

	if d.size[ra] < d.size[rb] {
		ra, rb = rb, ra
	}

	d.parent[rb] = ra
	d.size[ra] += d.size[rb]
}

// Connected returns true if a and b are in the same group.
func (d *DisjointSet) Connected(a, b string) bool {
	return d.Find(a) == d.Find(b)
}

// GroupSize returns the number of keys in the group containing key.
func (d *DisjointSet) GroupSize(key string) int {
	return d.size[d.Find(key)]
}

// Count returns the number of distinct groups.
func (d *DisjointSet) Count() int {
	count := 0
	for key, parent := range d.parent {
		if key == parent {
			count++
		}
	}
	return count
}

// Groups returns all groups keyed by their canonical representative.
func (d *DisjointSet) Groups() map[string][]string {
	groups := make(map[string][]string)
	for key := range d.parent {
		root := d.Find(key)
		groups[root] = append(groups[root], key)
	}
	return groups
}
