package merge

// unionFind is a disjoint-set forest over comparable keys. Sets are
// reported in the order their first member was added.
type unionFind[T comparable] struct {
	parent map[T]T
	rank   map[T]int
	order  []T
}

func newUnionFind[T comparable]() *unionFind[T] {
	return &unionFind[T]{parent: make(map[T]T), rank: make(map[T]int)}
}

func (u *unionFind[T]) add(x T) {
	if _, ok := u.parent[x]; ok {
		return
	}
	u.parent[x] = x
	u.order = append(u.order, x)
}

func (u *unionFind[T]) find(x T) T {
	u.add(x)
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind[T]) union(a, b T) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}

// sets returns every set with its members in insertion order.
func (u *unionFind[T]) sets() [][]T {
	index := make(map[T]int)
	var out [][]T
	for _, x := range u.order {
		r := u.find(x)
		i, ok := index[r]
		if !ok {
			i = len(out)
			index[r] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], x)
	}
	return out
}
