package report

import "slices"

// GroupBy groups items by key. keys lists each distinct key once, in the order
// it was first seen; groups keeps each group's items in input order.
func GroupBy[T any, K comparable](items []T, key func(T) K) (keys []K, groups map[K][]T) {
	groups = make(map[K][]T)
	for _, it := range items {
		k := key(it)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], it)
	}
	return keys, groups
}

// HashJoin is an inner equi-join. For every left item, in order, it emits
// combine(l, r) for each matching right item, in right order. Zero-valued
// keys never match, like NULL in SQL.
func HashJoin[L, R any, K comparable, O any](
	left []L,
	right []R,
	leftKey func(L) K,
	rightKey func(R) K,
	combine func(L, R) O,
) []O {
	var zero K
	index := make(map[K][]R, len(right))
	for _, r := range right {
		if k := rightKey(r); k != zero {
			index[k] = append(index[k], r)
		}
	}
	out := make([]O, 0, len(left))
	for _, l := range left {
		k := leftKey(l)
		if k == zero {
			continue
		}
		for _, r := range index[k] {
			out = append(out, combine(l, r))
		}
	}
	return out
}

// WindowMax returns, for each item, the maximum of val over all items sharing
// its partition key. The row count is preserved.
func WindowMax[T any, K comparable](items []T, part func(T) K, val func(T) int64) []int64 {
	best := make(map[K]int64)
	for _, it := range items {
		k, v := part(it), val(it)
		if cur, ok := best[k]; !ok || v > cur {
			best[k] = v
		}
	}
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = best[part(it)]
	}
	return out
}

// DenseRank returns, for each item, its 1-based dense rank within the items
// sharing its partition key. Items are ordered by cmp (negative ranks first);
// items comparing equal share a rank and the next distinct value gets the next
// integer.
func DenseRank[T any, K comparable](items []T, part func(T) K, cmp func(a, b T) int) []int {
	ranks := make([]int, len(items))
	keys, groups := GroupBy(indexes(len(items)), func(i int) K { return part(items[i]) })
	for _, k := range keys {
		idx := groups[k]
		slices.SortStableFunc(idx, func(a, b int) int { return cmp(items[a], items[b]) })
		rank := 0
		for j, i := range idx {
			if j == 0 || cmp(items[idx[j-1]], items[i]) != 0 {
				rank++
			}
			ranks[i] = rank
		}
	}
	return ranks
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
