// Package chunk splits slices into bounded, order-preserving groups.
package chunk

// Slice partitions items into contiguous groups of at most size elements.
// The groups share the backing array of items. A non-positive size yields
// a single group.
func Slice[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]T{items}
	}

	groups := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		groups = append(groups, items[start:end:end])
	}
	return groups
}
