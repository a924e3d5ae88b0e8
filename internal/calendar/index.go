package calendar

// CellLimit is how many events a grid cell lists before collapsing the rest
// into a "+N" counter.
const CellLimit = 3

// Index groups items under the key returned by keyFn, keeping the order in
// which items were given. Items with an empty key are dropped.
func Index[T any](items []T, keyFn func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, item := range items {
		key := keyFn(item)
		if key == "" {
			continue
		}
		out[key] = append(out[key], item)
	}
	return out
}

// Overflow returns the first limit items and how many were left out.
func Overflow[T any](items []T, limit int) ([]T, int) {
	if len(items) <= limit {
		return items, 0
	}
	return items[:limit], len(items) - limit
}
