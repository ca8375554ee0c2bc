package pipeline

// Dedupe collapses exact canonical-URL duplicates, keeping the first-seen item.
// Input order is feed processing order, so earlier feeds in the registry win
// on collision. Order is preserved.
func Dedupe(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	deduped := make([]Item, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.URL]; dup {
			continue
		}
		seen[item.URL] = struct{}{}
		deduped = append(deduped, item)
	}
	return deduped
}
