package sanitizer

// NormalizeStringSlice maps every item through normalize, dropping empty
// results and later duplicates. The result is never nil.
func NormalizeStringSlice(items []string, normalize func(string) string) []string {
	result := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		n := normalize(item)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		result = append(result, n)
	}
	return result
}

func NormalizeAmenities(amenities []string) []string {
	return NormalizeStringSlice(amenities, NormalizeAmenity)
}

// NormalizeImages keeps the caller's order; the first image is the cover.
func NormalizeImages(urls []string) []string {
	return NormalizeStringSlice(urls, NormalizeURL)
}
