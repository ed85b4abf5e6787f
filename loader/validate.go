package loader

// AllPresent reports whether every value is non-empty.
func AllPresent(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return false
		}
	}
	return true
}
