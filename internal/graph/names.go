package graph

// IsObfuscatedName reports whether name looks machine generated: two
// characters or fewer, or three characters starting with "aa". Such names
// carry no meaning across versions and are never matched by name alone.
func IsObfuscatedName(name string) bool {
	switch {
	case len(name) <= 2:
		return true
	case len(name) == 3 && name[:2] == "aa":
		return true
	}
	return false
}
