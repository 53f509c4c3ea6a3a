package mapping

import "fmt"

// Directory looks up the display name of an internal entity by its key.
type Directory interface {
	Lookup(key string) (string, bool)
}

// DirectoryFunc adapts a plain function to the Directory interface.
type DirectoryFunc func(key string) (string, bool)

// Lookup calls f(key).
func (f DirectoryFunc) Lookup(key string) (string, bool) {
	return f(key)
}

// StaticDirectory is an in-memory Directory keyed by entity key.
type StaticDirectory map[string]string

// Lookup returns the name registered for key.
func (d StaticDirectory) Lookup(key string) (string, bool) {
	name, ok := d[key]
	return name, ok
}

// PlaceholderName is the display name used for keys the directory does not
// know.
func PlaceholderName(key string) string {
	return fmt.Sprintf("Unknown entity (%s)", key)
}

// DisplayName resolves key through dir. Unknown keys and a nil directory
// yield PlaceholderName(key).
func DisplayName(dir Directory, key string) string {
	if dir != nil {
		if name, ok := dir.Lookup(key); ok && name != "" {
			return name
		}
	}
	return PlaceholderName(key)
}
