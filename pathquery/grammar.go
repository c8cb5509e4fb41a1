// Package pathquery implements the mount's path grammar (spec.md §4.1):
// splitting a mount-relative path into tag-expression components, and
// recognizing the @flatten control token. Port of ffs.rs's parse_path and
// the PathNames/FfsPath helpers.
package pathquery

import "strings"

const (
	Flatten  = "@flatten"
	Dir      = "@dir"
	FlatInfo = "@flat-info"
)

// Parsed is the result of parsing a mount path: either Normal, a flat list
// of tag-expression components, or Flattened, the (filter, flat, combined)
// triple from spec.md §4.1.
type Parsed struct {
	Flattened bool

	// Normal mode.
	Components []string

	// Flattened mode.
	Filter   []string
	Flat     []string
	Combined []string
}

// Split breaks a mount-relative path into its Normal components, the Go
// analogue of Path::names() — ignoring any "." or ".." components and empty
// segments left by repeated slashes.
func Split(path string) []string {
	raw := strings.Split(path, "/")
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if c == "" || c == "." || c == ".." {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Parse implements parse_path: if any component is literally "@flatten", the
// path pivots into flattened mode with everything before as the filter and
// everything after as the flat suffix.
func Parse(path string) Parsed {
	return ParseComponents(Split(path))
}

// ParseComponents parses a path that has already been split into
// components, useful when the caller built the component list by joining
// (e.g. filter ++ flat) rather than a literal "/"-separated string.
func ParseComponents(components []string) Parsed {
	for i, c := range components {
		if c == Flatten {
			filter := append([]string(nil), components[:i]...)
			flat := append([]string(nil), components[i+1:]...)
			combined := append(append([]string(nil), filter...), flat...)
			return Parsed{
				Flattened: true,
				Filter:    filter,
				Flat:      flat,
				Combined:  combined,
			}
		}
	}
	return Parsed{Components: components}
}

// Join re-assembles components into a "/"-separated path with no leading
// slash, used to render @flat-info's payload (spec.md §6).
func Join(components []string) string {
	return strings.Join(components, "/")
}
