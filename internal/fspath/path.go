// Package fspath models the normalized file system paths used by the
// generator. Separators are always forward slashes and a directory is
// written with a trailing separator, so "/out/" names a directory while
// "/out/a.o" names a file.
package fspath

import (
	"strings"
)

const separator = "/"

// Path is a normalized path value. The zero value is the empty path.
type Path struct {
	value string
}

// Parse normalizes raw into a Path. Backslashes become forward slashes,
// "." segments are dropped and ".." segments are folded into their parent
// where possible. A trailing separator is preserved.
func Parse(raw string) Path {
	if raw == "" {
		return Path{}
	}
	raw = strings.ReplaceAll(raw, "\\", separator)

	root := rootOf(raw)
	rest := raw[len(root):]
	isDir := strings.HasSuffix(rest, separator) || rest == "." || rest == ".." ||
		strings.HasSuffix(rest, "/.") || strings.HasSuffix(rest, "/..")

	var segments []string
	for _, seg := range strings.Split(rest, separator) {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(segments) > 0 && segments[len(segments)-1] != ".." {
				segments = segments[:len(segments)-1]
				continue
			}
			if root != "" {
				// Cannot climb above the file system root.
				continue
			}
		}
		segments = append(segments, seg)
	}

	value := root + strings.Join(segments, separator)
	if len(segments) > 0 && isDir {
		value += separator
	}
	if value == "" {
		value = "." + separator
	}
	return Path{value: value}
}

// rootOf returns the root prefix of raw: "/" for unix roots, "C:/" for
// drive roots and "" for relative paths.
func rootOf(raw string) string {
	if strings.HasPrefix(raw, separator) {
		return separator
	}
	if len(raw) >= 3 && raw[1] == ':' && raw[2] == '/' && isLetter(raw[0]) {
		return raw[:3]
	}
	return ""
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// String returns the normalized form.
func (p Path) String() string {
	return p.value
}

// IsEmpty reports whether p is the zero path.
func (p Path) IsEmpty() bool {
	return p.value == ""
}

// IsRooted reports whether p is absolute.
func (p Path) IsRooted() bool {
	return rootOf(p.value) != ""
}

// HasFileName reports whether the last component of p names a file rather
// than a directory.
func (p Path) HasFileName() bool {
	return p.value != "" && !strings.HasSuffix(p.value, separator)
}

// FileName returns the last component of a file path, or "" for a directory.
func (p Path) FileName() string {
	if !p.HasFileName() {
		return ""
	}
	return p.value[strings.LastIndex(p.value, separator)+1:]
}

// Parent returns the directory that contains p. The parent of a root is the
// root itself, which callers use as the stop condition when walking upward.
func (p Path) Parent() Path {
	root := rootOf(p.value)
	trimmed := strings.TrimSuffix(p.value, separator)
	if len(trimmed) < len(root) || trimmed+separator == root {
		return p
	}
	idx := strings.LastIndex(trimmed, separator)
	if idx < 0 {
		return Path{value: "." + separator}
	}
	return Path{value: trimmed[:idx+1]}
}

// Join appends a relative path to p. If other is rooted it is returned as is.
func (p Path) Join(other Path) Path {
	if other.IsRooted() || p.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return p
	}
	base := p.value
	if !strings.HasSuffix(base, separator) {
		base += separator
	}
	return Parse(base + other.value)
}

// MakeAbsolute resolves p against workingDir when p is not already rooted.
func (p Path) MakeAbsolute(workingDir Path) Path {
	if p.IsRooted() {
		return p
	}
	return workingDir.Join(p)
}

// HasPrefix reports whether the string form of p starts with prefix. The
// comparison is a plain string prefix and ignores segment boundaries.
func (p Path) HasPrefix(prefix Path) bool {
	return strings.HasPrefix(p.value, prefix.value)
}

// ParseAll parses every entry of raw.
func ParseAll(raw []string) []Path {
	paths := make([]Path, 0, len(raw))
	for _, r := range raw {
		paths = append(paths, Parse(r))
	}
	return paths
}
