// Package access checks declared file accesses against the directories an
// operation is allowed to touch.
package access

import (
	"errors"
	"fmt"

	"github.com/vk/opgraph/internal/fspath"
)

// ErrAccessDenied is returned when a requested file is outside every allowed
// directory.
var ErrAccessDenied = errors.New("access denied")

// Validate confirms that every requested path, made absolute against
// workingDir, starts with one of the allow-list entries. It returns the
// allow-list entries that were actually used, in order of first use.
//
// The match is a literal string prefix: an entry "/proj/src" also admits
// "/proj/src-extra/file". Allow-lists are expected to carry a trailing
// separator.
//
// Validation stops at the first denied path.
func Validate(allowList, requested []fspath.Path, workingDir fspath.Path) ([]fspath.Path, error) {
	var used []fspath.Path
	seen := make(map[string]struct{})

	for _, file := range requested {
		abs := file.MakeAbsolute(workingDir)
		dir, ok := match(allowList, abs)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not under any allowed directory", ErrAccessDenied, abs)
		}
		if _, dup := seen[dir.String()]; !dup {
			seen[dir.String()] = struct{}{}
			used = append(used, dir)
		}
	}
	return used, nil
}

func match(allowList []fspath.Path, file fspath.Path) (fspath.Path, bool) {
	for _, dir := range allowList {
		if file.HasPrefix(dir) {
			return dir, true
		}
	}
	return fspath.Path{}, false
}
