package keautil

import (
	"fmt"
	"regexp"

	"github.com/pkg/errors"
)

// Matches the Kea include directive, e.g., <?include "/etc/kea/subnets.json"?>.
var includeRegexp = regexp.MustCompile(`<\?include\s+"([^"]+)"\s*\?>`)

// Returns the Kea include directive for the given path.
func IncludeDirective(path string) string {
	return fmt.Sprintf(`<?include "%s"?>`, path)
}

// Returns the paths of the files included directly by the content, in
// the order of appearance.
func ListIncludes(content []byte) []string {
	var paths []string
	for _, match := range includeRegexp.FindAllSubmatch(content, -1) {
		paths = append(paths, string(match[1]))
	}
	return paths
}

// Replaces the include directives with the content of the included files
// the way Kea does when it loads the configuration. The read function
// supplies the content of the files. The included files may include other
// files, but the include loops are rejected.
func ResolveIncludes(path string, read func(path string) ([]byte, error)) ([]byte, error) {
	return resolveIncludes(path, read, map[string]bool{})
}

func resolveIncludes(path string, read func(string) ([]byte, error), parents map[string]bool) ([]byte, error) {
	if parents[path] {
		return nil, errors.Errorf("detected an include loop at %s", path)
	}
	content, err := read(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "cannot read the included file %s", path)
	}

	parents[path] = true
	defer delete(parents, path)

	var resolveErr error
	resolved := includeRegexp.ReplaceAllFunc(content, func(directive []byte) []byte {
		if resolveErr != nil {
			return nil
		}
		nested := string(includeRegexp.FindSubmatch(directive)[1])
		nestedContent, err := resolveIncludes(nested, read, parents)
		if err != nil {
			resolveErr = err
			return nil
		}
		return nestedContent
	})
	if resolveErr != nil {
		return nil, resolveErr
	}
	return resolved, nil
}
