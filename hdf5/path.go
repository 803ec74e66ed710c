package hdf5

import (
	"fmt"
	"path"
	"strings"
)

// ParseAttrPath splits "/group/object@attr" into the object path and the
// attribute name.
//
//   - "/@root_attr" -> "/", "root_attr"
//   - "/data@units" -> "/data", "units"
//   - "case/index@label_kind" -> "/case/index", "label_kind"
func ParseAttrPath(p string) (objectPath, attrName string, err error) {
	if p == "" {
		return "", "", fmt.Errorf("%w: empty attribute path", ErrInvalidPath)
	}
	at := strings.LastIndex(p, "@")
	if at == -1 {
		return "", "", fmt.Errorf("%w: attribute path must contain '@': %s", ErrInvalidPath, p)
	}
	attrName = p[at+1:]
	if attrName == "" {
		return "", "", fmt.Errorf("%w: empty attribute name: %s", ErrInvalidPath, p)
	}
	return CleanPath(p[:at]), attrName, nil
}

// JoinAttrPath is the inverse of [ParseAttrPath].
func JoinAttrPath(objectPath, attrName string) string {
	return CleanPath(objectPath) + "@" + attrName
}

// CleanPath returns the rooted, cleaned form of p.
func CleanPath(p string) string {
	return path.Join("/", p)
}

// validName checks a single link name.
func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return fmt.Errorf("%w: bad link name %q", ErrInvalidPath, name)
	}
	return nil
}

// depth is the number of components in a cleaned path; "/" has depth 0.
func depth(p string) int {
	if p == "/" {
		return 0
	}
	return strings.Count(p, "/")
}
