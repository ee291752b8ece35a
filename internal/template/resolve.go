package template

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PackagePrefix marks a template reference that is relative to the package
// root instead of the working directory.
const PackagePrefix = "[PACKAGE]"

// Resolver turns template references into absolute file paths.
type Resolver struct {
	root string
}

// NewResolver returns a Resolver rooted at root. An empty root means the
// directory holding the running executable.
func NewResolver(root string) (*Resolver, error) {
	if root == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locating package root: %w", err)
		}
		root = filepath.Dir(exe)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving package root %q: %w", root, err)
	}
	return &Resolver{root: abs}, nil
}

// Root returns the absolute package root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve returns the absolute path ref points at. "[PACKAGE]/x" resolves
// under the package root; any other path is taken relative to the working
// directory.
func (r *Resolver) Resolve(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("empty template reference")
	}
	if rest, ok := strings.CutPrefix(ref, PackagePrefix); ok {
		rest = strings.TrimLeft(rest, `/\`)
		return filepath.Join(r.root, filepath.FromSlash(rest)), nil
	}
	return filepath.Abs(ref)
}
