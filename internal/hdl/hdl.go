// Package hdl locates Verilog components and derives the content
// fingerprints that key the build cache.
//
// Components follow the library layout <library>/<name>/<name>.v. A
// build is identified by the md5 of every source file plus the
// canonical encoding of its parameter overrides, so the same component
// built with different parameters lands in a different object
// directory and the cache never serves a stale artifact for changed
// sources.
package hdl

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Component is a resolvable Verilog design unit.
type Component struct {
	// Name is the component (and top module) name.
	Name string
	// Sources are absolute paths to the Verilog sources, primary first.
	Sources []string
	// Dir is the component's library directory.
	Dir string
}

// Resolve locates the component named name under libraryDir.
// The primary source must exist at <libraryDir>/<name>/<name>.v.
func Resolve(libraryDir, name string) (Component, error) {
	dir, err := filepath.Abs(filepath.Join(libraryDir, name))
	if err != nil {
		return Component{}, err
	}
	src := filepath.Join(dir, name+".v")
	if _, err := os.Stat(src); err != nil {
		return Component{}, fmt.Errorf("component %q not found: %w", name, err)
	}
	return Component{Name: name, Sources: []string{src}, Dir: dir}, nil
}

// FromSources builds a component directly from source paths. The
// component name defaults to the basename of the first source without
// its extension, matching how the original toolchain named modules.
func FromSources(sources []string) (Component, error) {
	if len(sources) == 0 {
		return Component{}, fmt.Errorf("at least one source is required")
	}
	abs := make([]string, len(sources))
	for i, s := range sources {
		a, err := filepath.Abs(s)
		if err != nil {
			return Component{}, err
		}
		if _, err := os.Stat(a); err != nil {
			return Component{}, fmt.Errorf("source not found: %w", err)
		}
		abs[i] = a
	}
	base := filepath.Base(abs[0])
	name := base[:len(base)-len(filepath.Ext(base))]
	return Component{Name: name, Sources: abs, Dir: filepath.Dir(abs[0])}, nil
}

// Discover lists component names under libraryDir: every subdirectory
// containing <name>/<name>.v. Results are sorted.
func Discover(libraryDir string) ([]string, error) {
	entries, err := os.ReadDir(libraryDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read library: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		src := filepath.Join(libraryDir, e.Name(), e.Name()+".v")
		if _, err := os.Stat(src); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Fingerprint hashes all source contents together with the canonical
// parameter encoding. The hex digest names the object directory
// ("verilator-<hash>") and the artifact ("lib<name>-<hash>.so").
func Fingerprint(c Component, params Params) (string, error) {
	h := md5.New()
	for _, src := range c.Sources {
		data, err := os.ReadFile(src)
		if err != nil {
			return "", fmt.Errorf("failed to read source: %w", err)
		}
		h.Write(data)
	}
	enc, err := params.Canonical()
	if err != nil {
		return "", err
	}
	h.Write(enc)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ObjDir returns the object directory name for a fingerprint.
func ObjDir(fingerprint string) string {
	return "verilator-" + fingerprint
}

// LibName returns the shared artifact name for a component build.
func LibName(component, fingerprint string) string {
	return "lib" + component + "-" + fingerprint + ".so"
}
