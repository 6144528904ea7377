// Package batch discovers convertible documents on disk for batch
// conversion runs.
package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/MeKo-Tech/docpipe/internal/format"
)

// Options controls which files a discovery run accepts.
type Options struct {
	// Recursive descends into subdirectories of directory arguments.
	Recursive bool

	// Include restricts discovery to base names matching at least one
	// glob pattern; empty means no restriction.
	Include []string

	// Exclude drops files whose base name matches any glob pattern.
	Exclude []string

	// Formats is the converter's allow-list. Files of other formats are
	// dropped before conversion ever sees them; empty means every
	// recognized format.
	Formats []format.Format
}

// Discover finds convertible files named by the arguments: plain files
// are taken as-is, directories are scanned. The result is sorted and
// free of duplicates, so overlapping arguments are harmless.
func Discover(args []string, opts Options) ([]string, error) {
	accept := opts.acceptFunc()

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if accept(path) && !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if !opts.Recursive && path != arg {
					return filepath.SkipDir
				}
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// acceptFunc compiles the option filters into one predicate over a
// file path.
func (o Options) acceptFunc() func(string) bool {
	allowed := make(map[format.Format]bool, len(o.Formats))
	for _, f := range o.Formats {
		allowed[f] = true
	}

	return func(path string) bool {
		f := format.Detect(path, nil)
		if f == format.Unknown {
			return false
		}
		if len(allowed) > 0 && !allowed[f] {
			return false
		}
		base := filepath.Base(path)
		if matchAny(base, o.Exclude) {
			return false
		}
		return len(o.Include) == 0 || matchAny(base, o.Include)
	}
}

// matchAny reports whether the base name matches any glob pattern.
func matchAny(base string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
