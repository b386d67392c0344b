// Package workdir resolves the helpctl project root: the directory that
// holds .helpctl/ (config, content database and server port file).
package workdir

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	rootFile = ".helpctl-root"
	stateDir = ".helpctl"
)

// ResolveBaseDir resolves the project root with conservative heuristics:
//  1. Honor .helpctl-root in the current directory.
//  2. Use the nearest directory at or above baseDir that has .helpctl/,
//     stopping at the git top level when inside a repository.
//
// If no marker is found, it returns baseDir unchanged.
func ResolveBaseDir(baseDir string) string {
	if baseDir == "" {
		return baseDir
	}
	baseDir = filepath.Clean(baseDir)

	if resolved, ok := readRootFile(baseDir); ok {
		return resolved
	}

	stop := ""
	if gitRoot, err := gitTopLevel(baseDir); err == nil && gitRoot != "" {
		stop = filepath.Clean(gitRoot)
	}

	for dir := baseDir; ; {
		if hasStateDir(dir) {
			return dir
		}
		if dir == stop {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return baseDir
}

func readRootFile(dir string) (string, bool) {
	content, err := os.ReadFile(filepath.Join(dir, rootFile))
	if err != nil {
		return "", false
	}

	resolved := strings.TrimSpace(string(content))
	if resolved == "" {
		return "", false
	}
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(dir, resolved)
	}

	return filepath.Clean(resolved), true
}

func hasStateDir(dir string) bool {
	fi, err := os.Stat(filepath.Join(dir, stateDir))
	return err == nil && fi.IsDir()
}

func gitTopLevel(dir string) (string, error) {
	out, err := exec.Command("git", "-C", dir, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
