package dev

import (
	"path/filepath"
	"strings"

	"github.com/vango-dev/weave/internal/config"
)

// CollectWatchPaths returns the deduplicated module directories for the project.
func CollectWatchPaths(cfg *config.Config) []string {
	paths := cfg.WatchPaths()

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}

	return unique
}

// ModuleID returns the slash-separated id of the module file at path,
// relative to the first watch root containing it and without extension.
func ModuleID(roots []string, path string) string {
	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return filepath.ToSlash(trimExt(rel))
	}
	return filepath.ToSlash(trimExt(filepath.Base(path)))
}

func trimExt(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p))
}
