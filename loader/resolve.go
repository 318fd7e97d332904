package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sciknoworg/OntoLearner-sub000/vocabulary"
)

var drivePrefix = regexp.MustCompile(`^/?[A-Za-z]:`)

// ResolveImport maps an owl:imports IRI to a local path or URL. The first
// matching rule wins:
//
//  1. OBO PURLs resolve to baseDir/<path> when that file exists, else to
//     the URL itself.
//  2. Other http(s) IRIs are used as-is.
//  3. file:// IRIs become local paths, joined with baseDir when given, and
//     must exist.
func ResolveImport(uri, baseDir string) (string, error) {
	switch {
	case strings.HasPrefix(uri, vocabulary.OBONamespace):
		if baseDir != "" {
			local := filepath.Join(baseDir, filepath.FromSlash(strings.TrimPrefix(uri, vocabulary.OBONamespace)))
			if fileExists(local) {
				return local, nil
			}
		}
		return uri, nil

	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return uri, nil

	case strings.HasPrefix(uri, "file://"):
		return resolveFileURI(uri, baseDir)
	}
	return "", fmt.Errorf("unsupported import IRI %q", uri)
}

func resolveFileURI(uri, baseDir string) (string, error) {
	p := strings.TrimPrefix(uri, "file://")
	p = drivePrefix.ReplaceAllString(p, "")

	var candidates []string
	if baseDir != "" {
		candidates = append(candidates, filepath.Join(baseDir, filepath.FromSlash(strings.TrimLeft(p, "/"))))
	}
	candidates = append(candidates, filepath.FromSlash(p))

	for _, c := range candidates {
		if fileExists(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("import file not found: %s", uri)
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
