// Package knowledge is the curated psychoeducation library SelfSage explains
// from. Each topic is a markdown file whose first line is "# <Name>".
package knowledge

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed topics/*.md
var topicFiles embed.FS

var topics = mustLoad(topicFiles)

// Topics returns the topic names in alphabetical order.
func Topics() []string {
	names := make([]string, 0, len(topics))
	for name := range topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the background text for a topic. Names match case-insensitively.
func Lookup(name string) (canonical, text string, ok bool) {
	for n, t := range topics {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return n, t, true
		}
	}
	return "", "", false
}

func mustLoad(fsys fs.FS) map[string]string {
	out, err := load(fsys)
	if err != nil {
		panic(err)
	}
	return out
}

func load(fsys fs.FS) (map[string]string, error) {
	paths, err := fs.Glob(fsys, "topics/*.md")
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(paths))
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, err
		}
		heading, body, _ := strings.Cut(string(data), "\n")
		name := strings.TrimSpace(strings.TrimPrefix(heading, "#"))
		if name == "" || !strings.HasPrefix(heading, "# ") {
			return nil, fmt.Errorf("knowledge: %s has no title heading", p)
		}
		out[name] = strings.TrimSpace(body)
	}
	return out, nil
}
