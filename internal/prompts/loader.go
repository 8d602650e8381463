// Package prompts holds the embedded prompt templates used by the orchestrator and the
// panel agents. Each JSON file maps a prompt key to a template with {{.Name}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var files embed.FS

// parsed prompt files keyed by filename
var parsed sync.Map

var placeholderPattern = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// Get returns the raw template stored under key in file (e.g. "panel.json").
func Get(file, key string) (string, error) {
	set, err := load(file)
	if err != nil {
		return "", err
	}
	tmpl, ok := set[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, file)
	}
	return tmpl, nil
}

// Keys lists the prompt keys of a file, sorted.
func Keys(file string) ([]string, error) {
	set, err := load(file)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Placeholders returns the distinct placeholder names of a template, sorted.
func Placeholders(tmpl string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names
}

// Format substitutes placeholders in one pass. Values are never re-expanded and
// placeholders without a value are left in place.
func Format(tmpl string, data map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		if v, ok := data[m[3:len(m)-2]]; ok {
			return v
		}
		return m
	})
}

// Render loads a template and fills it. Every placeholder must have a value.
func Render(file, key string, data map[string]string) (string, error) {
	tmpl, err := Get(file, key)
	if err != nil {
		return "", err
	}
	var missing []string
	for _, name := range Placeholders(tmpl) {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %s/%s missing values for %s", file, key, strings.Join(missing, ", "))
	}
	return Format(tmpl, data), nil
}

func load(file string) (map[string]string, error) {
	if set, ok := parsed.Load(file); ok {
		return set.(map[string]string), nil
	}
	data, err := files.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", file, err)
	}
	var set map[string]string
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", file, err)
	}
	actual, _ := parsed.LoadOrStore(file, set)
	return actual.(map[string]string), nil
}
