package builder

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Env map[string]string

// Environment returns the settings sercomgen reads from the process
// environment.
func Environment() Env {
	return map[string]string{
		// Comma separated targets that replace the board file's list.
		"SERCOMGEN_TARGETS": getenv("SERCOMGEN_TARGETS", ""),
		// Default output directory for generated files.
		"SERCOMGEN_OUT": getenv("SERCOMGEN_OUT", "."),
		// Build tags the board package is loaded with, in addition to
		// the target's own tags.
		"SERCOMGEN_TAGS": getenv("SERCOMGEN_TAGS", ""),
	}
}

func (e Env) Print() {
	keys := maps.Keys(e)
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Printf("%s=%s\n", k, e[k])
	}
}

func (e Env) Value(key string) string {
	if v, ok := e[key]; ok {
		return v
	}
	return ""
}

// List splits a comma separated value, dropping empty elements.
func (e Env) List(key string) []string {
	var result []string
	for _, value := range strings.Split(e.Value(key), ",") {
		if value = strings.TrimSpace(value); len(value) > 0 {
			result = append(result, value)
		}
	}
	return result
}

func getenv(key, _default string) (value string) {
	value = os.Getenv(key)
	if len(value) == 0 {
		value = _default
	}
	return value
}
