package suggest

import (
	_ "embed"
	"fmt"
	"math/rand"

	"gopkg.in/yaml.v3"
)

//go:embed fallback.yaml
var fallbackYAML []byte

type fallbackFile struct {
	Suggestions []string `yaml:"suggestions"`
}

// fallbackSuggestions is the static list served when generation fails. It is
// embedded at build time, so loading it cannot fail at runtime.
var fallbackSuggestions = mustLoadFallback()

func mustLoadFallback() []string {
	var file fallbackFile
	if err := yaml.Unmarshal(fallbackYAML, &file); err != nil {
		panic(fmt.Sprintf("suggest: embedded fallback.yaml is invalid: %v", err))
	}
	if len(file.Suggestions) == 0 {
		panic("suggest: embedded fallback.yaml has no suggestions")
	}
	return file.Suggestions
}

// sampleFallback returns a randomized slice of the static list so repeated
// outages do not show every user the same five names.
func sampleFallback(n int) []string {
	shuffled := make([]string, len(fallbackSuggestions))
	copy(shuffled, fallbackSuggestions)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
