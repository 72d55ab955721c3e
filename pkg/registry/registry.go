// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"wenwen-recommender/internal/models"
)

func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v Vocabulary
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &v, nil
}

func SaveVocabulary(path string, v *Vocabulary) error {
	v.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// LoadWithDefaults reads path and merges it over Default. An empty path
// returns the defaults.
func LoadWithDefaults(path string) (*Vocabulary, error) {
	def := Default()
	if path == "" {
		return def, nil
	}
	file, err := LoadVocabulary(path)
	if err != nil {
		return nil, err
	}
	merged := Merge(def, file)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Merge returns a copy of defaults with every non-empty section of file
// replacing the matching section. Maps merge per key.
func Merge(defaults, file *Vocabulary) *Vocabulary {
	out := defaults.clone()
	if file == nil {
		return out
	}
	if file.Version != "" {
		out.Version = file.Version
	}
	if file.LastUpdated != "" {
		out.LastUpdated = file.LastUpdated
	}
	for k, words := range file.Intents {
		if len(words) > 0 {
			out.Intents[k] = append([]string(nil), words...)
		}
	}
	for k, words := range file.CategorySignals {
		if len(words) > 0 {
			out.CategorySignals[k] = append([]string(nil), words...)
		}
	}
	for k, tone := range file.Tones {
		out.Tones[k] = tone
	}
	replace(&out.EducationSignals, file.EducationSignals)
	replace(&out.FoodSignals, file.FoodSignals)
	replace(&out.FollowUpPhrases, file.FollowUpPhrases)
	replace(&out.FabricatedNames, file.FabricatedNames)
	replace(&out.FakeAddressPatterns, file.FakeAddressPatterns)
	return out
}

func replace(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = append([]string(nil), src...)
	}
}

func (v *Vocabulary) clone() *Vocabulary {
	out := &Vocabulary{
		Version:             v.Version,
		LastUpdated:         v.LastUpdated,
		Intents:             make(map[string][]string, len(v.Intents)),
		EducationSignals:    append([]string(nil), v.EducationSignals...),
		FoodSignals:         append([]string(nil), v.FoodSignals...),
		FollowUpPhrases:     append([]string(nil), v.FollowUpPhrases...),
		FabricatedNames:     append([]string(nil), v.FabricatedNames...),
		FakeAddressPatterns: append([]string(nil), v.FakeAddressPatterns...),
		Tones:               make(map[string]ToneProfile, len(v.Tones)),
		CategorySignals:     make(map[string][]string, len(v.CategorySignals)),
	}
	for k, words := range v.Intents {
		out.Intents[k] = append([]string(nil), words...)
	}
	for k, words := range v.CategorySignals {
		out.CategorySignals[k] = append([]string(nil), words...)
	}
	for k, tone := range v.Tones {
		out.Tones[k] = tone
	}
	return out
}

// Validate rejects unknown intent or tone keys, uncompilable address
// patterns and tone profiles without their fixed phrases.
func (v *Vocabulary) Validate() error {
	var problems []string

	for key, words := range v.Intents {
		in, ok := models.ParseIntent(key)
		if !ok || in == models.IntentGeneral {
			problems = append(problems, fmt.Sprintf("intents: unknown scored intent %q", key))
			continue
		}
		for _, w := range words {
			if strings.TrimSpace(w) == "" {
				problems = append(problems, fmt.Sprintf("intents.%s: empty keyword", key))
			}
		}
	}
	for key := range v.CategorySignals {
		if _, ok := models.ParseIntent(key); !ok {
			problems = append(problems, fmt.Sprintf("categorySignals: unknown intent %q", key))
		}
	}
	for i, p := range v.FakeAddressPatterns {
		if _, err := regexp.Compile(p); err != nil {
			problems = append(problems, fmt.Sprintf("fakeAddressPatterns[%d]: %v", i, err))
		}
	}
	for _, name := range v.FabricatedNames {
		if strings.TrimSpace(name) == "" {
			problems = append(problems, "fabricatedNames: empty entry")
		}
	}
	for key, tone := range v.Tones {
		if _, ok := models.ParseTone(key); !ok {
			problems = append(problems, fmt.Sprintf("tones: unknown tone %q", key))
			continue
		}
		if tone.Opening == "" || tone.EmptyResult == "" || tone.Closing == "" {
			problems = append(problems, fmt.Sprintf("tones.%s: opening, emptyResult and closing are required", key))
		}
	}
	for _, t := range models.AllTones() {
		if _, ok := v.Tones[string(t)]; !ok {
			problems = append(problems, fmt.Sprintf("tones: missing profile %q", t))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("vocabulary invalid: %s", strings.Join(problems, "; "))
	}
	return nil
}

// AddFabricatedName appends name unless an equal entry exists.
func (v *Vocabulary) AddFabricatedName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, existing := range v.FabricatedNames {
		if existing == name {
			return false
		}
	}
	v.FabricatedNames = append(v.FabricatedNames, name)
	return true
}

// AddKeyword appends a lower-cased keyword to a scored intent.
func (v *Vocabulary) AddKeyword(intent models.Intent, keyword string) error {
	if intent == models.IntentGeneral {
		return fmt.Errorf("GENERAL has no keywords")
	}
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return fmt.Errorf("empty keyword")
	}
	if v.Intents == nil {
		v.Intents = map[string][]string{}
	}
	for _, existing := range v.Intents[string(intent)] {
		if existing == keyword {
			return fmt.Errorf("keyword %q already present for %s", keyword, intent)
		}
	}
	v.Intents[string(intent)] = append(v.Intents[string(intent)], keyword)
	return nil
}

// Signals converts CategorySignals into the typed, lower-cased form used by
// the engine and the firewall. Unknown intent keys are skipped.
func (v *Vocabulary) Signals() models.CategorySignals {
	out := make(models.CategorySignals, len(v.CategorySignals))
	for key, words := range v.CategorySignals {
		in, ok := models.ParseIntent(key)
		if !ok {
			continue
		}
		lowered := make([]string, 0, len(words))
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				lowered = append(lowered, w)
			}
		}
		out[in] = lowered
	}
	return out
}
