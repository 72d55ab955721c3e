// internal/models/intent.go
package models

import "strings"

// Intent is the closed vocabulary of what a user is asking about.
// Every switch over Intent must list all values.
type Intent string

const (
	IntentFood            Intent = "FOOD"
	IntentEnglishLearning Intent = "ENGLISH_LEARNING"
	IntentParking         Intent = "PARKING"
	IntentShopping        Intent = "SHOPPING"
	IntentBeauty          Intent = "BEAUTY"
	IntentMedical         Intent = "MEDICAL"
	IntentGeneral         Intent = "GENERAL"
)

// ScoredIntents lists the keyword-scored intents in declaration order.
// Ties during scoring keep the earliest entry. GENERAL is the no-match result.
var ScoredIntents = []Intent{
	IntentFood,
	IntentEnglishLearning,
	IntentParking,
	IntentShopping,
	IntentBeauty,
	IntentMedical,
}

// AllIntents is ScoredIntents plus GENERAL.
func AllIntents() []Intent {
	out := make([]Intent, 0, len(ScoredIntents)+1)
	out = append(out, ScoredIntents...)
	return append(out, IntentGeneral)
}

func ParseIntent(s string) (Intent, bool) {
	for _, in := range AllIntents() {
		if string(in) == s {
			return in, true
		}
	}
	return "", false
}

// Category is a controlled business category as stored by the data store.
type Category string

const (
	CategoryFoodDining        Category = "food & dining"
	CategoryEducationTraining Category = "education & training"
	CategoryParking           Category = "parking"
	CategoryShoppingRetail    Category = "shopping & retail"
	CategoryBeautyWellness    Category = "beauty & wellness"
	CategoryMedicalHealth     Category = "medical & health"
)

// Tone names a reply style profile.
type Tone string

const (
	ToneGuide    Tone = "guide"
	ToneWarm     Tone = "warm"
	ToneFriendly Tone = "friendly"
)

func AllTones() []Tone {
	return []Tone{ToneGuide, ToneWarm, ToneFriendly}
}

func ParseTone(s string) (Tone, bool) {
	for _, t := range AllTones() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Language is the coarse locale tag produced by the classifier.
type Language string

const (
	LanguageZhTW Language = "zh-TW"
	LanguageEn   Language = "en"
	LanguageJa   Language = "ja"
	LanguageKo   Language = "ko"
)

// IntentResult is the classifier output for one message.
type IntentResult struct {
	Intent          Intent   `json:"intent"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matchedKeywords"`
	Language        Language `json:"language"`
	IsFollowUp      bool     `json:"isFollowUp"`
}

// CategorySignals maps an intent to lower-case substrings expected in the
// category or name of a record that fits it. Intents without an entry
// accept any record.
type CategorySignals map[Intent][]string

func (s CategorySignals) CategoryMatches(in Intent, category string) bool {
	return s.matches(in, category)
}

func (s CategorySignals) NameMatches(in Intent, name string) bool {
	return s.matches(in, name)
}

// Suggests reports whether either the category or the name carries a signal.
func (s CategorySignals) Suggests(in Intent, r BusinessRecord) bool {
	return s.matches(in, r.Category) || s.matches(in, r.Name)
}

func (s CategorySignals) matches(in Intent, text string) bool {
	signals, ok := s[in]
	if !ok || len(signals) == 0 {
		return true
	}
	text = strings.ToLower(text)
	for _, sig := range signals {
		if strings.Contains(text, sig) {
			return true
		}
	}
	return false
}
