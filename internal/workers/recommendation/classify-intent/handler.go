package classifyintent

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"wenwen-recommender/internal/models"
)

const (
	TaskType = "classify-intent"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Classifier maps free text to an IntentResult by keyword scoring.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	config *Config
	logger Logger
}

func NewClassifier(config *Config, log Logger) *Classifier {
	c := &Classifier{
		config: config,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
	for _, in := range models.ScoredIntents {
		if len(config.Keywords[in]) == 0 {
			c.logger.Warn("intent has no keywords and can never win", map[string]interface{}{
				"intent": string(in),
			})
		}
	}
	return c
}

// Classify never fails. Empty or undecodable input yields GENERAL with zero
// confidence.
func (c *Classifier) Classify(text string) models.IntentResult {
	normalized := normalize(text)
	result := models.IntentResult{
		Intent:          models.IntentGeneral,
		Confidence:      0,
		MatchedKeywords: []string{},
		Language:        DetectLanguage(normalized),
		IsFollowUp:      containsAny(normalized, c.config.FollowUpPhrases),
	}
	if normalized == "" {
		return result
	}

	scores := c.Scores(normalized)
	best := Score{Intent: models.IntentGeneral}
	for _, s := range scores {
		// strict comparison keeps the earlier intent on ties
		if s.Value > best.Value {
			best = s
		}
	}
	if best.Value > 0 {
		result.Intent = best.Intent
		result.Confidence = best.Value
		result.MatchedKeywords = best.Matched
	}

	c.applyOverrides(normalized, scores, &result)

	c.logger.Info("intent classified", map[string]interface{}{
		"intent":     string(result.Intent),
		"confidence": result.Confidence,
		"keywords":   result.MatchedKeywords,
		"language":   string(result.Language),
		"isFollowUp": result.IsFollowUp,
	})
	return result
}

// Scores returns the per-intent score in declaration order. Input must
// already be normalized.
func (c *Classifier) Scores(normalized string) []Score {
	scores := make([]Score, 0, len(models.ScoredIntents))
	for _, in := range models.ScoredIntents {
		patterns := c.config.Keywords[in]
		s := Score{Intent: in, Matched: []string{}}
		if len(patterns) == 0 {
			scores = append(scores, s)
			continue
		}
		bonus := 0.0
		for _, kw := range patterns {
			if strings.Contains(normalized, kw) {
				s.Matched = append(s.Matched, kw)
				bonus += c.config.LengthBonus * float64(utf8.RuneCountInString(kw))
			}
		}
		if len(s.Matched) > 0 {
			s.Value = clamp(float64(len(s.Matched))/float64(len(patterns)) + bonus)
		}
		scores = append(scores, s)
	}
	return scores
}

// applyOverrides forces ENGLISH_LEARNING or FOOD when only one of the two
// signal sets is present. With both present the scorer's winner stands.
func (c *Classifier) applyOverrides(normalized string, scores []Score, result *models.IntentResult) {
	education := matching(normalized, c.config.EducationSignals)
	food := matching(normalized, c.config.FoodSignals)

	switch {
	case len(education) > 0 && len(food) == 0:
		force(result, scoreFor(scores, models.IntentEnglishLearning), c.config.EducationFloor, education)
	case len(food) > 0 && len(education) == 0:
		force(result, scoreFor(scores, models.IntentFood), c.config.FoodFloor, food)
	}
}

func force(result *models.IntentResult, s Score, floor float64, signals []string) {
	result.Intent = s.Intent
	result.Confidence = clamp(max(s.Value, floor))
	result.MatchedKeywords = mergeUnique(s.Matched, signals)
}

func scoreFor(scores []Score, in models.Intent) Score {
	for _, s := range scores {
		if s.Intent == in {
			return s
		}
	}
	return Score{Intent: in}
}

// DetectLanguage is a coarse script check. Kana wins over Han so Japanese
// text with kanji is not tagged Chinese.
func DetectLanguage(text string) models.Language {
	var han, latin, kana, hangul int
	for _, r := range text {
		switch {
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			kana++
		case unicode.Is(unicode.Hangul, r):
			hangul++
		case unicode.Is(unicode.Han, r):
			han++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	switch {
	case kana > 0:
		return models.LanguageJa
	case hangul > 0:
		return models.LanguageKo
	case latin > han:
		return models.LanguageEn
	default:
		return models.LanguageZhTW
	}
}

func normalize(text string) string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	return strings.ToLower(strings.TrimSpace(text))
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func matching(text string, words []string) []string {
	out := []string{}
	for _, w := range words {
		if strings.Contains(text, w) {
			out = append(out, w)
		}
	}
	return out
}

func mergeUnique(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, w := range list {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
