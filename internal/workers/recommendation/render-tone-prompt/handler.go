package rendertoneprompt

import (
	"fmt"
	"strconv"
	"strings"

	"wenwen-recommender/internal/models"
	"wenwen-recommender/pkg/registry"
)

const (
	TaskType = "render-tone-prompt"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Renderer struct {
	config *Config
	logger Logger
}

func NewRenderer(config *Config, log Logger) *Renderer {
	r := &Renderer{
		config: config,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
	for _, t := range models.AllTones() {
		if _, ok := config.Profiles[t]; !ok {
			r.logger.Warn("tone profile missing, using built-in", map[string]interface{}{"tone": string(t)})
		}
	}
	return r
}

// SelectTone is the default tone for an intent.
func SelectTone(intent models.Intent) models.Tone {
	switch intent {
	case models.IntentParking, models.IntentMedical:
		return models.ToneGuide
	case models.IntentEnglishLearning:
		return models.ToneWarm
	case models.IntentFood, models.IntentShopping, models.IntentBeauty, models.IntentGeneral:
		return models.ToneFriendly
	default:
		return models.ToneFriendly
	}
}

// ResolveTone applies a valid preference over the intent default.
func ResolveTone(intent models.Intent, preference string) models.Tone {
	if t, ok := models.ParseTone(strings.ToLower(strings.TrimSpace(preference))); ok {
		return t
	}
	return SelectTone(intent)
}

func (r *Renderer) profile(t models.Tone) registry.ToneProfile {
	if p, ok := r.config.Profiles[t]; ok {
		return p
	}
	return registry.Default().Tones[string(t)]
}

// Render builds the payload. Identical inputs give identical output.
func (r *Renderer) Render(result models.IntentResult, records []models.BusinessRecord, userText, preference string) Payload {
	tone := ResolveTone(result.Intent, preference)
	p := r.profile(tone)

	var b strings.Builder
	b.WriteString(r.config.Persona)
	b.WriteString("\n\n")

	b.WriteString(sectionStyle)
	b.WriteString("\n")
	fmt.Fprintf(&b, "語氣：%s（%s）\n", p.DisplayName, strings.Join(p.Personality, "、"))
	if p.Style != "" {
		b.WriteString(p.Style)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "開場可以使用：%s\n結尾可以使用：%s\n", p.Opening, p.Closing)
	fmt.Fprintf(&b, "回覆語言：%s\n\n", result.Language)

	b.WriteString(sectionConstraints)
	b.WriteString("\n")
	for i, c := range r.constraints() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c)
	}
	b.WriteString("\n")

	b.WriteString(sectionData)
	b.WriteString("\n")
	if len(records) == 0 {
		b.WriteString(p.EmptyResult)
	} else {
		b.WriteString(p.DataPrefix)
		b.WriteString("\n")
		b.WriteString(Listing(records))
	}

	payload := Payload{
		Tone:   tone,
		System: strings.TrimRight(b.String(), "\n"),
		User:   userText,
	}

	r.logger.Info("prompt rendered", map[string]interface{}{
		"intent":      string(result.Intent),
		"tone":        string(tone),
		"recordCount": len(records),
		"systemRunes": len([]rune(payload.System)),
	})
	return payload
}

func (r *Renderer) constraints() []string {
	if len(r.config.Constraints) == 0 {
		return DefaultConstraints()
	}
	return r.config.Constraints
}

// Listing serializes records for the model, one numbered block each.
func Listing(records []models.BusinessRecord) string {
	var b strings.Builder
	for i, rec := range records {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec.Name)
		fmt.Fprintf(&b, "   類別：%s\n", rec.Category)
		fmt.Fprintf(&b, "   地址：%s\n", orPlaceholder(rec.Address, placeholderAddress))
		fmt.Fprintf(&b, "   電話：%s\n", orPlaceholder(rec.Phone, placeholderPhone))
		fmt.Fprintf(&b, "   營業時間：%s\n", orPlaceholder(rec.BusinessHours, placeholderHours))
		if rating, ok := rec.Rating(); ok {
			fmt.Fprintf(&b, "   評分：%s\n", strconv.FormatFloat(rating, 'f', -1, 64))
		}
		if d := rec.Description(); d != "" {
			fmt.Fprintf(&b, "   簡介：%s\n", d)
		}
		if rec.IsPartner {
			b.WriteString("   合作店家\n")
		}
	}
	return b.String()
}

// SafeReply is a template answer built only from the records, used in place
// of a model reply that failed the scan.
func (r *Renderer) SafeReply(intent models.Intent, records []models.BusinessRecord, preference string) string {
	p := r.profile(ResolveTone(intent, preference))

	var b strings.Builder
	if len(records) == 0 {
		b.WriteString(p.EmptyResult)
		b.WriteString("\n")
		b.WriteString(p.Closing)
		return b.String()
	}

	b.WriteString(p.Opening)
	b.WriteString("\n")
	b.WriteString(p.DataPrefix)
	b.WriteString("\n")
	for i, rec := range records {
		fmt.Fprintf(&b, "%d. %s（%s）", i+1, rec.Name, rec.Category)
		if rec.Address != "" {
			fmt.Fprintf(&b, "，%s", rec.Address)
		}
		if rec.Phone != "" {
			fmt.Fprintf(&b, "，%s", rec.Phone)
		}
		b.WriteString("\n")
	}
	b.WriteString(p.Closing)
	return b.String()
}

func orPlaceholder(v, placeholder string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}
