// internal/workers/recommendation/render-tone-prompt/models.go
package rendertoneprompt

import (
	"strings"

	"wenwen-recommender/internal/models"
)

// Payload is the instruction bundle for the language model. System carries
// the preamble, style, constraints and data sections. User is the question
// exactly as asked.
type Payload struct {
	Tone   models.Tone `json:"tone"`
	System string      `json:"system"`
	User   string      `json:"user"`
}

// Text is the full payload in section order.
func (p Payload) Text() string {
	var b strings.Builder
	b.WriteString(p.System)
	b.WriteString("\n\n")
	b.WriteString(sectionQuestion)
	b.WriteString("\n")
	b.WriteString(p.User)
	return b.String()
}

const (
	sectionStyle       = "【語氣風格】"
	sectionConstraints = "【必須遵守的規則】"
	sectionData        = "【店家資料】"
	sectionQuestion    = "【使用者問題】"

	placeholderAddress = "地址未提供"
	placeholderPhone   = "電話未提供"
	placeholderHours   = "營業時間未提供"
)
