package validaterecommendations

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"wenwen-recommender/internal/common/metrics"
	"wenwen-recommender/internal/models"
	recommendbusinesses "wenwen-recommender/internal/workers/recommendation/recommend-businesses"
)

const (
	TaskType = "validate-recommendations"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Firewall filters candidate records before prompt construction and scans
// generated replies afterwards. It never fails on data.
type Firewall struct {
	config   *Config
	registry *FabricationRegistry
	patterns []*regexp.Regexp
	logger   Logger
}

func NewFirewall(config *Config, registry *FabricationRegistry, log Logger) (*Firewall, error) {
	patterns := make([]*regexp.Regexp, 0, len(config.FakeAddressPatterns))
	for i, p := range config.FakeAddressPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("fake address pattern %d: %w", i, err)
		}
		patterns = append(patterns, re)
	}
	if registry == nil {
		registry = NewFabricationRegistry()
	}
	return &Firewall{
		config:   config,
		registry: registry,
		patterns: patterns,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}, nil
}

func (f *Firewall) Registry() *FabricationRegistry {
	return f.registry
}

// Validate runs the four stages in order. Output is a subset of records
// with order preserved; running it again on the output changes nothing.
func (f *Firewall) Validate(records []models.BusinessRecord, intent models.Intent) Result {
	result := Result{
		Records:  make([]models.BusinessRecord, 0, len(records)),
		Issues:   []Finding{},
		Warnings: []Finding{},
	}

	for _, r := range records {
		if finding, drop := f.check(r, intent, &result.Warnings); drop {
			result.Issues = append(result.Issues, finding)
			metrics.FirewallDropped.WithLabelValues(string(finding.Stage)).Inc()
			continue
		}
		result.Records = append(result.Records, r)
	}

	inspection := recommendbusinesses.Inspect(result.Records, intent, f.config.Signals)
	for _, id := range inspection.Mismatched {
		r := byID(result.Records, id)
		result.Warnings = append(result.Warnings, Finding{
			RecordID: id,
			Name:     r.Name,
			Stage:    StageCategory,
			Message:  fmt.Sprintf("category %q is not expected for %s", r.Category, intent),
		})
	}

	if len(result.Issues) > 0 || len(result.Warnings) > 0 {
		f.logger.Info("firewall filtered recommendations", map[string]interface{}{
			"intent":   string(intent),
			"input":    len(records),
			"kept":     len(result.Records),
			"issues":   result.Issues,
			"warnings": len(result.Warnings),
		})
	}
	return result
}

// check applies stages 1 to 3 to one record. Warnings are appended in place.
func (f *Firewall) check(r models.BusinessRecord, intent models.Intent, warnings *[]Finding) (Finding, bool) {
	if hits := f.registry.Matches(r.Name); len(hits) > 0 {
		return Finding{RecordID: r.ID, Name: r.Name, Stage: StageFabrication,
			Message: fmt.Sprintf("name matches known fabrication %q", hits[0])}, true
	}

	if !r.HasRequiredFields() {
		return Finding{RecordID: r.ID, Name: r.Name, Stage: StageCompleteness,
			Message: "missing name or category"}, true
	}
	if strings.TrimSpace(r.Address) == "" {
		*warnings = append(*warnings, Finding{RecordID: r.ID, Name: r.Name, Stage: StageCompleteness, Message: "missing address"})
	}
	if strings.TrimSpace(r.Phone) == "" {
		*warnings = append(*warnings, Finding{RecordID: r.ID, Name: r.Name, Stage: StageCompleteness, Message: "missing phone"})
	}

	if f.config.Signals.Suggests(intent, r) {
		return Finding{}, false
	}
	switch intent {
	case models.IntentEnglishLearning, models.IntentFood:
		return Finding{RecordID: r.ID, Name: r.Name, Stage: StageIntentConsistency,
			Message: fmt.Sprintf("neither category nor name fits %s", intent)}, true
	case models.IntentParking, models.IntentShopping, models.IntentBeauty, models.IntentMedical, models.IntentGeneral:
		*warnings = append(*warnings, Finding{RecordID: r.ID, Name: r.Name, Stage: StageIntentConsistency,
			Message: fmt.Sprintf("neither category nor name fits %s", intent)})
	}
	return Finding{}, false
}

// ScanReplyText checks a generated reply for deny-listed names and for
// address-shaped strings.
func (f *Firewall) ScanReplyText(text string) ScanResult {
	return f.ScanReplyTextAgainst(text, nil)
}

// ScanReplyTextAgainst is ScanReplyText that tolerates addresses belonging
// to the supplied records.
func (f *Firewall) ScanReplyTextAgainst(text string, records []models.BusinessRecord) ScanResult {
	result := ScanResult{Matches: []string{}, Issues: []string{}}

	for _, name := range f.registry.Matches(text) {
		result.Matches = append(result.Matches, name)
		result.Issues = append(result.Issues, fmt.Sprintf("reply mentions known fabricated business %q", name))
	}

	known := make([]string, 0, len(records))
	for _, r := range records {
		if a := compact(r.Address); a != "" {
			known = append(known, a)
		}
	}
	for _, re := range f.patterns {
		for _, m := range re.FindAllString(text, -1) {
			if isKnownAddress(re, m, known) {
				continue
			}
			result.Matches = append(result.Matches, m)
			result.Issues = append(result.Issues, fmt.Sprintf("reply contains unverified address %q", m))
		}
	}

	result.Flagged = len(result.Matches) > 0
	if result.Flagged {
		metrics.ReplyScanFlagged.Inc()
		f.logger.Warn("reply scan flagged output", map[string]interface{}{
			"matches": result.Matches,
		})
	}
	return result
}

// isKnownAddress reports whether match, or a suffix of it that still
// matches re, appears in a known address with its road name intact.
// Suffixes cover matches that swallowed leading words of the sentence.
func isKnownAddress(re *regexp.Regexp, match string, known []string) bool {
	if len(known) == 0 {
		return false
	}
	for i := range match {
		suffix := match[i:]
		if i > 0 && re.FindString(suffix) != suffix {
			continue
		}
		c := compact(suffix)
		for _, a := range known {
			if containsAtBoundary(a, c) {
				return true
			}
		}
	}
	return false
}

// containsAtBoundary reports whether part occurs in addr starting where a
// road name can start, so 山路100號 never matches inside 中山路100號.
func containsAtBoundary(addr, part string) bool {
	for off := 0; off < len(addr); {
		idx := strings.Index(addr[off:], part)
		if idx < 0 {
			return false
		}
		at := off + idx
		if at == 0 {
			return true
		}
		prev, _ := utf8.DecodeLastRuneInString(addr[:at])
		if isAddressBoundary(prev) {
			return true
		}
		_, size := utf8.DecodeRuneInString(addr[at:])
		off = at + size
	}
	return false
}

// administrative suffixes that end a city or district prefix
const adminSuffixes = "市區縣鄉鎮里村"

func isAddressBoundary(r rune) bool {
	if strings.ContainsRune(adminSuffixes, r) {
		return true
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func compact(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func byID(records []models.BusinessRecord, id string) models.BusinessRecord {
	for _, r := range records {
		if r.ID == id {
			return r
		}
	}
	return models.BusinessRecord{ID: id}
}
