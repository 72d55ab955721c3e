package loginteraction

import (
	"time"
	"unicode/utf8"

	"wenwen-recommender/internal/models"
)

// Analyze computes the dashboard signals over records. maxResults bounds the
// recommendation count considered relevant.
func Analyze(sessionID string, records []Record, messageCount, maxResults int) Metrics {
	m := Metrics{SessionID: sessionID, Turns: len(records), MessageCount: messageCount}
	if len(records) == 0 {
		return m
	}
	n := float64(len(records))

	var confidence, relevant, satisfaction float64
	tones := make(map[models.Tone]int)
	for _, r := range records {
		confidence += r.Confidence
		if c := len(r.RecommendedIDs); c >= 1 && c <= maxResults {
			relevant++
		}
		satisfaction += SatisfactionScore(r.Reply, r.Latency)
		tones[r.Tone]++
	}

	m.IntentAccuracy = confidence / n
	m.RecommendationRelevance = relevant / n
	m.Satisfaction = clamp(satisfaction / n)
	m.ToneAppropriateness = toneBalance(tones, n)
	return m
}

// SatisfactionScore bands reply length and rewards fast responses.
func SatisfactionScore(reply string, latency time.Duration) float64 {
	var score float64
	switch runes := utf8.RuneCountInString(reply); {
	case runes < 20:
		score = 0.3
	case runes <= 800:
		score = 0.8
	default:
		score = 0.5
	}
	switch {
	case latency < 2*time.Second:
		score += 0.2
	case latency < 5*time.Second:
		score += 0.1
	}
	return clamp(score)
}

// toneBalance is 1 minus the normalized spread between the most and least
// used observed tones.
func toneBalance(counts map[models.Tone]int, turns float64) float64 {
	if len(counts) == 0 {
		return 0
	}
	lo, hi := -1, 0
	for _, c := range counts {
		if c > hi {
			hi = c
		}
		if lo < 0 || c < lo {
			lo = c
		}
	}
	return clamp(1 - float64(hi-lo)/turns)
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
