// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quality

import (
	"unicode/utf8"

	"github.com/pdiddy/faq-engine/pkg/types"
)

const unknownBucket = "Unknown"

// Summarize computes distribution and length statistics over records.
// Averages are zero for an empty input.
func Summarize(records []types.FAQRecord) types.QualityStats {
	stats := types.QualityStats{
		Total:        len(records),
		ByCategory:   map[string]int{},
		ByDifficulty: map[string]int{},
		BySegment:    map[string]int{},
	}
	if len(records) == 0 {
		return stats
	}

	var qLen, aLen, kw int
	for _, rec := range records {
		stats.ByCategory[bucket(rec.Category)]++
		stats.ByDifficulty[bucket(string(rec.Difficulty))]++
		stats.BySegment[bucket(string(rec.Segment))]++
		qLen += utf8.RuneCountInString(rec.Question)
		aLen += utf8.RuneCountInString(rec.Answer)
		kw += len(rec.Keywords)
	}

	n := float64(len(records))
	stats.AverageQuestionLength = float64(qLen) / n
	stats.AverageAnswerLength = float64(aLen) / n
	stats.AverageKeywords = float64(kw) / n
	return stats
}

func bucket(v string) string {
	if v == "" {
		return unknownBucket
	}
	return v
}
