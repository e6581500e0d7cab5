package assessment

import (
	"sort"

	dErrors "bigfive/pkg/domain-errors"
)

// Bucket is the High/Medium/Low classification of a facet.
type Bucket string

const (
	BucketHigh   Bucket = "High"
	BucketMedium Bucket = "Medium"
	BucketLow    Bucket = "Low"
)

// Rank orders buckets High=3, Medium=2, Low=1.
func (b Bucket) Rank() int {
	switch b {
	case BucketHigh:
		return 3
	case BucketMedium:
		return 2
	case BucketLow:
		return 1
	}
	return 0
}

// ConfirmAnswer is the reply to a confirmation question.
type ConfirmAnswer string

const (
	AnswerYes   ConfirmAnswer = "Yes"
	AnswerNo    ConfirmAnswer = "No"
	AnswerMaybe ConfirmAnswer = "Maybe"
)

// ParseConfirmAnswer validates a confirmation answer.
func ParseConfirmAnswer(s string) (ConfirmAnswer, error) {
	switch a := ConfirmAnswer(s); a {
	case AnswerYes, AnswerNo, AnswerMaybe:
		return a, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "answer must be Yes, No or Maybe, got %q", s)
}

// BaseBucket classifies a raw score, using the prior only inside the
// 3.75..4.00 and 2.00..2.25 shoulders.
func BaseBucket(raw float64, prior int) Bucket {
	switch {
	case raw >= 4.00:
		return BucketHigh
	case raw <= 2.00:
		return BucketLow
	case raw > 2.75 && raw < 3.25:
		return BucketMedium
	case raw >= 3.75 && raw < 4.00 && prior >= 1:
		return BucketHigh
	case raw > 2.00 && raw <= 2.25 && prior <= -1:
		return BucketLow
	default:
		return BucketMedium
	}
}

// ApplyConfirmer returns the bucket after a confirmation answer. Maybe, and
// any answer for a facet outside both trigger bands, leave it unchanged.
func ApplyConfirmer(current Bucket, raw float64, prior int, answer ConfirmAnswer) Bucket {
	switch {
	case nearHighUnsupported(raw, prior):
		switch answer {
		case AnswerYes:
			return BucketHigh
		case AnswerNo:
			return BucketMedium
		}
	case nearLowUnopposed(raw, prior):
		switch answer {
		case AnswerNo:
			return BucketLow
		case AnswerYes:
			return BucketMedium
		}
	}
	return current
}

// Buckets computes base buckets for every facet and applies the asked
// confirmers in order.
func Buckets(facets []string, raw map[string]float64, prior map[string]int, asked []ConfirmRecord) map[string]Bucket {
	out := make(map[string]Bucket, len(facets))
	for _, f := range facets {
		out[f] = BaseBucket(raw[f], prior[f])
	}
	for _, c := range asked {
		if _, ok := out[c.Facet]; !ok {
			continue
		}
		out[c.Facet] = ApplyConfirmer(out[c.Facet], raw[c.Facet], prior[c.Facet], c.Answer)
	}
	return out
}

// OrderFacets sorts facets by bucket rank desc, raw desc, prior desc, then
// catalog index asc. The catalog index makes the order total.
func OrderFacets(facets []string, bucket map[string]Bucket, raw map[string]float64, prior map[string]int) []string {
	index := catalogIndex(facets)
	out := append([]string(nil), facets...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ra, rb := bucket[a].Rank(), bucket[b].Rank(); ra != rb {
			return ra > rb
		}
		if raw[a] != raw[b] {
			return raw[a] > raw[b]
		}
		if prior[a] != prior[b] {
			return prior[a] > prior[b]
		}
		return index[a] < index[b]
	})
	return out
}
