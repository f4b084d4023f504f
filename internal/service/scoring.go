package service

import (
	"math"
	"sort"

	"cdr-backend-V1.0/internal/model"
)

// Severity labels shared by both scales.
const (
	SeverityNone         = "None / Normal"
	SeverityQuestionable = "Questionable / Very Mild"
	SeverityMild         = "Mild"
	SeverityModerate     = "Moderate"
	SeveritySevere       = "Severe"
)

// Concern is one of the highest-rated answers within a domain, paired
// with the catalog text (or the raw question id when no text is known).
type Concern struct {
	QID    string  `json:"qId"`
	Rating float64 `json:"rating"`
	Text   string  `json:"text"`
}

// DomainStats is the read-side analytics row for one catalog domain.
type DomainStats struct {
	Domain         string    `json:"domain"`
	TotalQuestions int       `json:"totalQuestions"`
	Answered       int       `json:"answered"`
	Score          float64   `json:"score"`
	MaxScore       float64   `json:"maxScore"`
	Percent        int       `json:"percent"`
	Severity       string    `json:"severity"`
	TopConcerns    []Concern `json:"topConcerns,omitempty"`
}

// TotalScore sums every rating in the answer set. No weighting; an
// unanswered question simply contributes nothing.
func TotalScore(answers []model.Answer) float64 {
	var total float64
	for _, a := range answers {
		total += a.Rating
	}
	return total
}

// OverallSeverity classifies a raw total score. This scale is distinct
// from the percent-based one used per domain; keep them separate.
func OverallSeverity(score float64) string {
	switch {
	case score <= 9:
		return SeverityNone
	case score <= 22:
		return SeverityQuestionable
	case score <= 45:
		return SeverityMild
	case score <= 67:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

// DomainSeverity classifies a domain's percent-of-maximum. Not
// interchangeable with OverallSeverity: the inputs are on different scales.
func DomainSeverity(percent int) string {
	switch {
	case percent <= 15:
		return SeverityNone
	case percent <= 40:
		return SeverityQuestionable
	case percent <= 60:
		return SeverityMild
	case percent <= 85:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

// DomainBreakdown aggregates an answer set against the catalog, domain by
// domain. With an empty catalog it returns no rows; the caller still gets
// a total score and overall severity from the answers alone.
func DomainBreakdown(answers []model.Answer, domains []model.Domain) []DomainStats {
	stats := make([]DomainStats, 0, len(domains))
	for _, d := range domains {
		inDomain := make(map[string]bool, len(d.Questions))
		text := make(map[string]string, len(d.Questions))
		for _, q := range d.Questions {
			inDomain[q.QID] = true
			text[q.QID] = q.Text
		}

		var domainAnswers []model.Answer
		for _, a := range answers {
			if inDomain[a.QID] {
				domainAnswers = append(domainAnswers, a)
			}
		}

		score := TotalScore(domainAnswers)
		maxScore := float64(len(d.Questions)) * 3
		percent := 0
		if maxScore > 0 {
			percent = int(math.Round(score / maxScore * 100))
		}

		stats = append(stats, DomainStats{
			Domain:         d.Name,
			TotalQuestions: len(d.Questions),
			Answered:       len(domainAnswers),
			Score:          score,
			MaxScore:       maxScore,
			Percent:        percent,
			Severity:       DomainSeverity(percent),
			TopConcerns:    topConcerns(domainAnswers, text, 3),
		})
	}
	return stats
}

// topConcerns picks the n highest-rated answers, ties broken by the
// original answer order.
func topConcerns(answers []model.Answer, text map[string]string, n int) []Concern {
	ranked := make([]model.Answer, len(answers))
	copy(ranked, answers)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rating > ranked[j].Rating
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	concerns := make([]Concern, 0, len(ranked))
	for _, a := range ranked {
		t := text[a.QID]
		if t == "" {
			t = a.QID
		}
		concerns = append(concerns, Concern{QID: a.QID, Rating: a.Rating, Text: t})
	}
	return concerns
}
