package parse

import (
	"regexp"
	"strings"

	"github.com/m3rciful/kursbot/internal/domain"
)

// AlertRequest is an alert creation request recognized in free text.
type AlertRequest struct {
	From      string
	To        string
	Condition domain.Condition
	Target    float64
}

// numPat matches a user-typed number with optional grouping and either
// decimal separator; Amount does the strict parsing afterwards.
const numPat = `([0-9][0-9 \x{00a0}.,]*)`

var alertPatterns = []struct {
	re    *regexp.Regexp
	cond  func(match string) domain.Condition
	order []int // indexes of from, target, cond-word, to groups
}{
	// Symbolic: "USD > 13000", "eur<14 000 uzs".
	{
		re: regexp.MustCompile(`(?i)^\s*([a-z]{3})\s*([<>])\s*` + numPat + `\s*([a-z]{3})?\s*$`),
		cond: func(m string) domain.Condition {
			if m == ">" {
				return domain.ConditionAbove
			}
			return domain.ConditionBelow
		},
		order: []int{1, 3, 2, 4},
	},
	// English: "usd above 13000 uzs".
	{
		re: regexp.MustCompile(`(?i)^\s*([a-z]{3})\s+(above|below)\s+` + numPat + `\s*([a-z]{3})?\s*$`),
		cond: func(m string) domain.Condition {
			if strings.EqualFold(m, "above") {
				return domain.ConditionAbove
			}
			return domain.ConditionBelow
		},
		order: []int{1, 3, 2, 4},
	},
	// Russian: "usd выше 13000", "eur ниже 14000 uzs".
	{
		re: regexp.MustCompile(`(?i)^\s*([a-z]{3})\s+(выше|ниже)\s+` + numPat + `\s*([a-z]{3})?\s*$`),
		cond: func(m string) domain.Condition {
			if strings.EqualFold(m, "выше") {
				return domain.ConditionAbove
			}
			return domain.ConditionBelow
		},
		order: []int{1, 3, 2, 4},
	},
	// Uzbek: "usd 13000 dan yuqori", "eur 14000 dan past".
	{
		re: regexp.MustCompile(`(?i)^\s*([a-z]{3})\s+` + numPat + `\s*dan\s+(yuqori|past)\s*$`),
		cond: func(m string) domain.Condition {
			if strings.EqualFold(m, "yuqori") {
				return domain.ConditionAbove
			}
			return domain.ConditionBelow
		},
		order: []int{1, 2, 3, 0},
	},
}

// Alert recognizes an alert request in free text. Patterns are tried in
// order and the first match wins. The quote currency defaults to the base
// currency when omitted.
func Alert(text string) (AlertRequest, bool) {
	for _, p := range alertPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		target, err := Amount(m[p.order[1]])
		if err != nil {
			continue
		}
		req := AlertRequest{
			From:      strings.ToUpper(m[p.order[0]]),
			To:        domain.BaseCurrency,
			Condition: p.cond(m[p.order[2]]),
			Target:    target,
		}
		if p.order[3] > 0 && m[p.order[3]] != "" {
			req.To = strings.ToUpper(m[p.order[3]])
		}
		return req, true
	}
	return AlertRequest{}, false
}
