// Package parse turns user-typed text into amounts and alert requests.
package parse

import (
	"errors"
	"strconv"
	"strings"
)

// ErrBadAmount reports text that is not a positive number.
var ErrBadAmount = errors.New("invalid amount")

// Amount parses a user-typed numeric amount. Spaces and non-breaking
// spaces are ignored. A comma acts as the decimal separator when no dot
// is present, otherwise it is treated as a grouping separator. The result
// must be strictly positive.
func Amount(text string) (float64, error) {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, ErrBadAmount
	}

	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
			if strings.Contains(s, ",") {
				return 0, ErrBadAmount
			}
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, ErrBadAmount
	}
	return v, nil
}
