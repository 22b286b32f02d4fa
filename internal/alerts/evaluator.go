// Package alerts implements the price-alert subsystem: the pure condition
// evaluator, the user-facing alert service and the evaluation engine that
// turns threshold crossings into one-shot notifications.
package alerts

import "github.com/m3rciful/kursbot/internal/domain"

// Evaluate reports whether the observed rate satisfies the alert
// condition. Both directions are inclusive: an exact hit of the target
// fires.
func Evaluate(cond domain.Condition, current, target float64) bool {
	switch cond {
	case domain.ConditionAbove:
		return current >= target
	case domain.ConditionBelow:
		return current <= target
	}
	return false
}
