package alerts

import (
	"testing"

	"github.com/m3rciful/kursbot/internal/domain"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name    string
		cond    domain.Condition
		current float64
		target  float64
		want    bool
	}{
		{"above over", domain.ConditionAbove, 13001, 13000, true},
		{"above exact", domain.ConditionAbove, 13000, 13000, true},
		{"above under", domain.ConditionAbove, 12999.99, 13000, false},
		{"below under", domain.ConditionBelow, 12499, 12500, true},
		{"below exact", domain.ConditionBelow, 12500, 12500, true},
		{"below over", domain.ConditionBelow, 12500.01, 12500, false},
		{"unknown condition", domain.Condition("between"), 1, 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.cond, tc.current, tc.target); got != tc.want {
				t.Errorf("Evaluate(%s, %v, %v) = %v, want %v",
					tc.cond, tc.current, tc.target, got, tc.want)
			}
		})
	}
}
