package types

import "github.com/foodger/foodger-backend/pkg/enums"

// MealBudget is one allocation-and-consumption bucket inside a daily snapshot.
type MealBudget struct {
	Budget int `json:"budget"`
	Spent  int `json:"spent"`
}

// Remaining is the bucket allowance left (may go negative once overspent).
func (m MealBudget) Remaining() int {
	return m.Budget - m.Spent
}

// MealBudgets maps every meal type to its bucket. Persisted as jsonb.
type MealBudgets map[enums.MealType]MealBudget

// Normalized returns a copy that carries an entry for every meal type so
// consumers never index a missing bucket.
func (b MealBudgets) Normalized() MealBudgets {
	out := make(MealBudgets, len(AllMealBuckets))
	for _, meal := range AllMealBuckets {
		out[meal] = b[meal]
	}
	return out
}

// AllMealBuckets mirrors enums.AllMealTypes for range use in this package.
var AllMealBuckets = enums.AllMealTypes()
