package budget

import (
	"github.com/foodger/foodger-backend/pkg/db/models"
	"github.com/foodger/foodger-backend/pkg/enums"
)

// Projection is the advisory "remaining after this cart" figure shown before
// checkout. It never blocks a purchase.
type Projection struct {
	CartTotal           int  `json:"cartTotal"`
	RemainingDailyAfter int  `json:"remainingDailyAfter"`
	RemainingMealAfter  int  `json:"remainingMealAfter"`
	OverBudget          bool `json:"isOverBudget"`
	HasDailyBudget      bool `json:"hasDailyBudget"`
}

// Project derives the projection from a snapshot and the current cart total.
// A nil snapshot means no budget is set for the date, which is a valid state:
// nothing to exceed, so the projection reports zero remaining and no overrun.
func Project(cartTotal int, snapshot *models.DailyBudget, mealType enums.MealType) Projection {
	if snapshot == nil {
		return Projection{CartTotal: cartTotal}
	}

	remainingDaily := snapshot.RemainingBudget() - cartTotal
	remainingMeal := snapshot.MealBudget(mealType).Remaining() - cartTotal

	return Projection{
		CartTotal:           cartTotal,
		RemainingDailyAfter: remainingDaily,
		RemainingMealAfter:  remainingMeal,
		OverBudget:          remainingDaily < 0 || remainingMeal < 0,
		HasDailyBudget:      true,
	}
}
