package enums

// MealType is the budget bucket an expenditure is attributed to.
type MealType string

const (
	MealTypeBreakfast MealType = "BREAKFAST"
	MealTypeLunch     MealType = "LUNCH"
	MealTypeDinner    MealType = "DINNER"
	MealTypeOther     MealType = "OTHER"
)

// AllMealTypes lists every bucket in presentation order.
func AllMealTypes() []MealType {
	return []MealType{MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeOther}
}

func (m MealType) IsValid() bool {
	switch m {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeOther:
		return true
	}
	return false
}
