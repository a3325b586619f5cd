package client

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodger/foodger-backend/pkg/enums"
)

// Cart is the client-side view of the server cart. The server response is
// always authoritative; the manager never edits one locally.
type Cart struct {
	ID          uuid.UUID  `json:"id"`
	MerchantID  *uuid.UUID `json:"merchantId,omitempty"`
	Items       []CartItem `json:"items"`
	TotalAmount int        `json:"totalAmount"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

type CartItem struct {
	ID        uuid.UUID `json:"id"`
	FoodID    uuid.UUID `json:"foodId"`
	FoodName  string    `json:"foodName"`
	UnitPrice int       `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
	LineTotal int       `json:"lineTotal"`
}

// Projection mirrors the server's budget preview.
type Projection struct {
	CartTotal           int  `json:"cartTotal"`
	RemainingDailyAfter int  `json:"remainingDailyAfter"`
	RemainingMealAfter  int  `json:"remainingMealAfter"`
	OverBudget          bool `json:"isOverBudget"`
	HasDailyBudget      bool `json:"hasDailyBudget"`
}

// DailyBudget is the client-side snapshot view.
type DailyBudget struct {
	Date        string                              `json:"date"`
	DailyTotal  int                                 `json:"dailyTotal"`
	TotalSpent  int                                 `json:"totalSpent"`
	Remaining   int                                 `json:"remaining"`
	MealBudgets map[enums.MealType]MealBudgetBucket `json:"mealBudgets"`
}

type MealBudgetBucket struct {
	Budget int `json:"budget"`
	Spent  int `json:"spent"`
}

// Expenditure is the client-side record returned by checkout and history.
type Expenditure struct {
	ID             uuid.UUID         `json:"id"`
	MerchantID     uuid.UUID         `json:"merchantId"`
	MerchantName   string            `json:"merchantName"`
	MealType       string            `json:"mealType"`
	Date           string            `json:"date"`
	Time           string            `json:"time"`
	TotalAmount    int               `json:"totalAmount"`
	DiscountAmount int               `json:"discountAmount"`
	FinalAmount    int               `json:"finalAmount"`
	Items          []ExpenditureItem `json:"items"`
}

type ExpenditureItem struct {
	FoodID    uuid.UUID `json:"foodId"`
	FoodName  string    `json:"foodName"`
	UnitPrice int       `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
	LineTotal int       `json:"lineTotal"`
}

// BudgetAfter mirrors the ledger position returned by checkout.
type BudgetAfter struct {
	DailyTotal     int `json:"dailyTotal"`
	DailySpent     int `json:"dailySpent"`
	DailyRemaining int `json:"dailyRemaining"`
	MealBudget     int `json:"mealBudget"`
	MealSpent      int `json:"mealSpent"`
	MealRemaining  int `json:"mealRemaining"`
}

// CheckoutResult is the committed expenditure plus its ledger effect.
type CheckoutResult struct {
	Expenditure Expenditure `json:"expenditure"`
	Budget      BudgetAfter `json:"budget"`
}
