package client

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/foodger/foodger-backend/pkg/enums"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
	"github.com/foodger/foodger-backend/pkg/types"
)

// CheckoutInput is what the user confirms on the checkout screen.
type CheckoutInput struct {
	MealType       enums.MealType
	Date           string
	Time           string
	DiscountAmount int
}

type checkoutPayload struct {
	MealType       string `json:"mealType"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	DiscountAmount int    `json:"discountAmount"`
}

// CheckoutCoordinator submits the cart as an expenditure. It validates
// locally before touching the network, sends exactly one request per attempt
// under a fresh Idempotency-Key, and never auto-retries a write: a failed
// submit leaves the cart mirror untouched so the user can retry explicitly.
type CheckoutCoordinator struct {
	api  *Client
	cart *CartManager
	now  func() time.Time
}

func NewCheckoutCoordinator(api *Client, cart *CartManager) (*CheckoutCoordinator, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "api client required")
	}
	if cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart manager required")
	}
	return &CheckoutCoordinator{api: api, cart: cart, now: time.Now}, nil
}

// Submit runs the local validations, then posts the checkout once.
func (c *CheckoutCoordinator) Submit(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if err := c.validate(input); err != nil {
		return nil, err
	}
	if err := c.cart.beginCheckout(); err != nil {
		return nil, err
	}

	var result CheckoutResult
	err := c.api.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/v1/checkout",
		body: checkoutPayload{
			MealType:       string(input.MealType),
			Date:           input.Date,
			Time:           input.Time,
			DiscountAmount: input.DiscountAmount,
		},
		headers: map[string]string{"Idempotency-Key": uuid.NewString()},
	}, &result)
	c.cart.completeCheckout(err == nil)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *CheckoutCoordinator) validate(input CheckoutInput) error {
	if !input.MealType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "mealType must be one of BREAKFAST, LUNCH, DINNER, OTHER")
	}
	if input.Date == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	date, err := types.ParseDate(input.Date)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "date must use YYYY-MM-DD")
	}
	if date.After(types.TruncateToDate(c.now())) {
		return pkgerrors.New(pkgerrors.CodeValidation, "date cannot be in the future")
	}
	if input.Time == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "time is required")
	}
	if _, err := time.Parse(types.TimeLayout, input.Time); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "time must use HH:MM")
	}
	if input.DiscountAmount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "discountAmount cannot be negative")
	}
	return nil
}
