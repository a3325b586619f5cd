package client

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/foodger/foodger-backend/pkg/enums"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
)

// CartState tracks where the mirror sits in the mutation lifecycle.
type CartState string

const (
	StateEmpty           CartState = "EMPTY"
	StatePopulated       CartState = "POPULATED"
	StateConflictPending CartState = "CONFLICT_PENDING"
	StateCheckingOut     CartState = "CHECKING_OUT"
)

// Conflict is the typed cross-merchant decision handed to the caller. The
// user either cancels (no call is made) or replaces the cart.
type Conflict struct {
	CurrentMerchantName   string
	RequestedMerchantName string
	Message               string
}

type addItemPayload struct {
	MerchantID  uuid.UUID `json:"merchantId"`
	FoodID      uuid.UUID `json:"foodId"`
	Quantity    int       `json:"quantity"`
	ReplaceCart bool      `json:"replaceCart,omitempty"`
}

type updateItemPayload struct {
	Quantity int `json:"quantity"`
}

// CartManager keeps a local mirror of the server cart. Every mutation sends
// the request, then replaces the whole mirror with the response; mutations
// on the same cart item are serialized while distinct items may proceed
// concurrently.
type CartManager struct {
	api *Client

	mu         sync.Mutex
	mirror     *Cart
	state      CartState
	pendingAdd *addItemPayload

	itemLocksMu sync.Mutex
	itemLocks   map[uuid.UUID]*sync.Mutex
}

func NewCartManager(api *Client) (*CartManager, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "api client required")
	}
	return &CartManager{
		api:       api,
		state:     StateEmpty,
		itemLocks: map[uuid.UUID]*sync.Mutex{},
	}, nil
}

// Snapshot returns the current mirror and state.
func (m *CartManager) Snapshot() (*Cart, CartState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mirror, m.state
}

// Refresh refetches the cart and replaces the mirror.
func (m *CartManager) Refresh(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := m.api.get(ctx, "/api/v1/cart", nil, &cart); err != nil {
		return nil, err
	}
	m.replaceMirror(&cart)
	return &cart, nil
}

// ensureMutable rejects mutations while a conflict decision or a checkout
// is outstanding; those must settle before the cart changes again.
func (m *CartManager) ensureMutable() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateConflictPending:
		return pkgerrors.New(pkgerrors.CodeValidation, "merchant conflict must be resolved before other cart changes")
	case StateCheckingOut:
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout in flight")
	}
	return nil
}

// AddItem adds one food line. A cross-merchant CONFLICT does not mutate the
// mirror; the typed decision is returned instead and the manager waits in
// ConflictPending for Resolve.
func (m *CartManager) AddItem(ctx context.Context, merchantID, foodID uuid.UUID, quantity int) (*Cart, *Conflict, error) {
	if err := m.ensureMutable(); err != nil {
		return nil, nil, err
	}

	payload := addItemPayload{MerchantID: merchantID, FoodID: foodID, Quantity: quantity}

	cart, err := m.postCartMutation(ctx, payload)
	if err == nil {
		return cart, nil, nil
	}

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		return nil, nil, err
	}

	conflict := conflictFromDetails(typed)
	m.mu.Lock()
	m.pendingAdd = &payload
	m.state = StateConflictPending
	m.mu.Unlock()
	return nil, conflict, nil
}

// Resolve settles a pending cross-merchant conflict. Cancel makes no call;
// Replace retries the held add with replaceCart set. A CONFLICT answer to
// the replace is terminal.
func (m *CartManager) Resolve(ctx context.Context, replace bool) (*Cart, error) {
	m.mu.Lock()
	pending := m.pendingAdd
	if pending == nil {
		m.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no conflict pending")
	}
	m.pendingAdd = nil
	if !replace {
		m.state = stateFor(m.mirror)
		cart := m.mirror
		m.mu.Unlock()
		return cart, nil
	}
	m.mu.Unlock()

	// The manager stays in ConflictPending while the replace is in flight so
	// no other mutation can interleave; settle() assigns the terminal state.
	pending.ReplaceCart = true
	cart, err := m.postCartMutation(ctx, *pending)
	m.settle()
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "conflict persisted after replace")
		}
		return nil, err
	}
	return cart, nil
}

// settle recomputes the state from the mirror once a pending conflict has
// been decided.
func (m *CartManager) settle() {
	m.mu.Lock()
	if m.state == StateConflictPending {
		m.state = stateFor(m.mirror)
	}
	m.mu.Unlock()
}

// SetQuantity updates one line; zero removes it. A NOT_FOUND answer means
// the mirror was stale, so the manager refetches before returning the error.
func (m *CartManager) SetQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*Cart, error) {
	if err := m.ensureMutable(); err != nil {
		return nil, err
	}

	unlock := m.lockItem(itemID)
	defer unlock()

	if quantity <= 0 {
		return m.removeLocked(ctx, itemID)
	}

	var cart Cart
	err := m.api.do(ctx, request{
		method: http.MethodPatch,
		path:   "/api/v1/cart/items/" + itemID.String(),
		body:   updateItemPayload{Quantity: quantity},
	}, &cart)
	if err != nil {
		return m.reconcileNotFound(ctx, err)
	}
	m.replaceMirror(&cart)
	return &cart, nil
}

// RemoveItem deletes one line.
func (m *CartManager) RemoveItem(ctx context.Context, itemID uuid.UUID) (*Cart, error) {
	if err := m.ensureMutable(); err != nil {
		return nil, err
	}

	unlock := m.lockItem(itemID)
	defer unlock()
	return m.removeLocked(ctx, itemID)
}

// Clear empties the cart; clearing an already-empty cart succeeds.
func (m *CartManager) Clear(ctx context.Context) (*Cart, error) {
	if err := m.ensureMutable(); err != nil {
		return nil, err
	}

	var cart Cart
	err := m.api.do(ctx, request{
		method: http.MethodDelete,
		path:   "/api/v1/cart",
	}, &cart)
	if err != nil {
		return nil, err
	}
	m.replaceMirror(&cart)
	return &cart, nil
}

// Projection fetches the advisory "remaining after purchase" preview for the
// current cart.
func (m *CartManager) Projection(ctx context.Context, date string, meal enums.MealType) (*Projection, error) {
	query := url.Values{}
	query.Set("date", date)
	query.Set("mealType", string(meal))

	var projection Projection
	if err := m.api.get(ctx, "/api/v1/cart/projection", query, &projection); err != nil {
		return nil, err
	}
	return &projection, nil
}

func (m *CartManager) removeLocked(ctx context.Context, itemID uuid.UUID) (*Cart, error) {
	var cart Cart
	err := m.api.do(ctx, request{
		method: http.MethodDelete,
		path:   "/api/v1/cart/items/" + itemID.String(),
	}, &cart)
	if err != nil {
		return m.reconcileNotFound(ctx, err)
	}
	m.replaceMirror(&cart)
	return &cart, nil
}

func (m *CartManager) postCartMutation(ctx context.Context, payload addItemPayload) (*Cart, error) {
	var cart Cart
	err := m.api.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/v1/cart/items",
		body:   payload,
	}, &cart)
	if err != nil {
		return nil, err
	}
	m.replaceMirror(&cart)
	return &cart, nil
}

// reconcileNotFound refetches after a stale-item answer so the caller sees
// the server's real state alongside the error.
func (m *CartManager) reconcileNotFound(ctx context.Context, err error) (*Cart, error) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		return nil, err
	}
	if cart, refreshErr := m.Refresh(ctx); refreshErr == nil {
		return cart, err
	}
	return nil, err
}

func (m *CartManager) replaceMirror(cart *Cart) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mirror = cart
	if m.state != StateCheckingOut && m.state != StateConflictPending {
		m.state = stateFor(cart)
	}
}

func (m *CartManager) lockItem(itemID uuid.UUID) func() {
	m.itemLocksMu.Lock()
	lock, ok := m.itemLocks[itemID]
	if !ok {
		lock = &sync.Mutex{}
		m.itemLocks[itemID] = lock
	}
	m.itemLocksMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func stateFor(cart *Cart) CartState {
	if cart.IsEmpty() {
		return StateEmpty
	}
	return StatePopulated
}

func conflictFromDetails(err *pkgerrors.Error) *Conflict {
	conflict := &Conflict{Message: err.Message()}
	details, ok := err.Details().(map[string]any)
	if !ok {
		return conflict
	}
	if v, ok := details["currentMerchantName"].(string); ok {
		conflict.CurrentMerchantName = v
	}
	if v, ok := details["requestedMerchantName"].(string); ok {
		conflict.RequestedMerchantName = v
	}
	return conflict
}

// beginCheckout flips the state so concurrent mutations can see a checkout
// is in flight; completeCheckout settles it.
func (m *CartManager) beginCheckout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mirror.IsEmpty() {
		return pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot check out an empty cart")
	}
	if m.state == StateCheckingOut {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout already in flight")
	}
	if m.state == StateConflictPending {
		return pkgerrors.New(pkgerrors.CodeValidation, "merchant conflict must be resolved before checkout")
	}
	m.state = StateCheckingOut
	return nil
}

func (m *CartManager) completeCheckout(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.mirror = &Cart{Items: []CartItem{}}
	}
	m.state = stateFor(m.mirror)
}
