package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidPrice    = errors.New("price must not be negative")
)

type (
	CartItem struct {
		Product  Product
		Color    GoldColor
		Quantity int
		Price    int64 // unit price frozen when the item was added
	}

	// CartState keeps Total equal to the sum of Price*Quantity over Items.
	// Every transition updates both together.
	CartState struct {
		Items []CartItem
		Total int64
	}
)

func (i CartItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

func (i CartItem) matches(name string, c GoldColor) bool {
	return i.Product.Name == name && i.Color == c
}

func (s CartState) index(name string, c GoldColor) int {
	return slices.IndexFunc(s.Items, func(i CartItem) bool {
		return i.matches(name, c)
	})
}

// Item returns the entry keyed by product name and color.
func (s CartState) Item(name string, c GoldColor) (CartItem, bool) {
	idx := s.index(name, c)
	if idx == -1 {
		return CartItem{}, false
	}
	return s.Items[idx], true
}

// ItemCount is the number of pieces in the cart.
func (s CartState) ItemCount() int {
	var n int
	for _, i := range s.Items {
		n += i.Quantity
	}
	return n
}

// Equal reports whether s and o hold the same items in the same order.
func (s CartState) Equal(o CartState) bool {
	return s.Total == o.Total && slices.Equal(s.Items, o.Items)
}

func (s CartState) Clone() CartState {
	return CartState{Items: slices.Clone(s.Items), Total: s.Total}
}

// CartAction is one of AddItem, RemoveItem, UpdateQuantity or ClearCart.
type CartAction interface {
	cartAction()
	Kind() ActivityKind
}

type (
	AddItem struct {
		Product  Product
		Color    GoldColor
		Quantity int
		Price    int64
	}

	RemoveItem struct {
		Product Product
		Color   GoldColor
	}

	UpdateQuantity struct {
		Product  Product
		Color    GoldColor
		Quantity int
	}

	ClearCart struct{}
)

func (AddItem) cartAction()        {}
func (RemoveItem) cartAction()     {}
func (UpdateQuantity) cartAction() {}
func (ClearCart) cartAction()      {}

func (AddItem) Kind() ActivityKind        { return ActivityItemAdded }
func (RemoveItem) Kind() ActivityKind     { return ActivityItemRemoved }
func (UpdateQuantity) Kind() ActivityKind { return ActivityQuantityUpdated }
func (ClearCart) Kind() ActivityKind      { return ActivityCartCleared }

// ValidateCartAction rejects actions carrying a quantity below 1.
func ValidateCartAction(a CartAction) error {
	switch a := a.(type) {
	case nil:
		return ErrInvalidAction
	case AddItem:
		if a.Quantity < 1 {
			return fmt.Errorf("%w: got %d", ErrInvalidQuantity, a.Quantity)
		}
		if a.Price < 0 {
			return fmt.Errorf("%w: got %d", ErrInvalidPrice, a.Price)
		}
		if _, err := ParseGoldColor(string(a.Color)); err != nil {
			return err
		}
	case UpdateQuantity:
		if a.Quantity < 1 {
			return fmt.Errorf("%w: got %d", ErrInvalidQuantity, a.Quantity)
		}
	}
	return nil
}

// CheckCartAction validates a against s. Besides [ValidateCartAction] it
// rejects quantities, item counts and totals that do not fit their types.
func CheckCartAction(s CartState, a CartAction) error {
	if err := ValidateCartAction(a); err != nil {
		return err
	}

	switch a := a.(type) {
	case AddItem:
		return checkAddItem(s, a)
	case UpdateQuantity:
		return checkUpdateQuantity(s, a)
	}
	return nil
}

func checkAddItem(s CartState, a AddItem) error {
	quantity := a.Quantity
	if idx := s.index(a.Product.Name, a.Color); idx != -1 {
		q, ok := addInt(s.Items[idx].Quantity, a.Quantity)
		if !ok {
			return errOverflow("quantity")
		}
		quantity = q
	}
	added, ok := mulPrice(a.Price, a.Quantity)
	if !ok {
		return errOverflow("subtotal")
	}
	if _, ok := mulPrice(a.Price, quantity); !ok {
		return errOverflow("subtotal")
	}
	if _, ok := addInt(s.ItemCount(), a.Quantity); !ok {
		return errOverflow("item count")
	}
	if _, ok := addInt64(s.Total, added); !ok {
		return errOverflow("total")
	}
	return nil
}

func checkUpdateQuantity(s CartState, a UpdateQuantity) error {
	item, ok := s.Item(a.Product.Name, a.Color)
	if !ok {
		return nil
	}
	subtotal, ok := mulPrice(item.Price, a.Quantity)
	if !ok {
		return errOverflow("subtotal")
	}
	if _, ok := addInt(s.ItemCount()-item.Quantity, a.Quantity); !ok {
		return errOverflow("item count")
	}
	if _, ok := addInt64(s.Total-item.Subtotal(), subtotal); !ok {
		return errOverflow("total")
	}
	return nil
}

func errOverflow(what string) error {
	return fmt.Errorf("%w: cart %s overflows", ErrInvalidQuantity, what)
}

// addInt and addInt64 expect non-negative operands.
func addInt(a, b int) (int, bool) {
	if b > math.MaxInt-a {
		return 0, false
	}
	return a + b, true
}

func addInt64(a, b int64) (int64, bool) {
	if b > math.MaxInt64-a {
		return 0, false
	}
	return a + b, true
}

func mulPrice(price int64, quantity int) (int64, bool) {
	if price != 0 && int64(quantity) > math.MaxInt64/price {
		return 0, false
	}
	return price * int64(quantity), true
}

// ReduceCart returns the state that follows s after a.
//
// s is never modified. Actions rejected by [CheckCartAction] leave the
// state unchanged.
func ReduceCart(s CartState, a CartAction) CartState {
	if CheckCartAction(s, a) != nil {
		return s
	}

	switch a := a.(type) {
	case AddItem:
		return addItem(s, a)
	case RemoveItem:
		return removeItem(s, a)
	case UpdateQuantity:
		return updateQuantity(s, a)
	case ClearCart:
		return CartState{}
	default:
		return s
	}
}

func addItem(s CartState, a AddItem) CartState {
	added := a.Price * int64(a.Quantity)
	next := s.Clone()

	if idx := s.index(a.Product.Name, a.Color); idx != -1 {
		next.Items[idx].Quantity += a.Quantity
		next.Total += added
		return next
	}

	next.Items = append(next.Items, CartItem{
		Product:  a.Product,
		Color:    a.Color,
		Quantity: a.Quantity,
		Price:    a.Price,
	})
	next.Total += added
	return next
}

func removeItem(s CartState, a RemoveItem) CartState {
	idx := s.index(a.Product.Name, a.Color)
	if idx == -1 {
		return s
	}

	removed := s.Items[idx].Subtotal()
	return CartState{
		Items: slices.Delete(slices.Clone(s.Items), idx, idx+1),
		Total: s.Total - removed,
	}
}

func updateQuantity(s CartState, a UpdateQuantity) CartState {
	idx := s.index(a.Product.Name, a.Color)
	if idx == -1 {
		return s
	}

	next := s.Clone()
	item := &next.Items[idx]
	next.Total = s.Total - item.Subtotal() + item.Price*int64(a.Quantity)
	item.Quantity = a.Quantity
	return next
}
