package httphandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/niksmo/luxe-storefront/internal/core/domain"
	"github.com/niksmo/luxe-storefront/internal/core/port"
)

// GET v1/cart (200 OK)
// DELETE v1/cart (200 OK)
// POST v1/cart/items JSON {"name": string, "color": string, "quantity": int} (200 OK, 400 Bad request, 404 Not found)
// PATCH v1/cart/items/{name}/{color} JSON {"quantity": int} (200 OK, 400 Bad request, 404 Not found)
// DELETE v1/cart/items/{name}/{color} (200 OK, 400 Bad request)

type CartHandler struct {
	cart    port.CartDispatcher
	catalog port.ProductsLister
}

func RegisterCart(
	mux *http.ServeMux,
	cart port.CartDispatcher,
	catalog port.ProductsLister,
) {
	if cart == nil || catalog == nil {
		panic("RegisterCart: nil dependency") // develop mistake
	}
	h := CartHandler{cart, catalog}
	mux.HandleFunc("GET /v1/cart", h.GetCart)
	mux.HandleFunc("DELETE /v1/cart", h.ClearCart)
	mux.HandleFunc("POST /v1/cart/items", h.AddItem)
	mux.HandleFunc("PATCH /v1/cart/items/{name}/{color}", h.UpdateQuantity)
	mux.HandleFunc("DELETE /v1/cart/items/{name}/{color}", h.RemoveItem)
}

func (h CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.GetCart"
	log := slog.With("op", op)
	writeJSON(w, log, http.StatusOK, fromDomainCart(h.cart.State()))
}

func (h CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.ClearCart"
	log := slog.With("op", op)
	h.dispatch(w, r, log, domain.ClearCart{})
}

// AddItem puts the product into the cart priced with the current gold rate.
//
// Quantity defaults to 1.
func (h CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.AddItem"
	log := slog.With("op", op)

	var req AddCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	color, err := domain.ParseGoldColor(req.Color)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	p, err := h.catalog.GetProduct(r.Context(), req.Name)
	if err != nil {
		writeLookupError(w, log, err)
		return
	}

	h.dispatch(w, r, log, domain.AddItem{
		Product:  p.Product,
		Color:    color,
		Quantity: quantity,
		Price:    p.Price,
	})
}

func (h CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.UpdateQuantity"
	log := slog.With("op", op)

	name, color, ok := cartItemKey(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	item, found := h.cart.State().Item(name, color)
	if !found {
		http.Error(w, "cart item not found", http.StatusNotFound)
		return
	}

	h.dispatch(w, r, log, domain.UpdateQuantity{
		Product:  item.Product,
		Color:    color,
		Quantity: req.Quantity,
	})
}

// RemoveItem is idempotent: removing an absent item returns the cart as is.
func (h CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.RemoveItem"
	log := slog.With("op", op)

	name, color, ok := cartItemKey(w, r)
	if !ok {
		return
	}

	p := domain.Product{Name: name}
	if item, found := h.cart.State().Item(name, color); found {
		p = item.Product
	}
	h.dispatch(w, r, log, domain.RemoveItem{Product: p, Color: color})
}

func (h CartHandler) dispatch(
	w http.ResponseWriter, r *http.Request, log *slog.Logger, a domain.CartAction,
) {
	s, err := h.cart.Dispatch(r.Context(), a)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuantity) ||
			errors.Is(err, domain.ErrInvalidColor) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to update cart", http.StatusInternalServerError)
		log.Error("failed to dispatch", "kind", a.Kind(), "err", err)
		return
	}

	log.Debug("cart updated", "kind", a.Kind(), "total", s.Total)
	writeJSON(w, log, http.StatusOK, fromDomainCart(s))
}

func cartItemKey(
	w http.ResponseWriter, r *http.Request,
) (string, domain.GoldColor, bool) {
	color, err := domain.ParseGoldColor(r.PathValue("color"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	return r.PathValue("name"), color, true
}
