package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/luxe-storefront/internal/core/domain"
	"github.com/niksmo/luxe-storefront/internal/core/port"
)

// GET v1/favorites (200 OK)
// PUT v1/favorites/{name} (200 OK, 404 Not found)
// DELETE v1/favorites/{name} (200 OK)
// POST v1/favorites/{name}/toggle (200 OK, 404 Not found)

type FavoritesHandler struct {
	favorites port.FavoritesDispatcher
	catalog   port.ProductsLister
}

func RegisterFavorites(
	mux *http.ServeMux,
	favorites port.FavoritesDispatcher,
	catalog port.ProductsLister,
) {
	if favorites == nil || catalog == nil {
		panic("RegisterFavorites: nil dependency") // develop mistake
	}
	h := FavoritesHandler{favorites, catalog}
	mux.HandleFunc("GET /v1/favorites", h.GetFavorites)
	mux.HandleFunc("PUT /v1/favorites/{name}", h.AddFavorite)
	mux.HandleFunc("DELETE /v1/favorites/{name}", h.RemoveFavorite)
	mux.HandleFunc("POST /v1/favorites/{name}/toggle", h.ToggleFavorite)
}

func (h FavoritesHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	const op = "FavoritesHandler.GetFavorites"
	log := slog.With("op", op)
	writeJSON(w, log, http.StatusOK, fromDomainFavorites(h.favorites.State()))
}

func (h FavoritesHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	const op = "FavoritesHandler.AddFavorite"
	log := slog.With("op", op)

	p, err := h.catalog.GetProduct(r.Context(), r.PathValue("name"))
	if err != nil {
		writeLookupError(w, log, err)
		return
	}
	h.dispatch(w, r, log, domain.AddFavorite{Product: p.Product})
}

func (h FavoritesHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	const op = "FavoritesHandler.RemoveFavorite"
	log := slog.With("op", op)

	p := domain.Product{Name: r.PathValue("name")}
	h.dispatch(w, r, log, domain.RemoveFavorite{Product: p})
}

func (h FavoritesHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	const op = "FavoritesHandler.ToggleFavorite"
	log := slog.With("op", op)

	p, err := h.catalog.GetProduct(r.Context(), r.PathValue("name"))
	if err != nil {
		writeLookupError(w, log, err)
		return
	}

	favorite, err := h.favorites.Toggle(r.Context(), p.Product)
	if err != nil {
		http.Error(w, "failed to update favorites", http.StatusInternalServerError)
		log.Error("failed to toggle", "err", err)
		return
	}
	writeJSON(w, log, http.StatusOK, FavoriteToggle{Name: p.Name, Favorite: favorite})
}

func (h FavoritesHandler) dispatch(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
	a domain.FavoritesAction,
) {
	s, err := h.favorites.Dispatch(r.Context(), a)
	if err != nil {
		http.Error(w, "failed to update favorites", http.StatusInternalServerError)
		log.Error("failed to dispatch", "kind", a.Kind(), "err", err)
		return
	}
	writeJSON(w, log, http.StatusOK, fromDomainFavorites(s))
}
