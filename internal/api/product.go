package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/localbasket/storefront/internal/domain/product"
)

// productJSON is the catalog wire shape. Price is a plain JSON number for
// the storefront client.
type productJSON struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Image       string  `json:"image"`
}

// handleListProducts returns the catalog, served from the snapshot cache
// when fresh.
func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, cached, err := h.catalog.List(r.Context())
	if err != nil {
		logFrom(r).Error("list products", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Failed to load products",
		})
		return
	}

	out := make([]productJSON, len(products))
	for i, p := range products {
		out[i] = toProductJSON(p)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"products": out,
		"cached":   cached,
	})
}

func toProductJSON(p product.Product) productJSON {
	return productJSON{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Quantity:    p.Quantity,
		Image:       p.Image,
	}
}
