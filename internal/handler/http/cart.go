package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/storefront-go/storefront/internal/cart"
	"github.com/storefront-go/storefront/internal/domain"
	apperrors "github.com/storefront-go/storefront/pkg/errors"
	"github.com/storefront-go/storefront/pkg/httputil"
	"github.com/storefront-go/storefront/pkg/validator"
)

// EmptyCartMessage is the display string returned alongside an empty cart.
const EmptyCartMessage = "Your cart is empty"

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	cart   *cart.Aggregator
	logger *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(agg *cart.Aggregator, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		cart:   agg,
		logger: logger,
	}
}

// --- Request/response DTOs ---

// AddItemRequest is the JSON request body for adding a product to the cart.
// The body is a product record as returned by the products endpoint.
type AddItemRequest struct {
	ID          int64   `json:"id" validate:"required"`
	Title       string  `json:"title" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

// UpdateQuantityRequest is the JSON request body for updating an item's
// quantity. Quantities below 1 remove the item.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse is the cart view returned by every cart endpoint.
type CartResponse struct {
	Items        []domain.CartEntry `json:"items"`
	ItemCount    int                `json:"item_count"`
	Total        float64            `json:"total"`
	DisplayTotal string             `json:"display_total"`
	Message      string             `json:"message,omitempty"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.cartResponse()})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	h.cart.Add(domain.Product{
		ID:          req.ID,
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Category,
	})

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.cartResponse()})
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productID}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	h.cart.UpdateQuantity(id, req.Quantity)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.cartResponse()})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	h.cart.Remove(id)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.cartResponse()})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.cartResponse()})
}

// --- Helpers ---

func (h *CartHandler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("productID must be an integer"), h.logger)
		return 0, false
	}
	return id, true
}

func (h *CartHandler) cartResponse() CartResponse {
	items := h.cart.Items()
	total := h.cart.Total()

	resp := CartResponse{
		Items:        items,
		ItemCount:    h.cart.ItemCount(),
		Total:        total,
		DisplayTotal: fmt.Sprintf("$%.2f", total),
	}
	if len(items) == 0 {
		resp.Message = EmptyCartMessage
	}
	return resp
}
