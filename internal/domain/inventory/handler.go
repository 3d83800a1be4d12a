package inventory

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hearcare/hearcare/internal/platform/auth"
	"github.com/hearcare/hearcare/pkg/pagination"
	"github.com/hearcare/hearcare/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("/supplies", auth.RequireRole(auth.RoleCountryCoordinator, auth.RoleCityCoordinator, auth.RoleClinician))
	read.GET("", h.ListSupplies)
	read.GET("/low-stock", h.ListLowStock)
	read.GET("/:id", h.GetSupply)
	read.GET("/:id/transactions", h.ListTransactions)

	write := api.Group("/supplies", auth.RequireRole(auth.RoleCountryCoordinator, auth.RoleCityCoordinator))
	write.POST("", h.CreateSupply)
	write.PUT("/:id", h.UpdateSupply)
	write.DELETE("/:id", h.DeleteSupply)
	write.POST("/adjust", h.AdjustStock)
}

func (h *Handler) CreateSupply(c echo.Context) error {
	var supply Supply
	if err := c.Bind(&supply); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.CreateSupply(c.Request().Context(), &supply, actor); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	return respond.Created(c, "supply created", supply)
}

func (h *Handler) GetSupply(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	supply, err := h.svc.GetSupply(c.Request().Context(), id)
	if err != nil {
		return respond.NotFound(c, "supply not found")
	}
	return respond.OK(c, "", supply)
}

func (h *Handler) ListSupplies(c echo.Context) error {
	pg := pagination.FromContext(c)
	supplies, total, err := h.svc.ListSupplies(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return respond.Internal(c, "failed to list supplies")
	}
	return respond.OK(c, "", pagination.NewResponse(supplies, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListLowStock(c echo.Context) error {
	supplies, err := h.svc.ListLowStock(c.Request().Context())
	if err != nil {
		return respond.Internal(c, "failed to list low-stock supplies")
	}
	return respond.OK(c, "", supplies)
}

func (h *Handler) UpdateSupply(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	var supply Supply
	if err := c.Bind(&supply); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	supply.ID = id
	actor := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.UpdateSupply(c.Request().Context(), &supply, actor); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return respond.NotFound(c, "supply not found")
		}
		return respond.BadRequest(c, err.Error())
	}
	return respond.OK(c, "supply updated", supply)
}

func (h *Handler) DeleteSupply(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.DeleteSupply(c.Request().Context(), id, actor); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return respond.NotFound(c, "supply not found")
		}
		return respond.Internal(c, "failed to delete supply")
	}
	return respond.OK(c, "supply deleted", nil)
}

type adjustRequest struct {
	ItemCode string `json:"item_code"`
	Delta    int    `json:"delta"`
	Type     string `json:"transaction_type"`
	Notes    string `json:"notes"`
}

func (h *Handler) AdjustStock(c echo.Context) error {
	var req adjustRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	newLevel, err := h.svc.AdjustStock(c.Request().Context(), req.ItemCode, req.Delta, req.Type, actor, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, ErrItemNotFound):
			return respond.NotFound(c, "supply not found")
		case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrInvalidTransactionType):
			return respond.BadRequest(c, err.Error())
		default:
			return respond.Error(c, http.StatusInternalServerError, "failed to adjust stock")
		}
	}
	return respond.OK(c, "stock adjusted", map[string]interface{}{"new_stock_level": newLevel})
}

func (h *Handler) ListTransactions(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid id")
	}
	pg := pagination.FromContext(c)
	txs, total, err := h.svc.ListTransactions(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return respond.Internal(c, "failed to list transactions")
	}
	return respond.OK(c, "", pagination.NewResponse(txs, total, pg.Limit, pg.Offset))
}
