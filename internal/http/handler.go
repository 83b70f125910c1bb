package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grubdash-service/internal/logger"
	"github.com/grubdash-service/internal/service"
	"go.uber.org/zap"
)

const msgInternal = "Something went wrong!"

type dishRequest struct {
	Data service.DishInput `json:"data"`
}

type orderRequest struct {
	Data service.OrderInput `json:"data"`
}

type Handler struct {
	dishService  *service.DishService
	orderService *service.OrderService
}

func NewHandler(dishService *service.DishService, orderService *service.OrderService) *Handler {
	return &Handler{dishService: dishService, orderService: orderService}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.HandleMethodNotAllowed = true
	r.NoRoute(h.NotFound)
	r.NoMethod(h.MethodNotAllowed)

	r.GET("/health", h.Health)

	dishes := r.Group("/dishes")
	dishes.GET("", h.ListDishes)
	dishes.POST("", h.CreateDish)
	dishes.GET("/:dishId", h.GetDish)
	dishes.PUT("/:dishId", h.UpdateDish)

	orders := r.Group("/orders")
	orders.GET("", h.ListOrders)
	orders.POST("", h.CreateOrder)
	orders.GET("/:orderId", h.GetOrder)
	orders.PUT("/:orderId", h.UpdateOrder)
	orders.DELETE("/:orderId", h.DeleteOrder)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) NotFound(c *gin.Context) {
	respondError(c, service.NewUnhandledRouteError(c.Request.URL.Path))
}

func (h *Handler) MethodNotAllowed(c *gin.Context) {
	respondError(c, service.NewMethodNotAllowedError(c.Request.Method, c.Request.URL.Path))
}

func (h *Handler) ListDishes(c *gin.Context) {
	dishes, err := h.dishService.ListDishes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dishes})
}

func (h *Handler) CreateDish(c *gin.Context) {
	var req dishRequest
	if err := bindData(c, &req); err != nil {
		respondError(c, err)
		return
	}

	dish, err := h.dishService.CreateDish(c.Request.Context(), req.Data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": dish})
}

func (h *Handler) GetDish(c *gin.Context) {
	dish, err := h.dishService.GetDish(c.Request.Context(), c.Param("dishId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dish})
}

func (h *Handler) UpdateDish(c *gin.Context) {
	var req dishRequest
	if err := bindData(c, &req); err != nil {
		respondError(c, err)
		return
	}

	dish, err := h.dishService.UpdateDish(c.Request.Context(), c.Param("dishId"), req.Data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dish})
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req orderRequest
	if err := bindData(c, &req); err != nil {
		respondError(c, err)
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req.Data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": order})
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	var req orderRequest
	if err := bindData(c, &req); err != nil {
		respondError(c, err)
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), c.Param("orderId"), req.Data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	if err := h.orderService.DeleteOrder(c.Request.Context(), c.Param("orderId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindData decodes the request envelope. An empty body, or valid JSON whose
// data is not an object, decodes as {} so the validation chain reports the
// first missing field.
func bindData[T any](c *gin.Context, req *T) error {
	err := c.ShouldBindJSON(req)
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	case errors.As(err, &typeErr):
		var zero T
		*req = zero
		return nil
	}
	return service.NewValidationError("Request body must be valid JSON")
}

// respondError is the single place failures become responses. Only
// service errors reach the client verbatim.
func respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		c.AbortWithStatusJSON(svcErr.Status, gin.H{"error": svcErr.Message})
		return
	}

	logger.FromContext(c.Request.Context()).Error("request failed", zap.Error(err))
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
}
