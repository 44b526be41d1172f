package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/egannguyen/go-food-delivery/internal/entity"
	"github.com/egannguyen/go-food-delivery/internal/service"
)

// Handler handles the JSON API used by the consumer, store and courier apps.
type Handler struct {
	orders  *service.OrderService
	catalog *service.CatalogService
	auth    *service.AuthService
	logger  *zap.Logger
}

func NewHandler(orders *service.OrderService, catalog *service.CatalogService, auth *service.AuthService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		orders:  orders,
		catalog: catalog,
		auth:    auth,
		logger:  logger,
	}
}

// RegisterRoutes mounts the API on e. loginLimiter guards POST /auth/login and may be nil.
func (h *Handler) RegisterRoutes(e *echo.Echo, loginLimiter echo.MiddlewareFunc) {
	login := []echo.MiddlewareFunc{}
	if loginLimiter != nil {
		login = append(login, loginLimiter)
	}
	e.POST("/auth/login", h.handleLogin, login...)

	e.GET("/stores", h.handleListStores)
	e.GET("/stores/:id", h.handleGetStore)
	e.GET("/stores/owner/:ownerId", h.handleStoreByOwner)
	e.POST("/stores/:id/status", h.handleSetStoreStatus)

	e.GET("/products/:storeId", h.handleListProducts)
	e.POST("/products", h.handleCreateProduct)
	e.PUT("/products/:id", h.handleUpdateProduct)
	e.DELETE("/products/:id", h.handleDeleteProduct)

	e.POST("/orders", h.handleCreateOrder)
	e.GET("/orders/user/:userId", h.handleOrdersByUser)
	e.GET("/orders/available", h.handleAvailableOrders)
	e.GET("/orders/unclaimed", h.handleUnclaimedOrders)
	e.GET("/orders/active", h.handleActiveOrders)
	e.GET("/orders/store/:storeId", h.handleOrdersByStore)
	e.GET("/orders/:id", h.handleGetOrder)
	e.PATCH("/orders/:id/status", h.handleUpdateOrderStatus)

	e.GET("/order-statuses", h.handleOrderStatuses)
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     entity.Role `json:"role"`
}

// UserResponse is the public view of a user. It never carries the password hash.
type UserResponse struct {
	ID    int         `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  entity.Role `json:"role"`
}

type LoginResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

func (h *Handler) handleLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return entity.NewValidationError("", "invalid request body")
	}

	user, err := h.auth.Authenticate(c.Request().Context(), req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Success: true,
		User: UserResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}

type StoreResponse struct {
	Success bool         `json:"success"`
	Store   entity.Store `json:"store"`
}

type SetStoreStatusRequest struct {
	IsOpen *bool `json:"isOpen"`
}

func (h *Handler) handleListStores(c echo.Context) error {
	stores, err := h.catalog.ListStores(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stores)
}

func (h *Handler) handleGetStore(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	store, err := h.catalog.GetStore(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, store)
}

func (h *Handler) handleStoreByOwner(c echo.Context) error {
	ownerID, err := pathID(c, "ownerId")
	if err != nil {
		return err
	}
	store, err := h.catalog.StoreByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, store)
}

func (h *Handler) handleSetStoreStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req SetStoreStatusRequest
	if err := c.Bind(&req); err != nil {
		return entity.NewValidationError("", "invalid request body")
	}
	if req.IsOpen == nil {
		return entity.NewValidationError("isOpen", "is required")
	}

	store, err := h.catalog.SetStoreOpen(c.Request().Context(), id, *req.IsOpen)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, StoreResponse{Success: true, Store: store})
}

// ProductRequest is the body of POST /products and PUT /products/:id.
type ProductRequest struct {
	Name    string   `json:"name"`
	Price   *float64 `json:"price"`
	Image   string   `json:"image"`
	StoreID int      `json:"storeId"`
}

func (r ProductRequest) input() (entity.ProductInput, error) {
	if r.Price == nil {
		return entity.ProductInput{}, entity.NewValidationError("price", "is required")
	}
	return entity.ProductInput{Name: r.Name, Price: *r.Price, Image: r.Image, StoreID: r.StoreID}, nil
}

type ProductResponse struct {
	Success bool           `json:"success"`
	Product entity.Product `json:"product"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) handleListProducts(c echo.Context) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return err
	}
	products, err := h.catalog.ListProducts(c.Request().Context(), storeID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

func (h *Handler) handleCreateProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return entity.NewValidationError("", "invalid request body")
	}
	in, err := req.input()
	if err != nil {
		return err
	}

	product, err := h.catalog.CreateProduct(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ProductResponse{Success: true, Product: product})
}

func (h *Handler) handleUpdateProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return entity.NewValidationError("", "invalid request body")
	}
	in, err := req.input()
	if err != nil {
		return err
	}

	product, err := h.catalog.UpdateProduct(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ProductResponse{Success: true, Product: product})
}

func (h *Handler) handleDeleteProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteProduct(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Producto eliminado"})
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	UserID        int                `json:"userId"`
	StoreID       int                `json:"storeId"`
	Products      []entity.OrderItem `json:"products"`
	Total         float64            `json:"total"`
	Address       string             `json:"address"`
	PaymentMethod string             `json:"paymentMethod"`
}

type OrderResponse struct {
	Success bool         `json:"success"`
	Order   entity.Order `json:"order"`
}

// UpdateOrderStatusRequest is the body of PATCH /orders/:id/status. When
// ExpectedStatus is set the change only applies if the order is still in it.
type UpdateOrderStatusRequest struct {
	Status         entity.OrderStatus `json:"status"`
	ExpectedStatus entity.OrderStatus `json:"expectedStatus,omitempty"`
}

func (h *Handler) handleCreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return entity.NewValidationError("", "invalid request body")
	}

	order, err := h.orders.Create(c.Request().Context(), entity.CreateOrder{
		UserID:        req.UserID,
		StoreID:       req.StoreID,
		Products:      req.Products,
		Total:         req.Total,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, OrderResponse{Success: true, Order: order})
}

func (h *Handler) handleGetOrder(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.orders.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) handleOrdersByUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	return h.orderList(c, func() ([]entity.Order, error) {
		return h.orders.ListByUser(c.Request().Context(), userID)
	})
}

func (h *Handler) handleOrdersByStore(c echo.Context) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return err
	}
	return h.orderList(c, func() ([]entity.Order, error) {
		return h.orders.ListByStore(c.Request().Context(), storeID)
	})
}

func (h *Handler) handleAvailableOrders(c echo.Context) error {
	return h.orderList(c, func() ([]entity.Order, error) {
		return h.orders.ListAvailable(c.Request().Context())
	})
}

func (h *Handler) handleUnclaimedOrders(c echo.Context) error {
	return h.orderList(c, func() ([]entity.Order, error) {
		return h.orders.ListUnclaimed(c.Request().Context())
	})
}

func (h *Handler) handleActiveOrders(c echo.Context) error {
	return h.orderList(c, func() ([]entity.Order, error) {
		return h.orders.ListActive(c.Request().Context())
	})
}

func (h *Handler) orderList(c echo.Context, list func() ([]entity.Order, error)) error {
	orders, err := list()
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *Handler) handleUpdateOrderStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return entity.NewValidationError("", "invalid request body")
	}

	order, err := h.orders.UpdateStatus(c.Request().Context(), id, req.Status, req.ExpectedStatus)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, OrderResponse{Success: true, Order: order})
}

// StatusLabel pairs a status with the text the apps display for it.
type StatusLabel struct {
	Status entity.OrderStatus `json:"status"`
	Label  string             `json:"label"`
}

func (h *Handler) handleOrderStatuses(c echo.Context) error {
	lifecycle := entity.Lifecycle()
	out := make([]StatusLabel, 0, len(lifecycle))
	for _, st := range lifecycle {
		out = append(out, StatusLabel{Status: st, Label: st.Label()})
	}
	return c.JSON(http.StatusOK, out)
}

func pathID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, entity.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}
