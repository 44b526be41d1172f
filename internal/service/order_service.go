package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/egannguyen/go-food-delivery/internal/entity"
	"github.com/egannguyen/go-food-delivery/internal/messaging"
	"github.com/egannguyen/go-food-delivery/internal/metrics"
	"github.com/egannguyen/go-food-delivery/internal/repository"
)

// OrderService orchestrates the order lifecycle.
type OrderService struct {
	orders    repository.OrderRepository
	users     repository.UserRepository
	stores    repository.StoreRepository
	publisher messaging.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	users repository.UserRepository,
	stores repository.StoreRepository,
	publisher messaging.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *OrderService {
	if publisher == nil {
		publisher = messaging.NopPublisher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:    orders,
		users:     users,
		stores:    stores,
		publisher: publisher,
		metrics:   m,
		logger:    logger.Named("orders"),
		now:       time.Now,
	}
}

// Create validates cmd and stores a new order in status pending.
func (s *OrderService) Create(ctx context.Context, cmd entity.CreateOrder) (entity.Order, error) {
	if err := s.validateCreate(ctx, cmd); err != nil {
		return entity.Order{}, err
	}

	order, err := s.orders.Create(ctx, entity.Order{
		UserID:        cmd.UserID,
		StoreID:       cmd.StoreID,
		Products:      cmd.Products,
		Total:         cmd.Total,
		Address:       strings.TrimSpace(cmd.Address),
		PaymentMethod: strings.TrimSpace(cmd.PaymentMethod),
		Status:        entity.StatusPending,
		CreatedAt:     s.now().UTC().Truncate(time.Microsecond),
	})
	if err != nil {
		return entity.Order{}, err
	}

	s.metrics.OrderCreated()
	s.logger.Info("order placed",
		zap.Int("order_id", order.ID),
		zap.Int("user_id", order.UserID),
		zap.Int("store_id", order.StoreID),
		zap.Int("items", len(order.Products)),
		zap.Float64("total", order.Total),
	)

	s.publish(ctx, messaging.TopicOrderPlaced, order.ID, entity.OrderPlaced{
		OrderID:  order.ID,
		UserID:   order.UserID,
		StoreID:  order.StoreID,
		Items:    order.Products,
		Total:    order.Total,
		PlacedAt: order.CreatedAt,
	})
	return order, nil
}

func (s *OrderService) validateCreate(ctx context.Context, cmd entity.CreateOrder) error {
	if _, err := s.users.FindByID(ctx, cmd.UserID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return entity.NewValidationError("userId", "unknown user %d", cmd.UserID)
		}
		return err
	}

	store, err := s.stores.FindByID(ctx, cmd.StoreID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return entity.NewValidationError("storeId", "unknown store %d", cmd.StoreID)
		}
		return err
	}
	if !store.IsOpen {
		return entity.NewValidationError("storeId", "store %d is closed", cmd.StoreID)
	}

	if len(cmd.Products) == 0 {
		return entity.NewValidationError("products", "order must have at least one item")
	}

	sum := decimal.Zero
	for i, item := range cmd.Products {
		if item.Quantity < 1 {
			return entity.NewValidationError("products["+strconv.Itoa(i)+"].quantity", "must be at least 1")
		}
		if item.Price < 0 {
			return entity.NewValidationError("products["+strconv.Itoa(i)+"].price", "must not be negative")
		}
		sum = sum.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	want := sum.Round(2)
	got := decimal.NewFromFloat(cmd.Total).Round(2)
	if !got.Equal(want) {
		return entity.NewValidationError("total", "%s does not match the sum of items %s", got.StringFixed(2), want.StringFixed(2))
	}

	if strings.TrimSpace(cmd.Address) == "" {
		return entity.NewValidationError("address", "is required")
	}
	if strings.TrimSpace(cmd.PaymentMethod) == "" {
		return entity.NewValidationError("paymentMethod", "is required")
	}
	return nil
}

func (s *OrderService) Get(ctx context.Context, id int) (entity.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// ListByUser returns the orders placed by userID, oldest first.
func (s *OrderService) ListByUser(ctx context.Context, userID int) ([]entity.Order, error) {
	return s.orders.Find(ctx, func(o entity.Order) bool { return o.UserID == userID })
}

// ListByStore returns every order placed against storeID, oldest first.
func (s *OrderService) ListByStore(ctx context.Context, storeID int) ([]entity.Order, error) {
	return s.orders.Find(ctx, func(o entity.Order) bool { return o.StoreID == storeID })
}

// ListAvailable returns orders that are pending or accepted.
func (s *OrderService) ListAvailable(ctx context.Context) ([]entity.Order, error) {
	return s.listByStatus(ctx, entity.StatusPending, entity.StatusAccepted)
}

// ListUnclaimed returns orders nobody has accepted yet.
func (s *OrderService) ListUnclaimed(ctx context.Context) ([]entity.Order, error) {
	return s.listByStatus(ctx, entity.StatusPending)
}

// ListActive returns orders that were accepted and are not delivered yet.
func (s *OrderService) ListActive(ctx context.Context) ([]entity.Order, error) {
	return s.listByStatus(ctx, entity.StatusAccepted, entity.StatusInProgress)
}

func (s *OrderService) listByStatus(ctx context.Context, statuses ...entity.OrderStatus) ([]entity.Order, error) {
	return s.orders.Find(ctx, func(o entity.Order) bool {
		for _, st := range statuses {
			if o.Status == st {
				return true
			}
		}
		return false
	})
}

// UpdateStatus moves order id to status to. The move must be exactly one step
// forward. When expected is not empty the order must currently be in expected.
// The check and the write happen atomically.
func (s *OrderService) UpdateStatus(ctx context.Context, id int, to, expected entity.OrderStatus) (entity.Order, error) {
	var from entity.OrderStatus
	order, err := s.orders.Update(ctx, id, func(o *entity.Order) error {
		from = o.Status
		if !to.Valid() {
			return entity.NewValidationError("status", "unknown status %q", to)
		}
		if expected != "" {
			if !expected.Valid() {
				return entity.NewValidationError("expectedStatus", "unknown status %q", expected)
			}
			if o.Status != expected {
				return &entity.InvalidTransitionError{OrderID: id, From: o.Status, To: to, Expected: expected}
			}
		}
		if !entity.CanTransition(o.Status, to) {
			return &entity.InvalidTransitionError{OrderID: id, From: o.Status, To: to}
		}
		o.Status = to
		return nil
	})
	if err != nil {
		return entity.Order{}, err
	}

	s.metrics.OrderTransition(from, to)
	s.logger.Info("order status changed",
		zap.Int("order_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	s.publish(ctx, messaging.TopicOrderStatusChanged, id, entity.OrderStatusChanged{
		OrderID:   id,
		StoreID:   order.StoreID,
		From:      from,
		To:        to,
		ChangedAt: s.now().UTC(),
	})
	return order, nil
}

// publish sends event after the change it describes has been committed, so a
// broker failure is logged and never undoes the change.
func (s *OrderService) publish(ctx context.Context, topic string, id int, event entity.Event) {
	if err := s.publisher.PublishEvent(ctx, topic, strconv.Itoa(id), event); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", event.EventType()),
			zap.Int("id", id),
			zap.Error(err),
		)
	}
}
