package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/egannguyen/go-food-delivery/internal/entity"
	"github.com/egannguyen/go-food-delivery/internal/messaging"
	"github.com/egannguyen/go-food-delivery/internal/repository"
)

// CatalogService manages stores and their products.
type CatalogService struct {
	stores    repository.StoreRepository
	products  repository.ProductRepository
	publisher messaging.Publisher
	logger    *zap.Logger
}

func NewCatalogService(
	stores repository.StoreRepository,
	products repository.ProductRepository,
	publisher messaging.Publisher,
	logger *zap.Logger,
) *CatalogService {
	if publisher == nil {
		publisher = messaging.NopPublisher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		stores:    stores,
		products:  products,
		publisher: publisher,
		logger:    logger.Named("catalog"),
	}
}

func (s *CatalogService) ListStores(ctx context.Context) ([]entity.Store, error) {
	return s.stores.FindAll(ctx)
}

func (s *CatalogService) GetStore(ctx context.Context, id int) (entity.Store, error) {
	return s.stores.FindByID(ctx, id)
}

// StoreByOwner returns the store managed by the store-role user ownerID.
func (s *CatalogService) StoreByOwner(ctx context.Context, ownerID int) (entity.Store, error) {
	return s.stores.FindByOwner(ctx, ownerID)
}

// SetStoreOpen opens or closes store id. Repeating the same value is a no-op
// that still returns the store.
func (s *CatalogService) SetStoreOpen(ctx context.Context, id int, isOpen bool) (entity.Store, error) {
	store, changed, err := s.stores.SetOpen(ctx, id, isOpen)
	if err != nil {
		return entity.Store{}, err
	}

	if changed {
		s.logger.Info("store status changed", zap.Int("store_id", id), zap.Bool("is_open", store.IsOpen))
		event := entity.StoreStatusChanged{StoreID: id, IsOpen: store.IsOpen, ChangedAt: time.Now().UTC()}
		if err := s.publisher.PublishEvent(ctx, messaging.TopicStoreStatusChanged, strconv.Itoa(id), event); err != nil {
			s.logger.Error("failed to publish event",
				zap.String("topic", messaging.TopicStoreStatusChanged),
				zap.Int("store_id", id),
				zap.Error(err),
			)
		}
	}
	return store, nil
}

// ListProducts returns the products of storeID in creation order.
func (s *CatalogService) ListProducts(ctx context.Context, storeID int) ([]entity.Product, error) {
	return s.products.FindByStore(ctx, storeID)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in entity.ProductInput) (entity.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validateProduct(ctx, in); err != nil {
		return entity.Product{}, err
	}

	p, err := s.products.Create(ctx, in)
	if err != nil {
		return entity.Product{}, err
	}
	s.logger.Info("product created", zap.Int("product_id", p.ID), zap.Int("store_id", p.StoreID))
	return p, nil
}

// UpdateProduct replaces every field of product id with in.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int, in entity.ProductInput) (entity.Product, error) {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return entity.Product{}, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if err := s.validateProduct(ctx, in); err != nil {
		return entity.Product{}, err
	}

	p, err := s.products.Update(ctx, id, in)
	if err != nil {
		return entity.Product{}, err
	}
	s.logger.Info("product updated", zap.Int("product_id", p.ID))
	return p, nil
}

// DeleteProduct removes product id. Orders keep their own copy of the product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.Int("product_id", id))
	return nil
}

func (s *CatalogService) validateProduct(ctx context.Context, in entity.ProductInput) error {
	if in.Name == "" {
		return entity.NewValidationError("name", "is required")
	}
	if in.Price < 0 {
		return entity.NewValidationError("price", "must not be negative")
	}
	if _, err := s.stores.FindByID(ctx, in.StoreID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return entity.NewValidationError("storeId", "unknown store %d", in.StoreID)
		}
		return err
	}
	return nil
}
