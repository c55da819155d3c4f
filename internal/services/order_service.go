package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agrilink-core/internal/domain"
	"agrilink-core/internal/infra"
	rabbit "agrilink-core/internal/infra/rabbitmq"
	"agrilink-core/internal/pagination"
	"agrilink-core/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// statusUpdateRetries bounds the compare-and-swap loop; contention past
// this surfaces as domain.ErrConflict.
const statusUpdateRetries = 2

type OrderService struct {
	repo          repository.OrderRepository
	listingClient infra.ListingClientInterface
	publisher     rabbit.PublisherInterface
	redisClient   *redis.Client
	logger        *zap.Logger
}

func NewOrderService(r repository.OrderRepository, lc infra.ListingClientInterface, pub rabbit.PublisherInterface, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		repo:          r,
		listingClient: lc,
		publisher:     pub,
		logger:        logger,
	}
}

func (s *OrderService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

// CreateOrder prices the order from the listing catalog and opens it in
// PENDING. No state is written until every validation has passed.
func (s *OrderService) CreateOrder(ctx context.Context, buyerID, listingID uuid.UUID, quantity int64, shippingAddress string) (*domain.Order, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	listing, err := s.getListingWithCache(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil || !listing.Available(quantity) {
		return nil, domain.ErrListingUnavailable
	}

	now := time.Now()
	order := &domain.Order{
		ID:              uuid.New(),
		OrderNumber:     domain.NewOrderNumber(now),
		BuyerID:         buyerID,
		SellerID:        listing.SellerID,
		ListingID:       listingID,
		Quantity:        quantity,
		Unit:            listing.Unit,
		TotalAmount:     listing.UnitPrice.Mul(decimal.NewFromInt(quantity)).Round(2),
		Status:          domain.StatusPending,
		ShippingAddress: shippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Save(ctx, order); err != nil {
		return nil, err
	}

	go s.publishEvent(context.Background(), "order.created", domain.OrderCreatedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		BuyerID:     order.BuyerID,
		SellerID:    order.SellerID,
		ListingID:   order.ListingID,
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
	})

	return order, nil
}

// UpdateStatus drives the state machine. The write is a compare-and-swap
// on the order version; on contention the state is re-read and the
// transition re-validated, so a racing caller either applies to the new
// state or fails with an illegal transition.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, actorID uuid.UUID, target domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidOrderStatus(target) || target == domain.StatusPending {
		return nil, domain.ErrIllegalTransition
	}

	for attempt := 0; attempt < statusUpdateRetries; attempt++ {
		order, err := s.repo.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, domain.ErrNotFound
		}
		if !order.ActorMayDrive(actorID, target) {
			return nil, domain.ErrForbidden
		}
		if !order.CanTransition(target) {
			return nil, domain.ErrIllegalTransition
		}

		now := time.Now()
		err = s.repo.UpdateStatus(ctx, order.ID, order.Version, target, now)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		from := order.Status
		order.Status = target
		order.Version++
		order.UpdatedAt = now

		go s.publishEvent(context.Background(), "order.status_changed", domain.OrderStatusChangedEvent{
			OrderID:   order.ID,
			From:      from,
			To:        target,
			ActorID:   actorID,
			ChangedAt: now,
		})
		return order, nil
	}
	return nil, domain.ErrConflict
}

// CancelOrder is the buyer-facing cancellation path: buyer only, and only
// while the order is still PENDING.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, actorID uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if actorID != order.BuyerID {
		return nil, domain.ErrForbidden
	}
	if order.Status != domain.StatusPending {
		return nil, domain.ErrIllegalTransition
	}
	return s.UpdateStatus(ctx, orderID, actorID, domain.StatusCancelled)
}

func (s *OrderService) GetOrder(ctx context.Context, orderID, callerID uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if callerID != order.BuyerID && callerID != order.SellerID {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

func (s *OrderService) ListOrdersForBuyer(ctx context.Context, buyerID uuid.UUID, page, size int) (pagination.Page[domain.Order], error) {
	page, size = pagination.Clamp(page, size)
	orders, total, err := s.repo.FindByBuyer(ctx, buyerID, page, size)
	if err != nil {
		return pagination.Page[domain.Order]{}, err
	}
	return pagination.New(orders, page, size, total), nil
}

func (s *OrderService) ListOrdersForSeller(ctx context.Context, sellerID uuid.UUID, page, size int) (pagination.Page[domain.Order], error) {
	page, size = pagination.Clamp(page, size)
	orders, total, err := s.repo.FindBySeller(ctx, sellerID, page, size)
	if err != nil {
		return pagination.Page[domain.Order]{}, err
	}
	return pagination.New(orders, page, size, total), nil
}

func (s *OrderService) getListingWithCache(ctx context.Context, listingID uuid.UUID) (*infra.ListingInfo, error) {
	cacheKey := fmt.Sprintf("listing:%s", listingID)

	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var l infra.ListingInfo
			if err := json.Unmarshal([]byte(cached), &l); err == nil {
				return &l, nil
			}
		}
	}

	listing, err := s.listingClient.GetListingById(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil && listing != nil {
		if data, err := json.Marshal(listing); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, time.Minute)
		}
	}

	return listing, nil
}

func (s *OrderService) publishEvent(ctx context.Context, routingKey string, data any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, data); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("routingKey", routingKey),
			zap.Error(err))
	}
}
