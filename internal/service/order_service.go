package service

import (
	"context"
	"errors"

	"craftmarket/internal/domain"
	"craftmarket/internal/repository"
)

// ErrIllegalTransition запрошенный статус не является допустимым следующим шагом
var ErrIllegalTransition = errors.New("illegal status transition")

// OrderService оформление заказов и машина статусов исполнения.
// Последовательность строго линейная: Placed → Processing → Shipped →
// Out for Delivery → Delivered; Cancelled достижим только из Placed.
type OrderService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	tx       repository.TxManager
}

func NewOrderService(products repository.ProductRepository, orders repository.OrderRepository, tx repository.TxManager) *OrderService {
	return &OrderService{products: products, orders: orders, tx: tx}
}

// Create оформляет заказ в начальном статусе Placed. Сумма доверяется
// вызывающему и против каталога не сверяется; остатки не списываются —
// учёт склада в системе отсутствует. Владелец каждой позиции снимается
// с товара на момент оформления.
func (s *OrderService) Create(ctx context.Context, userID string, items []domain.OrderItem, total float64, address string, payment domain.PaymentStatus) (*domain.Order, error) {
	if userID == "" || len(items) == 0 || total < 0 {
		return nil, ErrInvalidInput
	}
	for _, it := range items {
		if it.ProductID == "" || it.Quantity < 1 {
			return nil, ErrInvalidInput
		}
	}
	switch payment {
	case "":
		payment = domain.PaymentStatusPending
	case domain.PaymentStatusPending, domain.PaymentStatusPaid:
	default:
		return nil, ErrInvalidInput
	}

	var created *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		resolved := make([]domain.OrderItem, 0, len(items))
		for _, it := range items {
			p, err := s.products.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			it.ArtisanID = p.ArtisanID
			resolved = append(resolved, it)
		}

		o := domain.Order{
			UserID:        userID,
			Items:         resolved,
			Total:         total,
			Address:       address,
			Status:        domain.OrderStatusPlaced,
			PaymentStatus: payment,
		}
		if err := s.orders.Create(ctx, &o); err != nil {
			return err
		}
		created = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *OrderService) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.orders.GetByID(ctx, id)
}

// AdvanceStatus переводит заказ на следующий шаг исполнения. Проверка идёт
// против текущего сохранённого статуса внутри транзакции, чтобы два
// одновременных перевода не перескочили состояние.
func (s *OrderService) AdvanceStatus(ctx context.Context, id string, requested domain.OrderStatus) (*domain.Order, error) {
	if id == "" || !requested.Known() {
		return nil, ErrInvalidInput
	}
	var updated *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next, ok := o.Status.Next()
		if !ok || requested != next {
			return ErrIllegalTransition
		}
		o.Status = requested
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel отменяет заказ. Разрешено только из начального статуса Placed.
func (s *OrderService) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	var updated *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if o.Status != domain.OrderStatusPlaced {
			return ErrIllegalTransition
		}
		o.Status = domain.OrderStatusCancelled
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListByBuyer заказы покупателя
func (s *OrderService) ListByBuyer(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.orders.ListByUser(ctx, userID)
}

// ListByArtisan заказы, в которых есть товары продавца; чужие позиции
// из каждого заказа отфильтровываются
func (s *OrderService) ListByArtisan(ctx context.Context, artisanID string) ([]domain.Order, error) {
	if artisanID == "" {
		return nil, ErrInvalidInput
	}
	orders, err := s.orders.ListByArtisan(ctx, artisanID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		items := make([]domain.OrderItem, 0, len(o.Items))
		for _, it := range o.Items {
			if it.ArtisanID == artisanID {
				items = append(items, it)
			}
		}
		if len(items) == 0 {
			continue
		}
		o.Items = items
		out = append(out, o)
	}
	return out, nil
}
