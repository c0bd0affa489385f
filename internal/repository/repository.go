package repository

import (
	"context"
	"errors"
	"strings"

	"craftmarket/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = errors.New("not found")

// ProductFilter параметры выборки товаров
type ProductFilter struct {
	ApprovedOnly   bool
	UnapprovedOnly bool
	ArtisanID      string
	TitleSubstring string
	MinPrice       *float64
	MaxPrice       *float64
}

// ProductRepository интерфейс репозитория товаров. Update перезаписывает
// документ целиком — отзыв и пересчитанные агрегаты попадают в хранилище
// одной записью.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
}

// OrderRepository интерфейс репозитория заказов. Удаления нет.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListByArtisan(ctx context.Context, artisanID string) ([]domain.Order, error)
}

// AccountRepository репозиторий учётных записей. В проде аккаунты живут во
// внешнем сервисе; здесь только то, что нужно шлюзу одобрения и админке.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	SetApproval(ctx context.Context, id string, approved bool) (*domain.Account, error)
}

// TxManager абстракция транзакции. Для in-memory — глобальная блокировка
// записи; для Mongo — сессия.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
