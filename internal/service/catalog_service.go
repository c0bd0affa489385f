package service

import (
	"context"
	"errors"

	"craftmarket/internal/domain"
	"craftmarket/internal/repository"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrArtisanNotApproved = errors.New("artisan profile is not approved yet")
)

// CatalogService товары: создание через шлюз одобрения, выборки, модерация.
// Проверка владения при Update здесь сознательно отсутствует — граница
// маршрутов её тоже не делает (см. DESIGN.md).
type CatalogService struct {
	products repository.ProductRepository
	accounts repository.AccountRepository
	tx       repository.TxManager
}

func NewCatalogService(products repository.ProductRepository, accounts repository.AccountRepository, tx repository.TxManager) *CatalogService {
	return &CatalogService{products: products, accounts: accounts, tx: tx}
}

// Create пропускает заявку через шлюз одобрения и сохраняет товар.
// Флаг одобрения принудительно сбрасывается независимо от входа.
func (s *CatalogService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.Title == "" || p.Image == "" || p.ArtisanID == "" || p.Price < 0 {
		return nil, ErrInvalidInput
	}

	artisan, err := s.accounts.GetByID(ctx, p.ArtisanID)
	if err != nil {
		return nil, err
	}
	if artisan.Role == domain.RoleArtisan && !artisan.IsApproved {
		return nil, ErrArtisanNotApproved
	}

	cp := p
	cp.IsApproved = false
	cp.NumReviews = 0
	cp.Rating = 0
	cp.Reviews = nil
	if err := s.products.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *CatalogService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.products.GetByID(ctx, id)
}

// ApprovedFilter параметры витрины одобренных товаров
type ApprovedFilter struct {
	TitleSubstring string
	MinPrice       *float64
	MaxPrice       *float64
}

// ListApproved витрина для покупателей
func (s *CatalogService) ListApproved(ctx context.Context, f ApprovedFilter) ([]domain.Product, error) {
	return s.products.List(ctx, repository.ProductFilter{
		ApprovedOnly:   true,
		TitleSubstring: f.TitleSubstring,
		MinPrice:       f.MinPrice,
		MaxPrice:       f.MaxPrice,
	})
}

// ListByArtisan все товары продавца независимо от одобрения
func (s *CatalogService) ListByArtisan(ctx context.Context, artisanID string) ([]domain.Product, error) {
	if artisanID == "" {
		return nil, ErrInvalidInput
	}
	return s.products.List(ctx, repository.ProductFilter{ArtisanID: artisanID})
}

// ListUnapproved товары на модерации с именем и почтой владельца для админки.
// Если аккаунт владельца не находится, аннотация остаётся пустой.
func (s *CatalogService) ListUnapproved(ctx context.Context) ([]domain.UnapprovedProduct, error) {
	products, err := s.products.List(ctx, repository.ProductFilter{UnapprovedOnly: true})
	if err != nil {
		return nil, err
	}
	out := make([]domain.UnapprovedProduct, 0, len(products))
	for _, p := range products {
		up := domain.UnapprovedProduct{Product: p}
		if acc, err := s.accounts.GetByID(ctx, p.ArtisanID); err == nil {
			up.ArtisanName = acc.Name
			up.ArtisanEmail = acc.Email
		}
		out = append(out, up)
	}
	return out, nil
}

// SetApproval выставляет флаг одобрения (действие администратора)
func (s *CatalogService) SetApproval(ctx context.Context, id string, approved bool) (*domain.Product, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	var updated *domain.Product
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		p.IsApproved = approved
		if err := s.products.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ProductPatch частичное обновление: nil-поля не трогаются
type ProductPatch struct {
	Title       *string
	Description *string
	Price       *float64
	Image       *string
	Category    *string
}

// Update сливает присланные поля в документ товара
func (s *CatalogService) Update(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, ErrInvalidInput
	}
	if patch.Title != nil && *patch.Title == "" {
		return nil, ErrInvalidInput
	}
	var updated *domain.Product
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.Image != nil {
			p.Image = *patch.Image
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		if err := s.products.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	return s.products.Delete(ctx, id)
}
