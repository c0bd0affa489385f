package service

import (
	"context"

	"craftmarket/internal/domain"
	"craftmarket/internal/repository"
)

// AccountService заглушка внешнего сервиса аккаунтов: ровно то, что нужно
// шлюзу одобрения, авторству отзывов и админке
type AccountService struct {
	accounts repository.AccountRepository
}

func NewAccountService(accounts repository.AccountRepository) *AccountService {
	return &AccountService{accounts: accounts}
}

func (s *AccountService) Create(ctx context.Context, a domain.Account) (*domain.Account, error) {
	if a.Name == "" || a.Email == "" {
		return nil, ErrInvalidInput
	}
	switch a.Role {
	case domain.RoleCustomer, domain.RoleArtisan, domain.RoleAdmin:
	default:
		return nil, ErrInvalidInput
	}
	// артизан всегда стартует неодобренным
	if a.Role == domain.RoleArtisan {
		a.IsApproved = false
	}
	cp := a
	if err := s.accounts.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *AccountService) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.accounts.GetByID(ctx, id)
}

// SetApproval одобрение профиля ремесленника (действие администратора)
func (s *AccountService) SetApproval(ctx context.Context, id string, approved bool) (*domain.Account, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.accounts.SetApproval(ctx, id, approved)
}
