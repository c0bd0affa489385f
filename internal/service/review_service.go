package service

import (
	"context"
	"errors"
	"time"

	"craftmarket/internal/domain"
	"craftmarket/internal/repository"
)

var (
	ErrDuplicateReview = errors.New("product already reviewed")
	ErrOwnProduct      = errors.New("cannot review own product")
)

// ReviewService добавляет отзывы и пересчитывает агрегаты товара.
// Добавление и пересчёт выполняются в одной критической секции и
// фиксируются одной записью документа: либо оба, либо ни одного.
type ReviewService struct {
	products repository.ProductRepository
	tx       repository.TxManager
}

func NewReviewService(products repository.ProductRepository, tx repository.TxManager) *ReviewService {
	return &ReviewService{products: products, tx: tx}
}

// AddReview добавляет отзыв от имени userID и возвращает товар с новыми
// агрегатами. Конкурентные вызовы по одному товару сериализуются
// менеджером транзакций, иначе read-modify-write теряет отзывы.
func (s *ReviewService) AddReview(ctx context.Context, productID, userID, displayName string, rating int, comment string) (*domain.Product, error) {
	if productID == "" || userID == "" {
		return nil, ErrInvalidInput
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidInput
	}

	var updated *domain.Product
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p.ArtisanID == userID {
			return ErrOwnProduct
		}
		for _, rev := range p.Reviews {
			if rev.UserID == userID {
				return ErrDuplicateReview
			}
		}

		p.Reviews = append(p.Reviews, domain.Review{
			Name:      displayName,
			Rating:    rating,
			Comment:   comment,
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		})
		p.NumReviews = len(p.Reviews)
		sum := 0
		for _, rev := range p.Reviews {
			sum += rev.Rating
		}
		p.Rating = float64(sum) / float64(len(p.Reviews))

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
