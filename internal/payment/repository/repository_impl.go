package repository

import (
	"context"

	"github.com/stayhive/stayhive/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) FindByTransaction(ctx context.Context, db *gorm.DB, transactionID string) (*domain.Payment, error) {
	var payment domain.Payment
	if err := db.WithContext(ctx).First(&payment, "transaction_id = ?", transactionID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}
