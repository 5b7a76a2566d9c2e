package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByTransaction(ctx context.Context, db *gorm.DB, transactionID string) (*Payment, error)
}
