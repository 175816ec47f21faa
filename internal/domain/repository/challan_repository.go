package repository

import (
	"context"
	"time"

	"github.com/darbarboots/billing-api/internal/domain/entity"
)

// ChallanRepository define el puerto de persistencia para guías de entrega.
type ChallanRepository interface {
	Create(ctx context.Context, ch *entity.Challan) error
	CreateItem(ctx context.Context, item *entity.ChallanItem) error
	GetByID(ctx context.Context, id string) (*entity.Challan, error)
	ListItems(ctx context.Context, challanID string) ([]*entity.ChallanItem, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Challan, error)
	SoftDelete(ctx context.Context, id string, when time.Time) error

	MaxSequence(ctx context.Context, seriesPrefix string) (int64, error)
}
