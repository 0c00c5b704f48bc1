package funding

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
	"github.com/upliftbridge/upliftbridge-backend/pkg/enums"
	"github.com/upliftbridge/upliftbridge-backend/pkg/pagination"
)

// SessionIDConstraint names the unique index guarding one order per checkout
// session. The reconciler matches constraint violations against it.
const SessionIDConstraint = "ux_gift_orders_stripe_session_id"

// Repository exposes persistence helpers for the funding flow.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindNeedByID(ctx context.Context, id int64) (*models.Need, error)
	FindOrderBySessionID(ctx context.Context, sessionID string) (*models.GiftOrder, error)
	FindOrderByID(ctx context.Context, id int64) (*models.GiftOrder, error)
	CreateOrder(ctx context.Context, order *models.GiftOrder) error
	IncrementAmountRaised(ctx context.Context, needID int64, amount decimal.Decimal) error
	ListOrders(ctx context.Context, params listOrdersParams) ([]models.GiftOrder, *pagination.Cursor, error)
	UpdateOrderOffsiteStatus(ctx context.Context, orderID int64, status enums.OffsiteGiftStatus, reviewer string, now time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a funding repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listOrdersParams struct {
	NeedID        int64
	OffsiteStatus enums.OffsiteGiftStatus
	Limit         int
	Cursor        *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindNeedByID(ctx context.Context, id int64) (*models.Need, error) {
	var need models.Need
	if err := r.db.WithContext(ctx).First(&need, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &need, nil
}

func (r *repositoryImpl) FindOrderBySessionID(ctx context.Context, sessionID string) (*models.GiftOrder, error) {
	var order models.GiftOrder
	if err := r.db.WithContext(ctx).First(&order, "stripe_session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) FindOrderByID(ctx context.Context, id int64) (*models.GiftOrder, error) {
	var order models.GiftOrder
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) CreateOrder(ctx context.Context, order *models.GiftOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repositoryImpl) IncrementAmountRaised(ctx context.Context, needID int64, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Need{}).
		Where("id = ?", needID).
		UpdateColumn("amount_raised", gorm.Expr("amount_raised + ?", amount)).Error
}

func (r *repositoryImpl) ListOrders(ctx context.Context, params listOrdersParams) ([]models.GiftOrder, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.GiftOrder{})
	if params.NeedID != 0 {
		query = query.Where("need_id = ?", params.NeedID)
	}
	if params.OffsiteStatus != "" {
		query = query.Where("offsite_status = ?", params.OffsiteStatus)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var orders []models.GiftOrder
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, nil, err
	}

	if len(orders) > normalized {
		next := orders[normalized]
		orders = orders[:normalized]
		return orders, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return orders, nil, nil
}

func (r *repositoryImpl) UpdateOrderOffsiteStatus(ctx context.Context, orderID int64, status enums.OffsiteGiftStatus, reviewer string, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.GiftOrder{}).
		Where("id = ? AND offsite_status = ?", orderID, enums.OffsiteGiftStatusUnconfirmed).
		Updates(map[string]any{
			"offsite_status": status,
			"reviewed_by":    reviewer,
			"reviewed_at":    now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
