package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// StepRepository persists the append-only checkout step log.
type StepRepository interface {
	WithTx(tx *gorm.DB) StepRepository
	Create(ctx context.Context, step *models.CheckoutStep) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.CheckoutStep, error)
	Unresolved(ctx context.Context, steps []enums.CheckoutStep, since time.Time, maxAttempts, limit int) ([]models.CheckoutStep, error)
}

type stepRepository struct {
	db *gorm.DB
}

// NewStepRepository builds a step log repository bound to the provided DB.
func NewStepRepository(db *gorm.DB) StepRepository {
	return &stepRepository{db: db}
}

func (r *stepRepository) WithTx(tx *gorm.DB) StepRepository {
	if tx == nil {
		return r
	}
	return &stepRepository{db: tx}
}

func (r *stepRepository) Create(ctx context.Context, step *models.CheckoutStep) error {
	if step.Attempt < 1 {
		step.Attempt = 1
	}
	return r.db.WithContext(ctx).Create(step).Error
}

func (r *stepRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.CheckoutStep, error) {
	var rows []models.CheckoutStep
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Order("attempt ASC").
		Find(&rows).Error
	return rows, err
}

// Unresolved returns failed entries for the given steps whose latest attempt
// still failed, oldest first.
func (r *stepRepository) Unresolved(ctx context.Context, steps []enums.CheckoutStep, since time.Time, maxAttempts, limit int) ([]models.CheckoutStep, error) {
	if len(steps) == 0 {
		return nil, nil
	}
	names := make([]string, len(steps))
	for i, step := range steps {
		names[i] = step.String()
	}

	q := r.db.WithContext(ctx).
		Table("checkout_steps AS s").
		Select("s.*").
		Where("s.outcome = ?", enums.StepOutcomeFailed.String()).
		Where("s.step IN ?", names).
		Where("s.created_at >= ?", since).
		Where(`NOT EXISTS (
			SELECT 1 FROM checkout_steps later
			WHERE later.order_id = s.order_id AND later.step = s.step AND later.attempt > s.attempt
		)`)
	if maxAttempts > 0 {
		q = q.Where("s.attempt < ?", maxAttempts)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []models.CheckoutStep
	if err := q.Order("s.created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
