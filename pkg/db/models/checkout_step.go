package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// CheckoutStep is an append-only record of one side effect in the checkout pipeline.
type CheckoutStep struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	OrderNumber string               `gorm:"column:order_number;not null" json:"order_number"`
	Step        enums.CheckoutStep   `gorm:"column:step;not null" json:"step"`
	Outcome     enums.StepOutcome    `gorm:"column:outcome;not null" json:"outcome"`
	Channel     *enums.PaymentMethod `gorm:"column:channel" json:"channel,omitempty"`
	Detail      string               `gorm:"column:detail;not null;default:''" json:"detail,omitempty"`
	Attempt     int                  `gorm:"column:attempt;not null;default:1" json:"attempt"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CheckoutStep) TableName() string { return "checkout_steps" }

func (s *CheckoutStep) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
