package models

import (
	"time"

	"github.com/google/uuid"
)

type FinanceType string

const (
	FinanceIncome  FinanceType = "income"
	FinanceExpense FinanceType = "expense"
)

type FinanceRecord struct {
	Base
	Type        FinanceType `gorm:"size:10;not null;index" json:"type"`
	Amount      float64     `gorm:"type:numeric(12,2);not null" json:"amount"`
	Description string      `gorm:"type:text" json:"description"`
	Category    string      `gorm:"size:100" json:"category"`
	Date        time.Time   `gorm:"index" json:"date"`
	CreatedBy   uuid.UUID   `gorm:"type:uuid;not null" json:"createdBy"`
}
