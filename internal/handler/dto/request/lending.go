package request

import (
	"time"

	"github.com/google/uuid"
)

type CreateLoanRequest struct {
	MaterialID uuid.UUID `json:"material_id" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,gt=0"`
	DueAt      time.Time `json:"due_at" binding:"required"`
}

type RegisterMaterialRequest struct {
	Name            string `json:"name" binding:"required"`
	UnitPriceCents  int64  `json:"unit_price_cents" binding:"gte=0"`
	InitialQuantity int64  `json:"initial_quantity" binding:"gte=0"`
}

type ClassifyDebtRequest struct {
	Kind string `json:"kind" binding:"required,oneof=late broken lost"`
	// PaymentChannel only matters for answers that settle by payment;
	// omitted means the student pays at the counter.
	PaymentChannel string `json:"paymentChannel" binding:"omitempty,oneof=in_person online"`
}

// ScanRequest carries the raw scanned value: either a bare token or the
// full scan URL, exactly as the scanner app read it.
type ScanRequest struct {
	Value string `json:"value" binding:"required"`
}
