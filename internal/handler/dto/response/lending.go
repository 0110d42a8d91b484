package response

import (
	"time"

	"lablend/internal/usecase/commands"
	"lablend/internal/usecase/queries"

	"github.com/google/uuid"
)

type CreateLoanResponse struct {
	ID                uuid.UUID `json:"id"`
	ActivationScanURL string    `json:"activation_scan_url"`
	DueAt             time.Time `json:"due_at"`
}

func FromCreateLoanResult(r *commands.CreateLoanResult) *CreateLoanResponse {
	return &CreateLoanResponse{
		ID:                r.LoanID,
		ActivationScanURL: r.ActivationScanURL,
		DueAt:             r.DueAt,
	}
}

type LoanResponse struct {
	ID                 uuid.UUID  `json:"id"`
	StudentID          uuid.UUID  `json:"student_id"`
	MaterialID         uuid.UUID  `json:"material_id"`
	MaterialName       string     `json:"material_name"`
	Quantity           int        `json:"quantity"`
	UnitPriceCents     int64      `json:"unit_price_cents"`
	AdjustedPriceCents int64      `json:"adjusted_price_cents"`
	Status             string     `json:"status"`
	RequestedAt        time.Time  `json:"requested_at"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	DueAt              time.Time  `json:"due_at"`
	ReturnScanURL      *string    `json:"return_scan_url,omitempty"`
}

func FromLoanView(v *queries.LoanView) *LoanResponse {
	return &LoanResponse{
		ID:                 v.ID,
		StudentID:          v.StudentID,
		MaterialID:         v.MaterialID,
		MaterialName:       v.MaterialName,
		Quantity:           v.Quantity,
		UnitPriceCents:     v.UnitPriceCents,
		AdjustedPriceCents: v.AdjustedPriceCents,
		Status:             v.Status,
		RequestedAt:        v.RequestedAt,
		StartedAt:          v.StartedAt,
		DueAt:              v.DueAt,
		ReturnScanURL:      v.ReturnScanURL,
	}
}

type DebtResponse struct {
	ID                 uuid.UUID `json:"id"`
	OriginLoanID       uuid.UUID `json:"origin_loan_id"`
	StudentID          uuid.UUID `json:"student_id"`
	MaterialID         uuid.UUID `json:"material_id"`
	MaterialName       string    `json:"material_name"`
	Quantity           int       `json:"quantity"`
	UnitPriceCents     int64     `json:"unit_price_cents"`
	AdjustedPriceCents int64     `json:"adjusted_price_cents"`
	Kind               string    `json:"kind"`
	Classified         bool      `json:"classified"`
	Status             string    `json:"status"`
	ReturnScanURL      *string   `json:"return_scan_url,omitempty"`
	PayScanURL         *string   `json:"pay_scan_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	DueAt              time.Time `json:"due_at"`
	SettledVia         *string   `json:"settled_via,omitempty"`
}

func FromDebtView(v *queries.DebtView) *DebtResponse {
	return &DebtResponse{
		ID:                 v.ID,
		OriginLoanID:       v.OriginLoanID,
		StudentID:          v.StudentID,
		MaterialID:         v.MaterialID,
		MaterialName:       v.MaterialName,
		Quantity:           v.Quantity,
		UnitPriceCents:     v.UnitPriceCents,
		AdjustedPriceCents: v.AdjustedPriceCents,
		Kind:               v.Kind,
		Classified:         v.Classified,
		Status:             v.Status,
		ReturnScanURL:      v.ReturnScanURL,
		PayScanURL:         v.PayScanURL,
		CreatedAt:          v.CreatedAt,
		DueAt:              v.DueAt,
		SettledVia:         v.SettledVia,
	}
}

type ClassifyDebtResponse struct {
	ID                 uuid.UUID `json:"id"`
	Kind               string    `json:"kind"`
	AdjustedPriceCents int64     `json:"adjusted_price_cents"`
	ReturnScanURL      *string   `json:"return_scan_url,omitempty"`
	PayScanURL         *string   `json:"pay_scan_url,omitempty"`
	PaymentChannel     string    `json:"payment_channel,omitempty"`
}

func FromClassifyDebtResult(r *commands.ClassifyDebtResult) *ClassifyDebtResponse {
	return &ClassifyDebtResponse{
		ID:                 r.DebtID,
		Kind:               r.Kind,
		AdjustedPriceCents: r.AdjustedPriceCents,
		ReturnScanURL:      r.ReturnScanURL,
		PayScanURL:         r.PayScanURL,
		PaymentChannel:     r.PaymentChannel,
	}
}

type MaterialResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	UnitPriceCents    int64     `json:"unit_price_cents"`
	QuantityAvailable int64     `json:"quantity_available"`
	CreatedAt         time.Time `json:"created_at"`
}

func FromMaterialView(v *queries.MaterialView) *MaterialResponse {
	return &MaterialResponse{
		ID:                v.ID,
		Name:              v.Name,
		UnitPriceCents:    v.UnitPriceCents,
		QuantityAvailable: v.QuantityAvailable,
		CreatedAt:         v.CreatedAt,
	}
}

type ScanResponse struct {
	Outcome     string     `json:"outcome"`
	StudentID   uuid.UUID  `json:"student_id"`
	MaterialID  uuid.UUID  `json:"material_id"`
	Quantity    int        `json:"quantity"`
	LoanID      *uuid.UUID `json:"loan_id,omitempty"`
	DebtID      *uuid.UUID `json:"debt_id,omitempty"`
	AmountCents *int64     `json:"amount_cents,omitempty"`
}

func FromScanResult(r *commands.ScanResult) *ScanResponse {
	return &ScanResponse{
		Outcome:     string(r.Outcome),
		StudentID:   r.StudentID,
		MaterialID:  r.MaterialID,
		Quantity:    r.Quantity,
		LoanID:      r.LoanID,
		DebtID:      r.DebtID,
		AmountCents: r.AmountCents,
	}
}
