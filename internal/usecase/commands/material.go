package commands

import (
	"context"

	reqdto "lablend/internal/handler/dto/request"
	"lablend/internal/infra"
	"lablend/internal/infra/repository"
	"lablend/internal/pkg/clock"
	"lablend/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrDuplicateMaterial = errs.New("material already registered")
	ErrStockInitFailed   = errs.New("stock counter initialization failed")
)

type MaterialCommands interface {
	Register(ctx context.Context, req reqdto.RegisterMaterialRequest) (uuid.UUID, error)
}

type materialUseCaseImpl struct {
	materialRepo MaterialRepository
	ledger       StockLedger
	db           DB
	clock        clock.Clock
}

func NewMaterialUseCase(materialRepo MaterialRepository, ledger StockLedger, db DB, clock clock.Clock) MaterialCommands {
	return &materialUseCaseImpl{
		materialRepo: materialRepo,
		ledger:       ledger,
		db:           db,
		clock:        clock,
	}
}

// Register adds a catalog row and seeds the stock counter. Catalog first:
// a counter without a catalog row is unreachable, the reverse order could
// reset live stock on a duplicate-name retry.
func (u *materialUseCaseImpl) Register(ctx context.Context, req reqdto.RegisterMaterialRequest) (uuid.UUID, error) {
	row := repository.MaterialRow{
		ID:             uuid.New(),
		Name:           req.Name,
		UnitPriceCents: req.UnitPriceCents,
		CreatedAt:      u.clock.Now(),
	}

	if err := u.materialRepo.Create(ctx, u.db, row); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return uuid.Nil, ErrDuplicateMaterial
		}
		return uuid.Nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if err := u.ledger.Set(ctx, row.ID, req.InitialQuantity); err != nil {
		// the row exists but availability reads zero until the counter is
		// seeded; surfacing the failure lets the admin retry the seed
		return row.ID, errs.Mark(err, ErrStockInitFailed)
	}

	return row.ID, nil
}
