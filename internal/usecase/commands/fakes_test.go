//go:build unit

package commands_test

import (
	"context"
	"time"

	"lablend/internal/domain/debt"
	"lablend/internal/domain/loan"
	"lablend/internal/domain/token"
	"lablend/internal/infra"
	"lablend/internal/infra/db"
	"lablend/internal/infra/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB satisfies commands.DB without touching Postgres. The fake
// repositories keep their own state and ignore the DBTX handle, so the
// statement methods are never exercised.
type fakeDB struct {
	beginErr  error
	commitErr error
}

func (f *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }

func (f *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &fakeTx{commitErr: f.commitErr}, nil
}

type fakeTx struct {
	pgx.Tx
	commitErr error
}

func (t *fakeTx) Commit(context.Context) error   { return t.commitErr }
func (t *fakeTx) Rollback(context.Context) error { return pgx.ErrTxClosed }

func (t *fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (t *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }

type fakeLoanRepo struct {
	loans map[uuid.UUID]*loan.Loan

	activateErr error
	deleteErr   error
	expireErr   error
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{loans: make(map[uuid.UUID]*loan.Loan)}
}

func (r *fakeLoanRepo) Create(_ context.Context, _ db.DBTX, l *loan.Loan) error {
	r.loans[l.ID()] = l
	return nil
}

func (r *fakeLoanRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*loan.Loan, error) {
	l, ok := r.loans[id]
	if !ok {
		return nil, infra.WrapRepoErr("loan not found", nil, infra.KindNotFound)
	}
	return l, nil
}

func (r *fakeLoanRepo) MarkActivated(_ context.Context, _ db.DBTX, id uuid.UUID, startedAt time.Time) error {
	if r.activateErr != nil {
		return r.activateErr
	}
	l, ok := r.loans[id]
	if !ok {
		return infra.WrapRepoErr("loan not found", nil, infra.KindNotFound)
	}
	if err := l.Activate(startedAt); err != nil {
		return infra.WrapRepoErr("loan is not pending", err, infra.KindConflict)
	}
	return nil
}

func (r *fakeLoanRepo) ExpireDue(_ context.Context, _ db.DBTX, now time.Time) (int64, error) {
	if r.expireErr != nil {
		return 0, r.expireErr
	}
	var count int64
	for _, l := range r.loans {
		if l.Status() == loan.StatusActive && l.DueAt().Before(now) {
			if err := l.Expire(now); err == nil {
				count++
			}
		}
	}
	return count, nil
}

func (r *fakeLoanRepo) FindDueWithout(_ context.Context, _ db.DBTX, horizon time.Time) ([]*loan.Loan, error) {
	var result []*loan.Loan
	for _, l := range r.loans {
		if l.Status() == loan.StatusActive && l.DueAt().Before(horizon) && l.ReturnToken() == nil {
			result = append(result, l)
		}
	}
	return result, nil
}

func (r *fakeLoanRepo) FindConvertible(_ context.Context, _ db.DBTX, cutoff time.Time) ([]*loan.Loan, error) {
	var result []*loan.Loan
	for _, l := range r.loans {
		if l.Status() == loan.StatusExpired && l.DueAt().Before(cutoff) {
			result = append(result, l)
		}
	}
	return result, nil
}

func (r *fakeLoanRepo) SetReturnToken(_ context.Context, _ db.DBTX, id uuid.UUID, value string) error {
	l, ok := r.loans[id]
	if !ok {
		return infra.WrapRepoErr("loan not found", nil, infra.KindNotFound)
	}
	if err := l.AttachReturnToken(value); err != nil {
		return infra.WrapRepoErr("return token already set", err, infra.KindConflict)
	}
	return nil
}

func (r *fakeLoanRepo) Delete(_ context.Context, _ db.DBTX, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.loans[id]; !ok {
		return infra.WrapRepoErr("loan not found", nil, infra.KindNotFound)
	}
	delete(r.loans, id)
	return nil
}

type fakeDebtRepo struct {
	debts map[uuid.UUID]*debt.Debt
	// classified mirrors the column as last persisted, independently of
	// in-memory entity state, so the conditional write behaves like the
	// real predicate
	classified map[uuid.UUID]bool

	beforeSaveClassification func()
}

func newFakeDebtRepo() *fakeDebtRepo {
	return &fakeDebtRepo{
		debts:      make(map[uuid.UUID]*debt.Debt),
		classified: make(map[uuid.UUID]bool),
	}
}

func (r *fakeDebtRepo) Create(_ context.Context, _ db.DBTX, d *debt.Debt) error {
	for _, existing := range r.debts {
		if existing.OriginLoanID() == d.OriginLoanID() {
			return infra.WrapRepoErr("debt already exists for loan", nil, infra.KindDuplicateKey)
		}
	}
	r.debts[d.ID()] = d
	r.classified[d.ID()] = d.Classified()
	return nil
}

func (r *fakeDebtRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*debt.Debt, error) {
	d, ok := r.debts[id]
	if !ok {
		return nil, infra.WrapRepoErr("debt not found", nil, infra.KindNotFound)
	}
	return d, nil
}

func (r *fakeDebtRepo) Update(_ context.Context, _ db.DBTX, d *debt.Debt) error {
	if _, ok := r.debts[d.ID()]; !ok {
		return infra.WrapRepoErr("debt not found", nil, infra.KindNotFound)
	}
	r.debts[d.ID()] = d
	return nil
}

func (r *fakeDebtRepo) SaveClassification(_ context.Context, _ db.DBTX, d *debt.Debt) error {
	if r.beforeSaveClassification != nil {
		fn := r.beforeSaveClassification
		r.beforeSaveClassification = nil
		fn()
	}
	stored, ok := r.debts[d.ID()]
	if !ok {
		return infra.WrapRepoErr("debt not found", nil, infra.KindNotFound)
	}
	if r.classified[d.ID()] || stored.Status() != debt.StatusPending {
		return infra.WrapRepoErr("debt already classified or settled", nil, infra.KindConflict)
	}
	r.classified[d.ID()] = true
	r.debts[d.ID()] = d
	return nil
}

func (r *fakeDebtRepo) FindUnclassified(_ context.Context, _ db.DBTX) ([]*debt.Debt, error) {
	var result []*debt.Debt
	for _, d := range r.debts {
		if d.Status() == debt.StatusPending && !d.Classified() {
			result = append(result, d)
		}
	}
	return result, nil
}

type fakeTokenRepo struct {
	tokens map[string]*token.Token
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*token.Token)}
}

func (r *fakeTokenRepo) Issue(_ context.Context, _ db.DBTX, t *token.Token) (*token.Token, error) {
	for _, existing := range r.tokens {
		if existing.Purpose() == t.Purpose() && existing.OwnerRecordID() == t.OwnerRecordID() && !existing.Consumed() {
			return existing, nil
		}
	}
	r.tokens[t.Value()] = t
	return t, nil
}

func (r *fakeTokenRepo) FindByValue(_ context.Context, _ db.DBTX, value string) (*token.Token, error) {
	t, ok := r.tokens[value]
	if !ok {
		return nil, infra.WrapRepoErr("token not found", nil, infra.KindNotFound)
	}
	return t, nil
}

func (r *fakeTokenRepo) Consume(_ context.Context, _ db.DBTX, value string, adminID uuid.UUID, now time.Time) error {
	t, ok := r.tokens[value]
	if !ok {
		return infra.WrapRepoErr("token not found", nil, infra.KindNotFound)
	}
	if t.Consumed() {
		return infra.WrapRepoErr("token already consumed", nil, infra.KindConflict)
	}
	return t.Consume(adminID, now)
}

type fakeMaterialRepo struct {
	materials map[uuid.UUID]repository.MaterialRow
}

func newFakeMaterialRepo() *fakeMaterialRepo {
	return &fakeMaterialRepo{materials: make(map[uuid.UUID]repository.MaterialRow)}
}

func (r *fakeMaterialRepo) Create(_ context.Context, _ db.DBTX, row repository.MaterialRow) error {
	for _, existing := range r.materials {
		if existing.Name == row.Name {
			return infra.WrapRepoErr("material name already registered", nil, infra.KindDuplicateKey)
		}
	}
	r.materials[row.ID] = row
	return nil
}

func (r *fakeMaterialRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*repository.MaterialRow, error) {
	row, ok := r.materials[id]
	if !ok {
		return nil, infra.WrapRepoErr("material not found", nil, infra.KindNotFound)
	}
	return &row, nil
}

type queuedJob struct {
	kind    string
	topic   string
	payload []byte
	runAt   time.Time
}

type fakeNotificationRepo struct {
	jobs []queuedJob
}

func (r *fakeNotificationRepo) CreateJob(_ context.Context, _ db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	r.jobs = append(r.jobs, queuedJob{kind: kind, topic: topic, payload: payload, runAt: runAt})
	return nil
}

func (r *fakeNotificationRepo) topics() []string {
	result := make([]string, 0, len(r.jobs))
	for _, j := range r.jobs {
		result = append(result, j.topic)
	}
	return result
}
