package repository

import (
	"context"
	"time"

	"lablend/internal/domain/token"
	"lablend/internal/infra"
	"lablend/internal/infra/db"

	"github.com/google/uuid"
)

type TokenRepository struct{}

func NewTokenRepository() *TokenRepository {
	return &TokenRepository{}
}

const tokenColumns = `value, purpose, owner_record_id, issued_at, valid_until, consumed, consumed_at, consumed_by`

func scanToken(row interface{ Scan(dest ...any) error }) (*token.Token, error) {
	var (
		value, purpose string
		ownerRecordID  uuid.UUID
		issuedAt       time.Time
		validUntil     *time.Time
		consumed       bool
		consumedAt     *time.Time
		consumedBy     *uuid.UUID
	)
	err := row.Scan(&value, &purpose, &ownerRecordID, &issuedAt, &validUntil, &consumed, &consumedAt, &consumedBy)
	if err != nil {
		return nil, err
	}
	return token.ReconstructToken(
		value, token.Purpose(purpose), ownerRecordID, issuedAt, validUntil,
		consumed, consumedAt, consumedBy,
	), nil
}

// Issue inserts the token, or returns the live token already held by the
// same (purpose, owner) pair. Duplicate sweep runs therefore re-issue
// nothing.
func (r *TokenRepository) Issue(ctx context.Context, q db.DBTX, t *token.Token) (*token.Token, error) {
	existing, err := r.findLive(ctx, q, t.Purpose(), t.OwnerRecordID())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	query := `
		INSERT INTO tokens (value, purpose, owner_record_id, issued_at, valid_until)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = q.Exec(ctx, query, t.Value(), t.Purpose().String(), t.OwnerRecordID(), t.IssuedAt(), t.ValidUntil())
	if err != nil {
		if isUniqueViolation(err) {
			// lost an issuance race; the winner's token is the one to hand out
			existing, findErr := r.findLive(ctx, q, t.Purpose(), t.OwnerRecordID())
			if findErr == nil && existing != nil {
				return existing, nil
			}
			return nil, infra.WrapRepoErr("token issuance conflict", err, infra.KindConflict)
		}
		return nil, infra.WrapRepoErr("failed to issue token", err)
	}
	return t, nil
}

func (r *TokenRepository) findLive(ctx context.Context, q db.DBTX, purpose token.Purpose, ownerRecordID uuid.UUID) (*token.Token, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM tokens
		WHERE purpose = $1 AND owner_record_id = $2 AND NOT consumed
	`
	t, err := scanToken(q.QueryRow(ctx, query, purpose.String(), ownerRecordID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find live token", err)
	}
	return t, nil
}

func (r *TokenRepository) FindByValue(ctx context.Context, q db.DBTX, value string) (*token.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE value = $1`
	t, err := scanToken(q.QueryRow(ctx, query, value))
	if err != nil {
		if isNoRows(err) {
			return nil, infra.WrapRepoErr("token not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find token", err)
	}
	return t, nil
}

// Consume flips the token to consumed, conditionally: the WHERE clause only
// matches an unconsumed row, so a concurrent double scan yields exactly one
// winner and the loser sees a conflict.
func (r *TokenRepository) Consume(ctx context.Context, q db.DBTX, value string, adminID uuid.UUID, now time.Time) error {
	query := `
		UPDATE tokens
		SET consumed = TRUE, consumed_at = $2, consumed_by = $3
		WHERE value = $1 AND consumed = FALSE
	`
	tag, err := q.Exec(ctx, query, value, now, adminID)
	if err != nil {
		return infra.WrapRepoErr("failed to consume token", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("token already consumed", nil, infra.KindConflict)
	}
	return nil
}
