package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates the repository that owns every balance write.
func newPgxLedgerRepository(pool *pgxpool.Pool, maxRetries int) portsrepo.LedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool, MaxRetries: maxRetries}}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepository
var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

// ApplyPosting claims the idempotency key, locks the touched accounts, and writes
// balances, records, notifications, transitions and the goal update in a single
// database transaction.
func (r *PgxLedgerRepository) ApplyPosting(ctx context.Context, posting domain.Posting) (*domain.PostingResult, error) {
	if err := posting.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	var result *domain.PostingResult
	err := r.runInTx(ctx, func(tx pgx.Tx) error {
		res, err := r.applyPostingInTx(ctx, tx, posting)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgxLedgerRepository) applyPostingInTx(ctx context.Context, tx pgx.Tx, posting domain.Posting) (*domain.PostingResult, error) {
	now := time.Now().UTC()

	// 1. Claim the idempotency key. A concurrent request with the same key blocks
	// on the primary key until this transaction finishes.
	if rec := posting.Idempotency; rec != nil {
		claimed, err := r.claimIdempotencyKey(ctx, tx, *rec, now)
		if err != nil {
			return nil, err
		}
		if !claimed {
			existing, err := findIdempotencyRecord(ctx, tx, rec.OwnerAccountID, rec.Key)
			if err != nil {
				return nil, err
			}
			return replayResult(*existing, rec.Fingerprint)
		}
	}

	// 2. Lock accounts in ID order and read their balances under the lock.
	balances, err := lockAccountBalances(ctx, tx, posting.AccountIDs())
	if err != nil {
		return nil, err
	}

	// 3. Compute running balances per entry, refusing any negative result.
	batch := &pgx.Batch{}
	ids := make([]string, 0, len(posting.Entries))
	for _, e := range posting.Entries {
		prev := balances[e.AccountID]
		next := prev.Add(e.Delta)
		if next.IsNegative() {
			return nil, fmt.Errorf("%w: account %s has %s, needs %s", apperrors.ErrInsufficientFunds, e.AccountID, prev, e.Delta.Abs())
		}
		balances[e.AccountID] = next

		t := e.Transaction
		t.PreviousBalance = prev
		t.NewBalance = next
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		t.UpdatedAt = t.CreatedAt
		args, err := transactionArgs(t)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to encode transaction "+t.TransactionID, err)
		}
		batch.Queue(insertTransactionQuery, args...)
		ids = append(ids, t.TransactionID)
	}

	// 4. Move pending records to their final status.
	if err := applyTransitions(ctx, tx, posting.Transitions, now); err != nil {
		return nil, err
	}

	// 5. Conditionally write the goal.
	if posting.GoalUpdate != nil {
		if err := applyGoalUpdate(ctx, tx, *posting.GoalUpdate, now); err != nil {
			return nil, err
		}
	}

	// 6. Balances, records and notifications go out as one batch.
	balanceQuery := `UPDATE accounts SET balance = $2, last_updated_at = $3 WHERE account_id = $1;`
	for _, id := range posting.AccountIDs() {
		batch.Queue(balanceQuery, id, balances[id], now)
	}
	for _, n := range posting.Notifications {
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		batch.Queue(insertNotificationQuery, notificationArgs(n)...)
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		// Important: Close the batch results to check for errors in each command
		if err := br.Close(); err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("%w: posting records already exist", apperrors.ErrDuplicate)
			}
			if isRetryable(err) {
				return nil, err
			}
			return nil, apperrors.NewAppError(500, "failed to execute posting batch", err)
		}
	}

	// 7. Fill in the claimed key with the outcome.
	if rec := posting.Idempotency; rec != nil {
		ownerBalance, ok := balances[rec.OwnerAccountID]
		if !ok {
			locked, err := lockAccountBalances(ctx, tx, []string{rec.OwnerAccountID})
			if err != nil {
				return nil, err
			}
			ownerBalance = locked[rec.OwnerAccountID]
		}
		query := `UPDATE idempotency_keys SET transaction_ids = $3, balance = $4 WHERE owner_account_id = $1 AND idempotency_key = $2;`
		if _, err := tx.Exec(ctx, query, rec.OwnerAccountID, rec.Key, ids, ownerBalance); err != nil {
			return nil, apperrors.NewAppError(500, "failed to record idempotency outcome", err)
		}
	}

	return &domain.PostingResult{Balances: balances, TransactionIDs: ids}, nil
}

func (r *PgxLedgerRepository) claimIdempotencyKey(ctx context.Context, tx pgx.Tx, rec domain.IdempotencyRecord, now time.Time) (bool, error) {
	query := `
		INSERT INTO idempotency_keys (owner_account_id, idempotency_key, fingerprint, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_account_id, idempotency_key) DO NOTHING;
	`
	cmdTag, err := tx.Exec(ctx, query, rec.OwnerAccountID, rec.Key, rec.Fingerprint, now)
	if err != nil {
		if isRetryable(err) {
			return false, err
		}
		return false, apperrors.NewAppError(500, "failed to claim idempotency key", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

// FindIdempotencyRecord looks up a stored keyed result.
func (r *PgxLedgerRepository) FindIdempotencyRecord(ctx context.Context, ownerAccountID string, key string) (*domain.IdempotencyRecord, error) {
	return findIdempotencyRecord(ctx, r.Pool, ownerAccountID, key)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func findIdempotencyRecord(ctx context.Context, q querier, ownerAccountID string, key string) (*domain.IdempotencyRecord, error) {
	query := `
		SELECT idempotency_key, owner_account_id, fingerprint, transaction_ids, balance, created_at
		FROM idempotency_keys
		WHERE owner_account_id = $1 AND idempotency_key = $2;
	`
	var rec domain.IdempotencyRecord
	err := q.QueryRow(ctx, query, ownerAccountID, key).Scan(
		&rec.Key,
		&rec.OwnerAccountID,
		&rec.Fingerprint,
		&rec.TransactionIDs,
		&rec.Balance,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find idempotency record", err)
	}
	return &rec, nil
}

func replayResult(existing domain.IdempotencyRecord, fingerprint string) (*domain.PostingResult, error) {
	if existing.Fingerprint != fingerprint {
		return nil, fmt.Errorf("%w: idempotency key %q was used with different parameters", apperrors.ErrValidation, existing.Key)
	}
	return &domain.PostingResult{
		Balances:       map[string]decimal.Decimal{existing.OwnerAccountID: existing.Balance},
		TransactionIDs: existing.TransactionIDs,
		Replayed:       true,
	}, nil
}

// lockAccountBalances locks rows in ascending ID order so concurrent postings
// over the same accounts cannot deadlock each other.
func lockAccountBalances(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]decimal.Decimal, error) {
	balances := make(map[string]decimal.Decimal, len(accountIDs))
	if len(accountIDs) == 0 {
		return balances, nil
	}
	sorted := append([]string(nil), accountIDs...)
	sort.Strings(sorted)

	query := `
		SELECT account_id, balance
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, sorted)
	if err != nil {
		if isRetryable(err) {
			return nil, err
		}
		return nil, apperrors.NewAppError(500, "failed to lock accounts for update", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var balance decimal.Decimal
		if err := rows.Scan(&id, &balance); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan locked account row", err)
		}
		balances[id] = balance
	}
	if err := rows.Err(); err != nil {
		if isRetryable(err) {
			return nil, err
		}
		return nil, apperrors.NewAppError(500, "error iterating locked account rows", err)
	}

	if len(balances) != len(sorted) {
		missing := []string{}
		for _, id := range sorted {
			if _, found := balances[id]; !found {
				missing = append(missing, id)
			}
		}
		return nil, fmt.Errorf("%w: could not find or lock all requested accounts, missing: %v", apperrors.ErrNotFound, missing)
	}
	return balances, nil
}

func applyTransitions(ctx context.Context, tx pgx.Tx, transitions []domain.StatusTransition, now time.Time) error {
	query := `UPDATE transactions SET status = $3, updated_at = $4 WHERE transaction_id = $1 AND status = $2;`
	for _, t := range transitions {
		cmdTag, err := tx.Exec(ctx, query, t.TransactionID, string(t.From), string(t.To), now)
		if err != nil {
			if isRetryable(err) {
				return err
			}
			return apperrors.NewAppError(500, "failed to update status of transaction "+t.TransactionID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE transaction_id = $1);`, t.TransactionID).Scan(&exists); err != nil {
				return apperrors.NewAppError(500, "failed to check transaction "+t.TransactionID, err)
			}
			if !exists {
				return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, t.TransactionID)
			}
			return fmt.Errorf("%w: transaction %s is no longer %s", apperrors.ErrConflict, t.TransactionID, t.From)
		}
	}
	return nil
}

func applyGoalUpdate(ctx context.Context, tx pgx.Tx, update domain.GoalUpdate, now time.Time) error {
	g := update.Goal
	query := `
		UPDATE savings_goals
		SET current_amount = $2, status = $3, last_contribution_date = $4, last_updated_at = $5
		WHERE goal_id = $1 AND status = 'active' AND last_contribution_date IS NOT DISTINCT FROM $6::timestamptz;
	`
	cmdTag, err := tx.Exec(ctx, query, g.GoalID, g.CurrentAmount, string(g.Status), g.LastContributionDate, now, update.ExpectedLastContribution)
	if err != nil {
		if isRetryable(err) {
			return err
		}
		return apperrors.NewAppError(500, "failed to update savings goal "+g.GoalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: goal %s was modified concurrently", apperrors.ErrConflict, g.GoalID)
	}
	return nil
}
