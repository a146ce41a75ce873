package pgsql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	"github.com/enkamba/enkamba_payments/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `transaction_id, owner_account_id, transaction_type, amount, currency_code, status,
	previous_balance, new_balance, counterparty_id, payment_context, method, description, metadata, created_at, updated_at`

const insertTransactionQuery = `
	INSERT INTO transactions (` + transactionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
`

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transaction records.
func newPgxTransactionRepository(pool *pgxpool.Pool, maxRetries int) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool, MaxRetries: maxRetries}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func transactionArgs(t domain.Transaction) ([]any, error) {
	var metadata []byte
	if len(t.Metadata) > 0 {
		b, err := json.Marshal(t.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = b
	}
	return []any{
		t.TransactionID,
		t.OwnerAccountID,
		string(t.Type),
		t.Amount,
		t.Currency,
		string(t.Status),
		t.PreviousBalance,
		t.NewBalance,
		nullIfEmpty(t.CounterpartyID),
		nullIfEmpty(string(t.Context)),
		nullIfEmpty(t.Method),
		t.Description,
		metadata,
		t.CreatedAt,
		t.UpdatedAt,
	}, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var txnType, status string
	var counterparty, paymentContext, method sql.NullString
	var metadata []byte
	err := row.Scan(
		&t.TransactionID,
		&t.OwnerAccountID,
		&txnType,
		&t.Amount,
		&t.Currency,
		&status,
		&t.PreviousBalance,
		&t.NewBalance,
		&counterparty,
		&paymentContext,
		&method,
		&t.Description,
		&metadata,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Type = domain.TransactionType(txnType)
	t.Status = domain.TransactionStatus(status)
	t.CounterpartyID = counterparty.String
	t.Context = domain.PaymentContext(paymentContext.String)
	t.Method = method.String
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()
	transactions := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

// FindTransactionByID retrieves a live transaction record.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	t, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by ID "+transactionID, err)
	}
	return t, nil
}

// ListTransactionsByAccount retrieves an account's records newest first using token-based pagination.
func (r *PgxTransactionRepository) ListTransactionsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	var rows pgx.Rows
	var err error
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", errors.Join(apperrors.ErrValidation, decodeErr))
		}
		query := `SELECT ` + transactionColumns + ` FROM transactions
			WHERE owner_account_id = $1 AND (created_at, transaction_id) < ($2, $3)
			ORDER BY created_at DESC, transaction_id DESC LIMIT $4;`
		rows, err = r.Pool.Query(ctx, query, accountID, lastCreatedAt, lastID, fetchLimit)
	} else {
		query := `SELECT ` + transactionColumns + ` FROM transactions
			WHERE owner_account_id = $1
			ORDER BY created_at DESC, transaction_id DESC LIMIT $2;`
		rows, err = r.Pool.Query(ctx, query, accountID, fetchLimit)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions for account "+accountID, err)
	}

	transactions, err := collectTransactions(rows)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to read transactions for account "+accountID, err)
	}

	var nextTokenVal *string
	if len(transactions) > limit {
		last := transactions[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		nextTokenVal = &token
		transactions = transactions[:limit]
	}
	return transactions, nextTokenVal, nil
}

// ListTransactionsCreatedBefore returns live records older than cutoff, oldest first.
func (r *PgxTransactionRepository) ListTransactionsCreatedBefore(ctx context.Context, cutoff time.Time, after *portsrepo.ArchiveCursor, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows pgx.Rows
	var err error
	if after != nil {
		query := `SELECT ` + transactionColumns + ` FROM transactions
			WHERE created_at < $1 AND (created_at, transaction_id) > ($2, $3)
			ORDER BY created_at, transaction_id LIMIT $4;`
		rows, err = r.Pool.Query(ctx, query, cutoff, after.CreatedAt, after.TransactionID, limit)
	} else {
		query := `SELECT ` + transactionColumns + ` FROM transactions
			WHERE created_at < $1
			ORDER BY created_at, transaction_id LIMIT $2;`
		rows, err = r.Pool.Query(ctx, query, cutoff, limit)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query archival candidates", err)
	}
	transactions, err := collectTransactions(rows)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to read archival candidates", err)
	}
	return transactions, nil
}

// ArchiveTransaction copies the record into archived_transactions and deletes the live
// row in one transaction. A retried copy is absorbed by ON CONFLICT.
func (r *PgxTransactionRepository) ArchiveTransaction(ctx context.Context, transactionID string) (bool, error) {
	var moved bool
	err := r.runInTx(ctx, func(tx pgx.Tx) error {
		copyQuery := `
			INSERT INTO archived_transactions (` + transactionColumns + `, archived_at)
			SELECT ` + transactionColumns + `, NOW() FROM transactions WHERE transaction_id = $1
			ON CONFLICT (transaction_id) DO NOTHING;
		`
		if _, err := tx.Exec(ctx, copyQuery, transactionID); err != nil {
			return apperrors.NewAppError(500, "failed to copy transaction "+transactionID+" to archive", err)
		}
		cmdTag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to delete archived transaction "+transactionID, err)
		}
		moved = cmdTag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return moved, nil
}
