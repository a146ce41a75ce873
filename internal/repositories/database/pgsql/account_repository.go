package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `account_id, display_name, email, phone_number, card_number, account_number, balance, created_at, last_updated_at`

type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{pool: pool}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	var email, phone, card, number sql.NullString
	err := row.Scan(
		&acc.AccountID,
		&acc.DisplayName,
		&email,
		&phone,
		&card,
		&number,
		&acc.Balance,
		&acc.CreatedAt,
		&acc.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	acc.Email = email.String
	acc.PhoneNumber = phone.String
	acc.CardNumber = card.String
	acc.AccountNumber = number.String
	return &acc, nil
}

// findOne runs a single-row account query and maps no rows to ErrNotFound.
func (r *PgxAccountRepository) findOne(ctx context.Context, what string, query string, args ...any) (*domain.Account, error) {
	acc, err := scanAccount(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find account by "+what, err)
	}
	return acc, nil
}

// SaveAccount inserts a new account into the database.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.pool.Exec(ctx, query,
		account.AccountID,
		account.DisplayName,
		nullIfEmpty(account.Email),
		nullIfEmpty(account.PhoneNumber),
		nullIfEmpty(account.CardNumber),
		nullIfEmpty(account.AccountNumber),
		account.Balance,
		account.CreatedAt,
		account.LastUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account %s or one of its identifiers already exists", apperrors.ErrDuplicate, account.AccountID)
		}
		return apperrors.NewAppError(500, "failed to save account "+account.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	return r.findOne(ctx, "id", query, accountID)
}

func (r *PgxAccountRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email) = $1 ORDER BY account_id LIMIT 1;`
	return r.findOne(ctx, "email", query, email)
}

func (r *PgxAccountRepository) FindAccountByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE UPPER(account_number) = $1 LIMIT 1;`
	return r.findOne(ctx, "account number", query, accountNumber)
}

// FindAccountByCardNumber honours the order of variants: the earliest matching variant wins.
func (r *PgxAccountRepository) FindAccountByCardNumber(ctx context.Context, variants []string) (*domain.Account, error) {
	if len(variants) == 0 {
		return nil, apperrors.ErrNotFound
	}
	query := `
		SELECT ` + accountColumns + ` FROM accounts
		WHERE card_number = ANY($1::text[])
		ORDER BY array_position($1::text[], card_number::text), account_id
		LIMIT 1;
	`
	return r.findOne(ctx, "card number", query, variants)
}

func (r *PgxAccountRepository) FindAccountByPhoneNumber(ctx context.Context, variants []string) (*domain.Account, error) {
	if len(variants) == 0 {
		return nil, apperrors.ErrNotFound
	}
	query := `
		SELECT ` + accountColumns + ` FROM accounts
		WHERE phone_number = ANY($1::text[])
		ORDER BY array_position($1::text[], phone_number::text), account_id
		LIMIT 1;
	`
	return r.findOne(ctx, "phone number", query, variants)
}

// ListAccountsAfter retrieves a page of accounts ordered by ID, starting after afterAccountID.
func (r *PgxAccountRepository) ListAccountsAfter(ctx context.Context, afterAccountID string, limit int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id > $1 ORDER BY account_id LIMIT $2;`
	rows, err := r.pool.Query(ctx, query, afterAccountID, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list accounts", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0, limit)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}
	return accounts, nil
}

// SetAccountNumber writes the account number only when the account has none, or already has the same one.
func (r *PgxAccountRepository) SetAccountNumber(ctx context.Context, accountID string, accountNumber string) error {
	query := `
		UPDATE accounts
		SET account_number = $2, last_updated_at = NOW()
		WHERE account_id = $1 AND (account_number IS NULL OR account_number = '' OR account_number = $2);
	`
	cmdTag, err := r.pool.Exec(ctx, query, accountID, accountNumber)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account number %s is taken", apperrors.ErrDuplicate, accountNumber)
		}
		return apperrors.NewAppError(500, "failed to set account number for "+accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		if _, findErr := r.FindAccountByID(ctx, accountID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: account %s already has an account number", apperrors.ErrConflict, accountID)
	}
	return nil
}
