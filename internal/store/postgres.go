package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/punchamoorthee/momoledger/internal/domain"
	"github.com/shopspring/decimal"
)

const createTransactionsTable = `CREATE TABLE IF NOT EXISTS transactions (
	txn_external_id TEXT PRIMARY KEY,
	body            TEXT NOT NULL DEFAULT '',
	provider        TEXT NOT NULL DEFAULT '',
	raw_date        TEXT NOT NULL DEFAULT '',
	date_sent       TEXT NOT NULL DEFAULT '',
	readable_date   TEXT NOT NULL DEFAULT '',
	contact_name    TEXT NOT NULL DEFAULT '',
	iso_date        TEXT,
	amount          NUMERIC,
	fee             NUMERIC NOT NULL DEFAULT 0,
	balance_after   NUMERIC,
	counterparty    TEXT
)`

var mirrorColumns = []string{
	"txn_external_id", "body", "provider", "raw_date", "date_sent", "readable_date",
	"contact_name", "iso_date", "amount", "fee", "balance_after", "counterparty",
}

// PostgresMirror copies the JSON record file into a reporting table.
type PostgresMirror struct {
	Db *pgxpool.Pool
}

func NewPostgresMirror(ctx context.Context, connString string) (*PostgresMirror, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &PostgresMirror{Db: pool}, nil
}

func (m *PostgresMirror) Close() {
	m.Db.Close()
}

func (m *PostgresMirror) EnsureSchema(ctx context.Context) error {
	if _, err := m.Db.Exec(ctx, createTransactionsTable); err != nil {
		return fmt.Errorf("create transactions table: %w", err)
	}
	return nil
}

func (m *PostgresMirror) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := m.Db.QueryRow(ctx, "SELECT COUNT(*) FROM transactions").Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (m *PostgresMirror) Truncate(ctx context.Context) error {
	if _, err := m.Db.Exec(ctx, "TRUNCATE TABLE transactions"); err != nil {
		return fmt.Errorf("truncate transactions: %w", err)
	}
	return nil
}

// Copy bulk-inserts txs with COPY and returns the number of rows written.
func (m *PostgresMirror) Copy(ctx context.Context, txs []domain.Transaction) (int64, error) {
	n, err := m.Db.CopyFrom(ctx, pgx.Identifier{"transactions"}, mirrorColumns, pgx.CopyFromRows(mirrorRows(txs)))
	if err != nil {
		return 0, fmt.Errorf("bulk insert failed: %w", err)
	}
	return n, nil
}

func mirrorRows(txs []domain.Transaction) [][]any {
	rows := make([][]any, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []any{
			tx.ExternalID, tx.Body, tx.Provider, tx.RawDate, tx.DateSent, tx.ReadableDate,
			tx.ContactName, tx.ISODate, nullNumeric(tx.Amount), numeric(tx.Fee),
			nullNumeric(tx.BalanceAfter), tx.Counterparty,
		})
	}
	return rows
}

func numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func nullNumeric(d decimal.NullDecimal) pgtype.Numeric {
	if !d.Valid {
		return pgtype.Numeric{}
	}
	return numeric(d.Decimal)
}
