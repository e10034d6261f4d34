// Package repository содержит реализации хранилища балансов и пользователей.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/tronpay-system/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrUserExists возвращается при попытке создать пользователя с уже существующим логином.
var (
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateTransaction возвращается при попытке повторно зачислить уже
	// записанный хеш транзакции. Проверка глобальная, а не по пользователю.
	ErrDuplicateTransaction = errors.New("transaction already credited")
	// ErrInsufficientBalance возвращается при попытке списания суммы, превышающей баланс.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		// Если ошибка контекста — выходим сразу
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// Ретраи полезны для Serialization Failure или Deadlocks;
			// переподключением pgxpool занимается сам.
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

		if isConnectionError(err) {
			if i < len(delays) {
				time.Sleep(delays[i])
				continue
			}
		}

		break
	}
	return err
}

func isConnectionError(err error) bool {
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateUser создаёт нового пользователя.
func (r *PostgresRepository) CreateUser(ctx context.Context, login string, passwordHash []byte) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (login, password_hash) VALUES ($1, $2) RETURNING id`,
		login, passwordHash,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrUserExists, login)
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// GetUserByLogin возвращает пользователя по логину.
func (r *PostgresRepository) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, login, password_hash, created_at FROM users WHERE login = $1`,
		login,
	)

	var u model.User
	err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &u, nil
}

// CreditDeposit записывает подтверждённый депозит и увеличивает баланс
// пользователя. Уникальный индекс по source_tx_id гарантирует ровно одно
// зачисление для каждой транзакции сети независимо от пользователя.
func (r *PostgresRepository) CreditDeposit(ctx context.Context, userID int64, amountMicro int64, sourceTxID string) error {
	return r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO transactions (user_id, type, amount_micro, source_tx_id, status)
			 VALUES ($1, $2, $3, $4, $5)`,
			userID, string(model.TransactionTypeDeposit), amountMicro, sourceTxID,
			string(model.TransactionStatusConfirmed),
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return fmt.Errorf("%w: %s", ErrDuplicateTransaction, sourceTxID)
			}
			return fmt.Errorf("insert deposit: %w", err)
		}
		return nil
	})
}

// Debit записывает списание средств. Использует блокировку строки пользователя
// для сериализации списаний: баланс не может стать отрицательным.
func (r *PostgresRepository) Debit(ctx context.Context, userID int64, amountMicro int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var dummy int
	err = tx.QueryRow(ctx, `SELECT 1 FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&dummy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lock user for update: %w", err)
	}

	current, _, err := balanceTotals(ctx, tx, userID)
	if err != nil {
		return err
	}

	if amountMicro > current {
		return ErrInsufficientBalance
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO transactions (user_id, type, amount_micro, status)
		 VALUES ($1, $2, $3, $4)`,
		userID, string(model.TransactionTypeSpend), amountMicro,
		string(model.TransactionStatusConfirmed),
	)
	if err != nil {
		return fmt.Errorf("insert spend: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func balanceTotals(ctx context.Context, q queryRower, userID int64) (int64, int64, error) {
	var depositTotal int64
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_micro), 0)
		 FROM transactions
		 WHERE user_id = $1 AND type = $2`,
		userID, string(model.TransactionTypeDeposit),
	).Scan(&depositTotal)
	if err != nil {
		return 0, 0, fmt.Errorf("sum deposits: %w", err)
	}

	var spentTotal int64
	err = q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_micro), 0)
		 FROM transactions
		 WHERE user_id = $1 AND type = $2`,
		userID, string(model.TransactionTypeSpend),
	).Scan(&spentTotal)
	if err != nil {
		return 0, 0, fmt.Errorf("sum spends: %w", err)
	}

	return depositTotal - spentTotal, spentTotal, nil
}

// GetBalanceMicro возвращает текущий баланс и сумму всех списаний пользователя
// в минимальных единицах токена.
func (r *PostgresRepository) GetBalanceMicro(ctx context.Context, userID int64) (int64, int64, error) {
	return balanceTotals(ctx, r.pool, userID)
}

// GetTransactionsByUser возвращает историю операций пользователя, новые первыми.
func (r *PostgresRepository) GetTransactionsByUser(ctx context.Context, userID int64) ([]model.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT type, amount_micro, COALESCE(source_tx_id, ''), status, processed_at
		 FROM transactions
		 WHERE user_id = $1
		 ORDER BY processed_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	var res []model.Transaction
	for rows.Next() {
		var (
			txType      string
			amountMicro int64
			sourceTxID  string
			status      string
			processedAt time.Time
		)
		if err := rows.Scan(&txType, &amountMicro, &sourceTxID, &status, &processedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		res = append(res, model.Transaction{
			Type:        model.TransactionType(txType),
			AmountMicro: amountMicro,
			SourceTxID:  sourceTxID,
			Status:      model.TransactionStatus(status),
			ProcessedAt: processedAt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
