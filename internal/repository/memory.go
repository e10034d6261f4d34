package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mmeshcher/tronpay-system/internal/model"
)

// MemoryRepository хранит все данные в памяти процесса. Используется, когда
// сервис запущен без БД; контракт тот же, что у PostgresRepository.
type MemoryRepository struct {
	mu sync.Mutex

	nextUserID   int64
	usersByLogin map[string]*model.User
	usersByID    map[int64]*model.User

	balances     map[int64]int64
	transactions map[int64][]model.Transaction

	// creditedTx гарантирует не более одного зачисления на хеш транзакции,
	// независимо от пользователя.
	creditedTx map[string]struct{}
}

// NewMemoryRepository создаёт пустой репозиторий в памяти.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextUserID:   1,
		usersByLogin: make(map[string]*model.User),
		usersByID:    make(map[int64]*model.User),
		balances:     make(map[int64]int64),
		transactions: make(map[int64][]model.Transaction),
		creditedTx:   make(map[string]struct{}),
	}
}

// Close освобождает ресурсы репозитория. Для хранилища в памяти это no-op.
func (r *MemoryRepository) Close() error {
	return nil
}

// CreateUser создаёт нового пользователя.
func (r *MemoryRepository) CreateUser(_ context.Context, login string, passwordHash []byte) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.usersByLogin[login]; ok {
		return 0, fmt.Errorf("%w: %s", ErrUserExists, login)
	}

	u := &model.User{
		ID:           r.nextUserID,
		Login:        login,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	r.nextUserID++
	r.usersByLogin[login] = u
	r.usersByID[u.ID] = u

	return u.ID, nil
}

// GetUserByLogin возвращает пользователя по логину.
func (r *MemoryRepository) GetUserByLogin(_ context.Context, login string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.usersByLogin[login]
	if !ok {
		return nil, ErrUserNotFound
	}

	copied := *u
	return &copied, nil
}

// CreditDeposit записывает подтверждённый депозит и увеличивает баланс.
// Проверка дубликата и запись выполняются под одной блокировкой: два
// конкурентных вызова с одним хешем дают ровно одно зачисление. Хеш
// учитывается без учёта регистра.
func (r *MemoryRepository) CreditDeposit(_ context.Context, userID int64, amountMicro int64, sourceTxID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(sourceTxID)
	if _, ok := r.creditedTx[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTransaction, sourceTxID)
	}

	r.creditedTx[key] = struct{}{}
	r.balances[userID] += amountMicro
	r.transactions[userID] = append(r.transactions[userID], model.Transaction{
		Type:        model.TransactionTypeDeposit,
		AmountMicro: amountMicro,
		SourceTxID:  sourceTxID,
		Status:      model.TransactionStatusConfirmed,
		ProcessedAt: time.Now(),
	})

	return nil
}

// Debit записывает списание средств. Баланс не может стать отрицательным.
func (r *MemoryRepository) Debit(_ context.Context, userID int64, amountMicro int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.usersByID[userID]; !ok {
		return ErrUserNotFound
	}

	if amountMicro > r.balances[userID] {
		return ErrInsufficientBalance
	}

	r.balances[userID] -= amountMicro
	r.transactions[userID] = append(r.transactions[userID], model.Transaction{
		Type:        model.TransactionTypeSpend,
		AmountMicro: amountMicro,
		Status:      model.TransactionStatusConfirmed,
		ProcessedAt: time.Now(),
	})

	return nil
}

// GetBalanceMicro возвращает текущий баланс и сумму всех списаний пользователя
// в минимальных единицах токена.
func (r *MemoryRepository) GetBalanceMicro(_ context.Context, userID int64) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var spent int64
	for _, tx := range r.transactions[userID] {
		if tx.Type == model.TransactionTypeSpend {
			spent += tx.AmountMicro
		}
	}

	return r.balances[userID], spent, nil
}

// GetTransactionsByUser возвращает историю операций пользователя, новые первыми.
func (r *MemoryRepository) GetTransactionsByUser(_ context.Context, userID int64) ([]model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.transactions[userID]
	res := make([]model.Transaction, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		res = append(res, stored[i])
	}

	return res, nil
}
