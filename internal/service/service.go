// Package service реализует бизнес-логику платёжного сервиса.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"
	"strings"
	"sync"

	"github.com/mmeshcher/tronpay-system/internal/model"
	"github.com/mmeshcher/tronpay-system/internal/repository"
	"github.com/mmeshcher/tronpay-system/internal/session"
	"github.com/mmeshcher/tronpay-system/internal/validation"
	"github.com/mmeshcher/tronpay-system/internal/verifier"
)

// ErrNoDepositSession возвращается, если хеш транзакции пришёл без открытой
// сессии депозита. Такая отправка игнорируется: ни одного обращения к сети
// не выполняется.
var (
	ErrNoDepositSession = errors.New("no open deposit session")
	// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNonPositiveAmount возвращается при попытке списать неположительную сумму.
	ErrNonPositiveAmount = errors.New("spend amount must be positive")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	CreateUser(ctx context.Context, login string, passwordHash []byte) (int64, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	CreditDeposit(ctx context.Context, userID int64, amountMicro int64, sourceTxID string) error
	Debit(ctx context.Context, userID int64, amountMicro int64) error
	GetBalanceMicro(ctx context.Context, userID int64) (int64, int64, error)
	GetTransactionsByUser(ctx context.Context, userID int64) ([]model.Transaction, error)
}

// TransferVerifier описывает контракт проверки транзакции в сети.
type TransferVerifier interface {
	Verify(ctx context.Context, txID string) verifier.Verdict
}

// Service содержит бизнес-логику платёжного сервиса.
type Service struct {
	repo     Repository
	verifier TransferVerifier
	sessions *session.Store

	scale float64

	// userLocks сериализует обработку хешей в пределах одного пользователя:
	// проверка сессии, проверка транзакции, зачисление и закрытие сессии —
	// один логический шаг.
	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

// NewService создаёт сервис с указанным репозиторием, проверкой транзакций и
// хранилищем сессий депозита.
func NewService(repo Repository, v TransferVerifier, sessions *session.Store, tokenDecimals int) *Service {
	return &Service{
		repo:      repo,
		verifier:  v,
		sessions:  sessions,
		scale:     math.Pow10(tokenDecimals),
		userLocks: make(map[int64]*sync.Mutex),
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// RegisterUser регистрирует нового пользователя.
func (s *Service) RegisterUser(ctx context.Context, login, password string) (int64, error) {
	hashed := hashPassword(login, password)
	id, err := s.repo.CreateUser(ctx, login, hashed)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AuthenticateUser проверяет логин и пароль пользователя и возвращает его идентификатор.
func (s *Service) AuthenticateUser(ctx context.Context, login, password string) (int64, error) {
	u, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		return 0, err
	}

	hashed := hashPassword(login, password)
	if hex.EncodeToString(hashed) != hex.EncodeToString(u.PasswordHash) {
		return 0, ErrInvalidCredentials
	}

	return u.ID, nil
}

func hashPassword(login, password string) []byte {
	sum := sha256.Sum256([]byte(login + ":" + password))
	return sum[:]
}

// OpenDeposit открывает сессию депозита для пользователя, замещая существующую.
func (s *Service) OpenDeposit(userID int64) model.DepositSession {
	return s.sessions.Open(userID)
}

// CancelDeposit закрывает сессию депозита пользователя, если она открыта.
func (s *Service) CancelDeposit(userID int64) {
	s.sessions.Close(userID)
}

// SubmitTransaction обрабатывает присланный пользователем хеш транзакции.
// Без открытой сессии возвращается ErrNoDepositSession без обращения к сети.
// Любая принятая к обработке отправка закрывает сессию; вердикт описывает
// результат проверки и зачисления.
func (s *Service) SubmitTransaction(ctx context.Context, userID int64, txHash string) (verifier.Verdict, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if !s.sessions.IsOpen(userID) {
		return verifier.Verdict{}, ErrNoDepositSession
	}
	defer s.sessions.Close(userID)

	if !validation.IsValidTxHash(txHash) {
		return verifier.Verdict{TxID: txHash, Reason: verifier.ReasonInvalidFormat}, nil
	}

	// Хеш не чувствителен к регистру: проверка и учёт дубликатов идут по
	// нормализованной форме, иначе один перевод зачислялся бы дважды.
	txHash = strings.ToLower(txHash)

	verdict := s.verifier.Verify(ctx, txHash)
	if !verdict.Accepted {
		return verdict, nil
	}

	if err := s.repo.CreditDeposit(ctx, userID, verdict.AmountMicro, txHash); err != nil {
		if errors.Is(err, repository.ErrDuplicateTransaction) {
			return verifier.Verdict{TxID: txHash, Reason: verifier.ReasonDuplicateTransaction}, nil
		}
		return verifier.Verdict{}, err
	}

	return verdict, nil
}

func (s *Service) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// GetBalance возвращает баланс пользователя в USDT.
func (s *Service) GetBalance(ctx context.Context, userID int64) (*model.Balance, error) {
	current, spent, err := s.repo.GetBalanceMicro(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.Balance{
		Current: float64(current) / s.scale,
		Spent:   float64(spent) / s.scale,
	}, nil
}

// GetTransactionsByUser возвращает историю операций пользователя, новые первыми.
func (s *Service) GetTransactionsByUser(ctx context.Context, userID int64) ([]model.Transaction, error) {
	return s.repo.GetTransactionsByUser(ctx, userID)
}

// Spend списывает сумму с баланса пользователя.
func (s *Service) Spend(ctx context.Context, userID int64, amount float64) error {
	amountMicro := int64(math.Round(amount * s.scale))
	if amountMicro <= 0 {
		return ErrNonPositiveAmount
	}
	return s.repo.Debit(ctx, userID, amountMicro)
}

// ToAmount переводит сумму из минимальных единиц токена в USDT.
func (s *Service) ToAmount(amountMicro int64) float64 {
	return float64(amountMicro) / s.scale
}
