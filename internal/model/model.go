// Package model содержит доменные сущности платёжного сервиса.
package model

import "time"

// User представляет зарегистрированного пользователя сервиса.
type User struct {
	ID           int64
	Login        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// TransactionType описывает тип операции по балансу.
type TransactionType string

const (
	TransactionTypeDeposit TransactionType = "DEPOSIT"
	TransactionTypeSpend   TransactionType = "SPEND"
)

// TransactionStatus описывает статус операции по балансу.
type TransactionStatus string

const (
	TransactionStatusConfirmed TransactionStatus = "CONFIRMED"
)

// Transaction описывает одну операцию по балансу пользователя.
// Для депозитов SourceTxID содержит хеш подтверждённой транзакции в сети TRON.
type Transaction struct {
	Type        TransactionType
	AmountMicro int64
	SourceTxID  string
	Status      TransactionStatus
	ProcessedAt time.Time
}

// Balance содержит текущий баланс пользователя в USDT.
type Balance struct {
	Current float64 `json:"current"`
	Spent   float64 `json:"spent"`
}

// DepositSession описывает окно ожидания хеша транзакции от пользователя.
// У пользователя может быть не более одной открытой сессии; новая сессия
// замещает предыдущую.
type DepositSession struct {
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}
