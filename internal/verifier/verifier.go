// Package verifier принимает решение о том, подтверждает ли сеть TRON
// перевод токена на ожидаемый адрес.
package verifier

import (
	"context"
	"encoding/hex"
	"errors"
	"math"
	"math/big"

	"github.com/mmeshcher/tronpay-system/internal/tron"
	"github.com/mmeshcher/tronpay-system/internal/tronapi"
)

// RejectReason перечисляет причины отклонения транзакции.
type RejectReason string

const (
	// ReasonInvalidFormat — идентификатор транзакции не является 64 hex-символами.
	ReasonInvalidFormat RejectReason = "INVALID_FORMAT"
	// ReasonNotFound — сеть не знает транзакцию; возможно, она ещё не распространилась.
	ReasonNotFound RejectReason = "NOT_FOUND"
	// ReasonTransportFailure — сетевой вызов к узлу не удался; можно повторить позже.
	ReasonTransportFailure RejectReason = "TRANSPORT_FAILURE"
	// ReasonExecutionFailed — транзакция завершилась неуспешно в сети.
	ReasonExecutionFailed RejectReason = "EXECUTION_FAILED"
	// ReasonNotATokenTransfer — транзакция не является вызовом смарт-контракта.
	ReasonNotATokenTransfer RejectReason = "NOT_A_TOKEN_TRANSFER"
	// ReasonWrongContract — вызван не тот контракт токена.
	ReasonWrongContract RejectReason = "WRONG_CONTRACT"
	// ReasonNotATransferCall — селектор вызова не совпадает с transfer(address,uint256).
	ReasonNotATransferCall RejectReason = "NOT_A_TRANSFER_CALL"
	// ReasonMalformedPayload — call data не соответствует фиксированной раскладке.
	ReasonMalformedPayload RejectReason = "MALFORMED_PAYLOAD"
	// ReasonWrongRecipient — перевод выполнен на другой адрес.
	ReasonWrongRecipient RejectReason = "WRONG_RECIPIENT"
	// ReasonAmountTooLow — сумма перевода меньше минимального депозита.
	ReasonAmountTooLow RejectReason = "AMOUNT_TOO_LOW"
	// ReasonAmountOverflow — сумма перевода корректно декодирована, но выходит
	// за пределы учитываемого диапазона.
	ReasonAmountOverflow RejectReason = "AMOUNT_OVERFLOW"
	// ReasonDuplicateTransaction — транзакция уже была зачислена ранее.
	ReasonDuplicateTransaction RejectReason = "DUPLICATE_TRANSACTION"
)

// Verdict — результат проверки транзакции. Либо Accepted с суммой, либо
// отклонение с причиной; для ReasonAmountTooLow сумма также заполняется.
type Verdict struct {
	Accepted    bool
	TxID        string
	Amount      float64
	AmountMicro int64
	Reason      RejectReason
}

// LedgerClient описывает контракт чтения записей транзакций из сети.
type LedgerClient interface {
	GetTransactionByID(ctx context.Context, txID string) (*tronapi.Transaction, error)
}

// Policy содержит параметры политики проверки платежа.
type Policy struct {
	// DepositAddress — ожидаемый получатель в текстовой форме base58check.
	DepositAddress string
	// TokenContract — ожидаемый адрес контракта токена в текстовой форме.
	TokenContract string
	// MinimumAmount — минимальная сумма депозита в целых токенах.
	MinimumAmount float64
	// TokenDecimals — число десятичных знаков токена.
	TokenDecimals int
}

// Verifier проверяет, что транзакция является успешным переводом токена
// нужного контракта на ожидаемый адрес на достаточную сумму. Не хранит
// изменяемого состояния и не выполняет зачислений.
type Verifier struct {
	client   LedgerClient
	codec    *tron.Codec
	policy   Policy
	minMicro *big.Int
	scale    float64
}

// New создаёт Verifier с указанным клиентом сети, кодеком адресов и политикой.
func New(client LedgerClient, codec *tron.Codec, policy Policy) *Verifier {
	scale := math.Pow10(policy.TokenDecimals)
	return &Verifier{
		client:   client,
		codec:    codec,
		policy:   policy,
		minMicro: big.NewInt(int64(math.Round(policy.MinimumAmount * scale))),
		scale:    scale,
	}
}

// Verify проверяет транзакцию по её идентификатору. Проверки выполняются по
// порядку и обрываются на первой неудаче; каждая неудача даёт отдельную
// причину отклонения. Повторная проверка того же идентификатора при
// неизменном состоянии сети даёт тот же вердикт.
func (v *Verifier) Verify(ctx context.Context, txID string) Verdict {
	tx, err := v.client.GetTransactionByID(ctx, txID)
	if err != nil {
		if errors.Is(err, tronapi.ErrTransactionNotFound) {
			return rejected(txID, ReasonNotFound)
		}
		return rejected(txID, ReasonTransportFailure)
	}

	if tx.Ret[0].ContractRet != tronapi.ContractRetSuccess {
		return rejected(txID, ReasonExecutionFailed)
	}

	if len(tx.RawData.Contract) == 0 {
		return rejected(txID, ReasonNotATokenTransfer)
	}

	contract := tx.RawData.Contract[0]
	if contract.Type != tronapi.ContractTypeTriggerSmartContract {
		return rejected(txID, ReasonNotATokenTransfer)
	}

	// Адрес контракта уже содержит версионный байт сети.
	contractRaw, err := hex.DecodeString(contract.Parameter.Value.ContractAddress)
	if err != nil || v.codec.Encode(contractRaw) != v.policy.TokenContract {
		return rejected(txID, ReasonWrongContract)
	}

	call, err := tron.DecodeTransferCall(contract.Parameter.Value.Data)
	if err != nil {
		return rejected(txID, ReasonMalformedPayload)
	}
	if !call.IsTransfer() {
		return rejected(txID, ReasonNotATransferCall)
	}

	recipientRaw := make([]byte, 0, tron.AddressLength)
	recipientRaw = append(recipientRaw, tron.AccountVersionByte)
	recipientRaw = append(recipientRaw, call.Recipient[:]...)
	if v.codec.Encode(recipientRaw) != v.policy.DepositAddress {
		return rejected(txID, ReasonWrongRecipient)
	}

	// Нижняя граница включительная: сумма, равная минимуму, принимается.
	// Сравнение идёт в big.Int, поэтому размер суммы на него не влияет.
	if call.Amount.Cmp(v.minMicro) < 0 {
		amountMicro := call.Amount.Int64()
		verdict := rejected(txID, ReasonAmountTooLow)
		verdict.Amount = float64(amountMicro) / v.scale
		verdict.AmountMicro = amountMicro
		return verdict
	}

	// Декодирование не теряет точность, но учёт ведётся в int64. Суммы за его
	// пределами на порядки больше всей эмиссии токена.
	if !call.Amount.IsInt64() {
		return rejected(txID, ReasonAmountOverflow)
	}
	amountMicro := call.Amount.Int64()

	return Verdict{
		Accepted:    true,
		TxID:        txID,
		Amount:      float64(amountMicro) / v.scale,
		AmountMicro: amountMicro,
	}
}

func rejected(txID string, reason RejectReason) Verdict {
	return Verdict{TxID: txID, Reason: reason}
}

// String возвращает машинное имя причины отклонения.
func (r RejectReason) String() string {
	return string(r)
}
