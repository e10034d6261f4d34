package tron

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

// TransferSelector — четырёхбайтовая сигнатура метода transfer(address,uint256).
const TransferSelector = "a9059cbb"

// Смещения полей в call data, в шестнадцатеричных символах (2 символа = 1 байт):
// селектор занимает [0:8], выравнивание — [8:32], получатель — [32:72],
// сумма — [72:136].
const (
	selectorEnd      = 8
	recipientStart   = 32
	recipientEnd     = 72
	amountEnd        = 136
	minCallDataChars = amountEnd
)

// ErrMalformedPayload возвращается, если call data короче фиксированной
// раскладки transfer-вызова или содержит некорректные шестнадцатеричные данные.
var ErrMalformedPayload = errors.New("malformed call data payload")

// TransferCall содержит типизированные поля декодированного transfer-вызова.
// Сумма хранится как целое произвольной точности в минимальных единицах токена.
type TransferCall struct {
	Selector  string
	Recipient [20]byte
	Amount    *big.Int
}

// IsTransfer сообщает, совпадает ли селектор вызова с сигнатурой
// transfer(address,uint256). Решение о фатальности несовпадения принимает
// вызывающая сторона.
func (c *TransferCall) IsTransfer() bool {
	return c.Selector == TransferSelector
}

// DecodeTransferCall разбирает hex-строку call data по фиксированной раскладке
// transfer-вызова. Раскладка короче 136 символов отклоняется как ErrMalformedPayload.
func DecodeTransferCall(data string) (*TransferCall, error) {
	if len(data) < minCallDataChars {
		return nil, fmt.Errorf("%w: %d hex chars, want at least %d", ErrMalformedPayload, len(data), minCallDataChars)
	}

	call := &TransferCall{Selector: data[:selectorEnd]}

	recipient, err := hex.DecodeString(data[recipientStart:recipientEnd])
	if err != nil {
		return nil, fmt.Errorf("%w: recipient: %s", ErrMalformedPayload, err)
	}
	copy(call.Recipient[:], recipient)

	amount, ok := new(big.Int).SetString(data[recipientEnd:amountEnd], 16)
	if !ok {
		return nil, fmt.Errorf("%w: invalid amount hex", ErrMalformedPayload)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative amount", ErrMalformedPayload)
	}
	call.Amount = amount

	return call, nil
}
