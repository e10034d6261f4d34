package tron

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"
)

const testRecipientHex = "0102030405060708090a0b0c0d0e0f1011121314"

func buildCallData(selector, recipientHex, amountHex string) string {
	return selector + strings.Repeat("0", 24) + recipientHex + amountHex
}

func TestDecodeTransferCall(t *testing.T) {
	// 0x0186A0 = 100000 — 0.1 токена при 6 знаках.
	amountHex := strings.Repeat("0", 58) + "0186A0"
	data := buildCallData(TransferSelector, testRecipientHex, amountHex)

	call, err := DecodeTransferCall(data)
	if err != nil {
		t.Fatalf("DecodeTransferCall error: %v", err)
	}

	if !call.IsTransfer() {
		t.Fatalf("selector = %s, want transfer", call.Selector)
	}

	wantRecipient, _ := hex.DecodeString(testRecipientHex)
	if !bytes.Equal(call.Recipient[:], wantRecipient) {
		t.Fatalf("recipient = %x, want %x", call.Recipient, wantRecipient)
	}

	if call.Amount.Cmp(big.NewInt(100000)) != 0 {
		t.Fatalf("amount = %s, want 100000", call.Amount)
	}
}

func TestDecodeTransferCall_TooShort(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "selector only", data: TransferSelector},
		{name: "one char short", data: strings.Repeat("0", minCallDataChars-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTransferCall(tt.data)
			if !errors.Is(err, ErrMalformedPayload) {
				t.Fatalf("expected ErrMalformedPayload, got %v", err)
			}
		})
	}
}

func TestDecodeTransferCall_BadHex(t *testing.T) {
	badRecipient := "zz" + testRecipientHex[2:]
	data := buildCallData(TransferSelector, badRecipient, strings.Repeat("0", 64))

	if _, err := DecodeTransferCall(data); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload for bad recipient hex, got %v", err)
	}

	data = buildCallData(TransferSelector, testRecipientHex, strings.Repeat("g", 64))
	if _, err := DecodeTransferCall(data); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload for bad amount hex, got %v", err)
	}
}

func TestDecodeTransferCall_WrongSelector(t *testing.T) {
	data := buildCallData("deadbeef", testRecipientHex, strings.Repeat("0", 64))

	call, err := DecodeTransferCall(data)
	if err != nil {
		t.Fatalf("DecodeTransferCall error: %v", err)
	}
	if call.IsTransfer() {
		t.Fatalf("selector %s must not be a transfer", call.Selector)
	}
}

func TestDecodeTransferCall_LargeAmount(t *testing.T) {
	// Сумма больше 64-битного диапазона не должна теряться при декодировании.
	amountHex := "00000000000000000000000000000000ffffffffffffffffffffffffffffffff"
	data := buildCallData(TransferSelector, testRecipientHex, amountHex)

	call, err := DecodeTransferCall(data)
	if err != nil {
		t.Fatalf("DecodeTransferCall error: %v", err)
	}

	want, _ := new(big.Int).SetString("ffffffffffffffffffffffffffffffff", 16)
	if call.Amount.Cmp(want) != 0 {
		t.Fatalf("amount = %s, want %s", call.Amount, want)
	}
	if call.Amount.IsInt64() {
		t.Fatalf("amount unexpectedly fits in int64")
	}
}
