package verifier

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mmeshcher/tronpay-system/internal/tron"
	"github.com/mmeshcher/tronpay-system/internal/tronapi"
)

const (
	testTxID        = "f7b0a1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0"
	testContractHex = "41a614f803b6fd780986a42c78ec9c7f77e6ded13c"
	// Base58check-представление testContractHex.
	testContract     = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
	testRecipientHex = "0102030405060708090a0b0c0d0e0f1011121314"
)

type stubLedgerClient struct {
	tx  *tronapi.Transaction
	err error
}

func (c *stubLedgerClient) GetTransactionByID(_ context.Context, _ string) (*tronapi.Transaction, error) {
	return c.tx, c.err
}

// depositAddress — base58check-адрес, соответствующий testRecipientHex.
func depositAddress(t *testing.T) string {
	t.Helper()

	raw, err := hex.DecodeString("41" + testRecipientHex)
	if err != nil {
		t.Fatalf("decode recipient hex: %v", err)
	}
	return tron.NewCodec().Encode(raw)
}

func testPolicy(t *testing.T) Policy {
	return Policy{
		DepositAddress: depositAddress(t),
		TokenContract:  testContract,
		MinimumAmount:  100,
		TokenDecimals:  6,
	}
}

func transferData(recipientHex string, amountMicro int64) string {
	return tron.TransferSelector + strings.Repeat("0", 24) + recipientHex + fmt.Sprintf("%064x", amountMicro)
}

func successfulTransfer(data string) *tronapi.Transaction {
	return &tronapi.Transaction{
		TxID: testTxID,
		Ret:  []tronapi.Result{{ContractRet: tronapi.ContractRetSuccess}},
		RawData: tronapi.RawData{
			Contract: []tronapi.Contract{{
				Type: tronapi.ContractTypeTriggerSmartContract,
				Parameter: tronapi.Parameter{
					Value: tronapi.ContractValue{
						ContractAddress: testContractHex,
						Data:            data,
					},
				},
			}},
		},
	}
}

func TestVerify_Accepted(t *testing.T) {
	client := &stubLedgerClient{tx: successfulTransfer(transferData(testRecipientHex, 150_000_000))}
	v := New(client, tron.NewCodec(), testPolicy(t))

	verdict := v.Verify(context.Background(), testTxID)

	if !verdict.Accepted {
		t.Fatalf("verdict rejected: %s", verdict.Reason)
	}
	if verdict.TxID != testTxID {
		t.Errorf("txID = %s, want %s", verdict.TxID, testTxID)
	}
	if verdict.AmountMicro != 150_000_000 {
		t.Errorf("amountMicro = %d, want 150000000", verdict.AmountMicro)
	}
	if verdict.Amount != 150.0 {
		t.Errorf("amount = %f, want 150.0", verdict.Amount)
	}
}

func TestVerify_MinimumIsInclusive(t *testing.T) {
	// Сумма, равная минимуму, принимается; на одну единицу меньше — нет.
	v := New(
		&stubLedgerClient{tx: successfulTransfer(transferData(testRecipientHex, 100_000_000))},
		tron.NewCodec(), testPolicy(t),
	)
	verdict := v.Verify(context.Background(), testTxID)
	if !verdict.Accepted {
		t.Fatalf("amount equal to minimum rejected: %s", verdict.Reason)
	}

	v = New(
		&stubLedgerClient{tx: successfulTransfer(transferData(testRecipientHex, 99_999_999))},
		tron.NewCodec(), testPolicy(t),
	)
	verdict = v.Verify(context.Background(), testTxID)
	if verdict.Accepted {
		t.Fatal("amount below minimum accepted")
	}
	if verdict.Reason != ReasonAmountTooLow {
		t.Fatalf("reason = %s, want %s", verdict.Reason, ReasonAmountTooLow)
	}
	if verdict.AmountMicro != 99_999_999 {
		t.Errorf("amountMicro = %d, want 99999999", verdict.AmountMicro)
	}
}

func TestVerify_Rejections(t *testing.T) {
	otherRecipient := "ffeeddccbbaa99887766554433221100ffeeddcc"

	tests := []struct {
		name   string
		client LedgerClient
		want   RejectReason
	}{
		{
			name:   "not found",
			client: &stubLedgerClient{err: tronapi.ErrTransactionNotFound},
			want:   ReasonNotFound,
		},
		{
			name:   "transport failure",
			client: &stubLedgerClient{err: errors.New("connection refused")},
			want:   ReasonTransportFailure,
		},
		{
			name: "execution failed",
			client: &stubLedgerClient{tx: &tronapi.Transaction{
				Ret: []tronapi.Result{{ContractRet: "REVERT"}},
			}},
			want: ReasonExecutionFailed,
		},
		{
			name: "no contracts",
			client: &stubLedgerClient{tx: &tronapi.Transaction{
				Ret: []tronapi.Result{{ContractRet: tronapi.ContractRetSuccess}},
			}},
			want: ReasonNotATokenTransfer,
		},
		{
			name: "plain transfer contract",
			client: &stubLedgerClient{tx: &tronapi.Transaction{
				Ret: []tronapi.Result{{ContractRet: tronapi.ContractRetSuccess}},
				RawData: tronapi.RawData{
					Contract: []tronapi.Contract{{Type: "TransferContract"}},
				},
			}},
			want: ReasonNotATokenTransfer,
		},
		{
			name: "wrong contract",
			client: func() *stubLedgerClient {
				tx := successfulTransfer(transferData(testRecipientHex, 150_000_000))
				tx.RawData.Contract[0].Parameter.Value.ContractAddress = "41" + otherRecipient
				return &stubLedgerClient{tx: tx}
			}(),
			want: ReasonWrongContract,
		},
		{
			name: "contract address not hex",
			client: func() *stubLedgerClient {
				tx := successfulTransfer(transferData(testRecipientHex, 150_000_000))
				tx.RawData.Contract[0].Parameter.Value.ContractAddress = "not-hex"
				return &stubLedgerClient{tx: tx}
			}(),
			want: ReasonWrongContract,
		},
		{
			name:   "malformed payload",
			client: &stubLedgerClient{tx: successfulTransfer("a9059cbb00")},
			want:   ReasonMalformedPayload,
		},
		{
			name: "not a transfer call",
			client: &stubLedgerClient{
				tx: successfulTransfer("deadbeef" + transferData(testRecipientHex, 150_000_000)[8:]),
			},
			want: ReasonNotATransferCall,
		},
		{
			name:   "wrong recipient",
			client: &stubLedgerClient{tx: successfulTransfer(transferData(otherRecipient, 150_000_000))},
			want:   ReasonWrongRecipient,
		},
		{
			name: "amount beyond int64",
			client: &stubLedgerClient{
				tx: successfulTransfer(
					tron.TransferSelector + strings.Repeat("0", 24) + testRecipientHex +
						strings.Repeat("f", 64),
				),
			},
			want: ReasonAmountOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(tt.client, tron.NewCodec(), testPolicy(t))

			verdict := v.Verify(context.Background(), testTxID)
			if verdict.Accepted {
				t.Fatal("verdict accepted, want rejection")
			}
			if verdict.Reason != tt.want {
				t.Fatalf("reason = %s, want %s", verdict.Reason, tt.want)
			}
		})
	}
}

func TestVerify_Deterministic(t *testing.T) {
	client := &stubLedgerClient{tx: successfulTransfer(transferData(testRecipientHex, 150_000_000))}
	v := New(client, tron.NewCodec(), testPolicy(t))

	first := v.Verify(context.Background(), testTxID)
	second := v.Verify(context.Background(), testTxID)
	if first != second {
		t.Fatalf("verdicts differ: %+v vs %+v", first, second)
	}
}
