// Package tronapi предоставляет клиент для read API сети TRON.
package tronapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Значения-сентинелы полей записи транзакции, на которые опирается проверка платежа.
const (
	// ContractRetSuccess — статус успешно исполненной транзакции.
	ContractRetSuccess = "SUCCESS"
	// ContractTypeTriggerSmartContract — тип вызова смарт-контракта.
	ContractTypeTriggerSmartContract = "TriggerSmartContract"
)

// ErrTransactionNotFound возвращается, если сеть не знает транзакцию с таким
// идентификатором. Возможно, транзакция ещё не распространилась по узлам.
var ErrTransactionNotFound = errors.New("transaction not found")

// Client инкапсулирует HTTP-взаимодействие с узлом сети TRON.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Transaction описывает запись транзакции, возвращаемую узлом.
type Transaction struct {
	TxID    string   `json:"txID"`
	Ret     []Result `json:"ret"`
	RawData RawData  `json:"raw_data"`
}

// Result содержит результат исполнения транзакции.
type Result struct {
	ContractRet string `json:"contractRet"`
}

// RawData содержит список вызовов контрактов транзакции.
type RawData struct {
	Contract []Contract `json:"contract"`
}

// Contract описывает один вызов контракта.
type Contract struct {
	Type      string    `json:"type"`
	Parameter Parameter `json:"parameter"`
}

// Parameter содержит параметры вызова контракта.
type Parameter struct {
	Value ContractValue `json:"value"`
}

// ContractValue содержит адрес вызванного контракта и hex-строку call data.
type ContractValue struct {
	OwnerAddress    string `json:"owner_address"`
	ContractAddress string `json:"contract_address"`
	Data            string `json:"data"`
}

// NewClient создаёт HTTP-клиент для обращения к узлу сети по указанному адресу.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type transactionRequest struct {
	Value string `json:"value"`
}

// GetTransactionByID запрашивает у узла запись транзакции по её идентификатору.
// Выполняет ровно один сетевой вызов; политика повторов остаётся за вызывающей
// стороной.
func (c *Client) GetTransactionByID(ctx context.Context, txID string) (*Transaction, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("tron api client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	url := base + "/wallet/gettransactionbyid"

	body, err := json.Marshal(transactionRequest{Value: txID})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var tx Transaction
	if err := json.NewDecoder(resp.Body).Decode(&tx); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// Узел отвечает пустым объектом на неизвестный идентификатор.
	if len(tx.Ret) == 0 {
		return nil, ErrTransactionNotFound
	}

	return &tx, nil
}
