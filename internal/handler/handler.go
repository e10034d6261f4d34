// Package handler содержит HTTP-обработчики API платёжного сервиса.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/tronpay-system/internal/i18n"
	"github.com/mmeshcher/tronpay-system/internal/middleware"
	"github.com/mmeshcher/tronpay-system/internal/model"
	"github.com/mmeshcher/tronpay-system/internal/repository"
	"github.com/mmeshcher/tronpay-system/internal/service"
	"github.com/mmeshcher/tronpay-system/internal/verifier"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, login, password string) (int64, error)
	AuthenticateUser(ctx context.Context, login, password string) (int64, error)
	OpenDeposit(userID int64) model.DepositSession
	CancelDeposit(userID int64)
	SubmitTransaction(ctx context.Context, userID int64, txHash string) (verifier.Verdict, error)
	GetBalance(ctx context.Context, userID int64) (*model.Balance, error)
	GetTransactionsByUser(ctx context.Context, userID int64) ([]model.Transaction, error)
	Spend(ctx context.Context, userID int64, amount float64) error
	ToAmount(amountMicro int64) float64
}

// DepositInfo содержит параметры политики депозита, отображаемые пользователю.
type DepositInfo struct {
	Address    string
	Minimum    float64
	SessionTTL time.Duration
}

// Handler реализует HTTP-обработчики API платёжного сервиса.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	deposit        DepositInfo
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, deposit DepositInfo) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		deposit:        deposit,
	}
}

func (h *Handler) catalog(r *http.Request) i18n.Catalog {
	return i18n.ForLocale(r.Header.Get("Accept-Language"))
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Login == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	userID, err := h.service.RegisterUser(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
			return
		}
		h.logger.Error("register user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

// Login выполняет аутентификацию пользователя и установку cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Login == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	userID, err := h.service.AuthenticateUser(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		h.logger.Error("login user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

type depositResponse struct {
	Address   string  `json:"address"`
	Minimum   float64 `json:"minimum"`
	ExpiresAt string  `json:"expires_at"`
	Message   string  `json:"message"`
}

// OpenDeposit открывает сессию депозита и возвращает адрес для перевода.
func (h *Handler) OpenDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	sess := h.service.OpenDeposit(userID)

	cat := h.catalog(r)
	message := cat.Template(i18n.MsgDepositInfo).Render(map[string]string{
		"address": h.deposit.Address,
		"minimum": formatAmount(h.deposit.Minimum),
		"minutes": strconv.Itoa(int(h.deposit.SessionTTL.Minutes())),
	})

	writeJSON(w, http.StatusOK, depositResponse{
		Address:   h.deposit.Address,
		Minimum:   h.deposit.Minimum,
		ExpiresAt: sess.ExpiresAt.Format(time.RFC3339),
		Message:   message,
	})
}

// CancelDeposit закрывает сессию депозита пользователя.
func (h *Handler) CancelDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	h.service.CancelDeposit(userID)
	w.WriteHeader(http.StatusNoContent)
}

type verifyRequest struct {
	TxHash string `json:"tx_hash"`
}

type verdictResponse struct {
	Status  string   `json:"status"`
	TxID    string   `json:"tx_id,omitempty"`
	Amount  *float64 `json:"amount,omitempty"`
	Reason  string   `json:"reason,omitempty"`
	Message string   `json:"message"`
}

// VerifyDeposit принимает хеш транзакции и возвращает вердикт проверки.
func (h *Handler) VerifyDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	cat := h.catalog(r)

	verdict, err := h.service.SubmitTransaction(r.Context(), userID, req.TxHash)
	if err != nil {
		if errors.Is(err, service.ErrNoDepositSession) {
			writeJSON(w, http.StatusConflict, verdictResponse{
				Status:  "ignored",
				Message: cat.Template(i18n.MsgNoDepositSession).Render(nil),
			})
			return
		}
		h.logger.Error("verify deposit error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if verdict.Accepted {
		amount := verdict.Amount
		writeJSON(w, http.StatusOK, verdictResponse{
			Status: "accepted",
			TxID:   verdict.TxID,
			Amount: &amount,
			Message: cat.Template(i18n.MsgVerificationSuccess).Render(map[string]string{
				"amount": formatAmount(verdict.Amount),
			}),
		})
		return
	}

	resp := verdictResponse{
		Status: "rejected",
		TxID:   verdict.TxID,
		Reason: verdict.Reason.String(),
		Message: cat.Template(i18n.MsgVerificationFailed).Render(map[string]string{
			"reason": h.reasonText(cat, verdict),
		}),
	}
	if verdict.Reason == verifier.ReasonAmountTooLow {
		amount := verdict.Amount
		resp.Amount = &amount
	}

	writeJSON(w, http.StatusUnprocessableEntity, resp)
}

func (h *Handler) reasonText(cat i18n.Catalog, verdict verifier.Verdict) string {
	switch verdict.Reason {
	case verifier.ReasonInvalidFormat:
		return cat.Template(i18n.MsgInvalidTxHash).Render(nil)
	case verifier.ReasonNotFound:
		return cat.Template(i18n.MsgReasonNotFound).Render(nil)
	case verifier.ReasonTransportFailure:
		return cat.Template(i18n.MsgReasonTransportFailure).Render(nil)
	case verifier.ReasonExecutionFailed:
		return cat.Template(i18n.MsgReasonExecutionFailed).Render(nil)
	case verifier.ReasonNotATokenTransfer:
		return cat.Template(i18n.MsgReasonNotATokenTransfer).Render(nil)
	case verifier.ReasonWrongContract:
		return cat.Template(i18n.MsgReasonWrongContract).Render(nil)
	case verifier.ReasonNotATransferCall:
		return cat.Template(i18n.MsgReasonNotATransferCall).Render(nil)
	case verifier.ReasonMalformedPayload:
		return cat.Template(i18n.MsgReasonMalformedPayload).Render(nil)
	case verifier.ReasonWrongRecipient:
		return cat.Template(i18n.MsgReasonWrongRecipient).Render(nil)
	case verifier.ReasonAmountTooLow:
		return cat.Template(i18n.MsgReasonAmountTooLow).Render(map[string]string{
			"amount":  formatAmount(verdict.Amount),
			"minimum": formatAmount(h.deposit.Minimum),
		})
	case verifier.ReasonAmountOverflow:
		return cat.Template(i18n.MsgReasonAmountOverflow).Render(nil)
	case verifier.ReasonDuplicateTransaction:
		return cat.Template(i18n.MsgReasonDuplicateTransaction).Render(nil)
	default:
		return verdict.Reason.String()
	}
}

// GetBalance возвращает баланс текущего пользователя.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	balance, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		h.logger.Error("get balance error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, balance)
}

type transactionResponse struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	TxHash      string  `json:"tx_hash,omitempty"`
	Status      string  `json:"status"`
	ProcessedAt string  `json:"processed_at"`
}

// GetTransactions возвращает историю операций текущего пользователя.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	transactions, err := h.service.GetTransactionsByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("get transactions error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(transactions) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]transactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		resp = append(resp, transactionResponse{
			Type:        string(tx.Type),
			Amount:      h.service.ToAmount(tx.AmountMicro),
			TxHash:      tx.SourceTxID,
			Status:      string(tx.Status),
			ProcessedAt: tx.ProcessedAt.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type spendRequest struct {
	Amount float64 `json:"amount"`
}

// Spend списывает сумму с баланса текущего пользователя.
func (h *Handler) Spend(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req spendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	err := h.service.Spend(r.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, service.ErrNonPositiveAmount) {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if errors.Is(err, repository.ErrInsufficientBalance) {
			http.Error(w, http.StatusText(http.StatusPaymentRequired), http.StatusPaymentRequired)
			return
		}
		h.logger.Error("spend error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
