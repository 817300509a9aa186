package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"centavo/internal/domain/account"
	"centavo/internal/domain/creditcard"
	"centavo/internal/domain/tag"
	"centavo/internal/domain/transaction"
)

type TransactionHandler struct {
	service  *transaction.Service
	accounts account.Repository
	cards    creditcard.Repository
}

func NewTransactionHandler(service *transaction.Service, accounts account.Repository, cards creditcard.Repository) *TransactionHandler {
	return &TransactionHandler{
		service:  service,
		accounts: accounts,
		cards:    cards,
	}
}

// Monetary values cross this boundary only as decimal strings; dates as
// RFC 3339 (date-only accepted on input).
type CreateTransactionRequest struct {
	Value         string  `json:"value"`
	Date          string  `json:"date"`
	Type          string  `json:"transactionType"`
	Source        string  `json:"transactionSource"`
	AccountID     *int64  `json:"accountId,omitempty"`
	CreditCardID  *int64  `json:"creditCardId,omitempty"`
	CategoryID    *int64  `json:"categoryId,omitempty"`
	SubcategoryID *int64  `json:"subcategoryId,omitempty"`
	IsInstallment bool    `json:"isInstallment"`
	TotalMonths   *int    `json:"totalMonths,omitempty"`
	IsRecurring   bool    `json:"isRecurring"`
	PaymentDay    *int    `json:"paymentDay,omitempty"`
	Observation   *string `json:"observation,omitempty"`
	TagIDs        []int64 `json:"tags,omitempty"`
}

type UpdateTransactionRequest struct {
	Value         *string `json:"value,omitempty"`
	Date          *string `json:"date,omitempty"`
	Type          *string `json:"transactionType,omitempty"`
	Source        *string `json:"transactionSource,omitempty"`
	AccountID     *int64  `json:"accountId,omitempty"`
	CreditCardID  *int64  `json:"creditCardId,omitempty"`
	CategoryID    *int64  `json:"categoryId,omitempty"`
	SubcategoryID *int64  `json:"subcategoryId,omitempty"`
	IsInstallment *bool   `json:"isInstallment,omitempty"`
	TotalMonths   *int    `json:"totalMonths,omitempty"`
	IsRecurring   *bool   `json:"isRecurring,omitempty"`
	PaymentDay    *int    `json:"paymentDay,omitempty"`
	Active        *bool   `json:"active,omitempty"`
	Observation   *string `json:"observation,omitempty"`
	TagIDs        []int64 `json:"tags,omitempty"`
}

// HandleTransactions serves POST (create) and GET (list) on /api/transactions.
func (h *TransactionHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *TransactionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding create transaction request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Value == "" || req.Date == "" {
		http.Error(w, "value and date are required", http.StatusBadRequest)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		http.Error(w, "Invalid date format (use RFC 3339 or YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	params := transaction.CreateParams{
		Value:         req.Value,
		Date:          date,
		Type:          transaction.Type(req.Type),
		Source:        transaction.Source(req.Source),
		AccountID:     req.AccountID,
		CreditCardID:  req.CreditCardID,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		IsInstallment: req.IsInstallment,
		TotalMonths:   req.TotalMonths,
		IsRecurring:   req.IsRecurring,
		PaymentDay:    req.PaymentDay,
		Observation:   req.Observation,
		TagIDs:        req.TagIDs,
	}

	if err := h.authorizeHolder(r.Context(), userID, params.Source, params.AccountID, params.CreditCardID); err != nil {
		respondDomainError(w, err, "create transaction")
		return
	}

	created, err := h.service.Create(r.Context(), params)
	if err != nil {
		respondDomainError(w, err, "create transaction")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *TransactionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit, offset := parsePagination(r)

	if accountIDStr := r.URL.Query().Get("accountId"); accountIDStr != "" {
		accountID, err := strconv.ParseInt(accountIDStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid accountId", http.StatusBadRequest)
			return
		}

		if err := h.authorizeHolder(r.Context(), userID, transaction.SourceAccount, &accountID, nil); err != nil {
			respondDomainError(w, err, "list transactions")
			return
		}

		transactions, err := h.service.ListByAccount(r.Context(), accountID, limit, offset)
		if err != nil {
			log.Printf("Error listing transactions for account %d: %v", accountID, err)
			http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
			return
		}
		respondJSON(w, transactions)
		return
	}

	if cardIDStr := r.URL.Query().Get("creditCardId"); cardIDStr != "" {
		cardID, err := strconv.ParseInt(cardIDStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid creditCardId", http.StatusBadRequest)
			return
		}

		if err := h.authorizeHolder(r.Context(), userID, transaction.SourceCreditCard, nil, &cardID); err != nil {
			respondDomainError(w, err, "list transactions")
			return
		}

		transactions, err := h.service.ListByCreditCard(r.Context(), cardID, limit, offset)
		if err != nil {
			log.Printf("Error listing transactions for credit card %d: %v", cardID, err)
			http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
			return
		}
		respondJSON(w, transactions)
		return
	}

	http.Error(w, "accountId or creditCardId is required", http.StatusBadRequest)
}

// HandleTransactionByID serves GET, PATCH and DELETE on /api/transactions/{id}.
// Every operation resolves the acting user and checks that the transaction's
// balance holder belongs to them before touching anything.
func (h *TransactionHandler) HandleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, id, userID)
	case http.MethodPatch:
		h.handleUpdate(w, r, id, userID)
	case http.MethodDelete:
		h.handleDelete(w, r, id, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *TransactionHandler) handleGet(w http.ResponseWriter, r *http.Request, id, userID int64) {
	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err, "get transaction")
		return
	}

	if err := h.authorizeHolder(r.Context(), userID, t.Source, t.AccountID, t.CreditCardID); err != nil {
		respondDomainError(w, err, "get transaction")
		return
	}
	respondJSON(w, t)
}

func (h *TransactionHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id, userID int64) {
	var req UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding update transaction request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	patch := transaction.UpdateParams{
		Value:         req.Value,
		AccountID:     req.AccountID,
		CreditCardID:  req.CreditCardID,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		IsInstallment: req.IsInstallment,
		TotalMonths:   req.TotalMonths,
		IsRecurring:   req.IsRecurring,
		PaymentDay:    req.PaymentDay,
		Active:        req.Active,
		Observation:   req.Observation,
		TagIDs:        req.TagIDs,
	}

	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			http.Error(w, "Invalid date format (use RFC 3339 or YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		patch.Date = &date
	}
	if req.Type != nil {
		t := transaction.Type(*req.Type)
		patch.Type = &t
	}
	if req.Source != nil {
		s := transaction.Source(*req.Source)
		patch.Source = &s
	}

	current, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err, "update transaction")
		return
	}
	if err := h.authorizeHolder(r.Context(), userID, current.Source, current.AccountID, current.CreditCardID); err != nil {
		respondDomainError(w, err, "update transaction")
		return
	}

	// A patch may move the transaction to another holder; that holder must
	// belong to the caller too.
	nextSource := current.Source
	if patch.Source != nil {
		nextSource = *patch.Source
	}
	nextAccountID := current.AccountID
	if patch.AccountID != nil {
		nextAccountID = patch.AccountID
	}
	nextCreditCardID := current.CreditCardID
	if patch.CreditCardID != nil {
		nextCreditCardID = patch.CreditCardID
	}
	if err := h.authorizeHolder(r.Context(), userID, nextSource, nextAccountID, nextCreditCardID); err != nil {
		respondDomainError(w, err, "update transaction")
		return
	}

	updated, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		respondDomainError(w, err, "update transaction")
		return
	}
	respondJSON(w, updated)
}

func (h *TransactionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id, userID int64) {
	current, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err, "delete transaction")
		return
	}
	if err := h.authorizeHolder(r.Context(), userID, current.Source, current.AccountID, current.CreditCardID); err != nil {
		respondDomainError(w, err, "delete transaction")
		return
	}

	deletedID, err := h.service.Delete(r.Context(), id)
	if err != nil {
		respondDomainError(w, err, "delete transaction")
		return
	}
	respondJSON(w, map[string]int64{"id": deletedID})
}

// authorizeHolder confirms the referenced balance holder exists and belongs
// to the acting user. Missing holders surface as not-found, foreign ones as
// account.ErrForbidden.
func (h *TransactionHandler) authorizeHolder(ctx context.Context, userID int64, source transaction.Source, accountID, creditCardID *int64) error {
	if source == transaction.SourceCreditCard {
		if creditCardID == nil {
			return creditcard.ErrCreditCardNotFound
		}
		card, err := h.cards.GetByID(ctx, *creditCardID)
		if err != nil {
			return err
		}
		if card == nil {
			return creditcard.ErrCreditCardNotFound
		}
		if card.UserID != userID {
			return account.ErrForbidden
		}
		return nil
	}

	if accountID == nil {
		return account.ErrAccountNotFound
	}
	acc, err := h.accounts.GetByID(ctx, *accountID)
	if err != nil {
		return err
	}
	if acc == nil {
		return account.ErrAccountNotFound
	}
	if acc.UserID != userID {
		return account.ErrForbidden
	}
	return nil
}

// respondDomainError maps typed domain errors to HTTP status codes.
// Anything unrecognized is a store-level failure: logged with detail,
// surfaced generically.
func respondDomainError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, transaction.ErrTransactionNotFound),
		errors.Is(err, account.ErrAccountNotFound),
		errors.Is(err, creditcard.ErrCreditCardNotFound),
		errors.Is(err, tag.ErrTagNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, account.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, transaction.ErrCategoryOrSubcategoryRequired),
		errors.Is(err, transaction.ErrCategoryNotFoundOrInactive),
		errors.Is(err, transaction.ErrSubcategoryNotFoundOrInactive),
		errors.Is(err, transaction.ErrInvalidType),
		errors.Is(err, transaction.ErrInvalidSource),
		errors.Is(err, transaction.ErrHolderMismatch),
		errors.Is(err, transaction.ErrInvalidValue):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		log.Printf("Error during %s: %v", op, err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

// userIDFromRequest reads the acting user from the X-User-ID header.
// Authentication lives in front of this service; the header is the shim
// the gateway fills in.
func userIDFromRequest(r *http.Request) (int64, bool) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
