package http

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"pocketflow/internal/calculator"
	"pocketflow/internal/models"
	"pocketflow/internal/service"
)

type shareDTO struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phone_number,omitempty"`
	Amount      float64 `json:"amount"`
	IsLocked    bool    `json:"is_locked"`
}

func toShareDTOs(shares []models.SplitShare) []shareDTO {
	out := make([]shareDTO, len(shares))
	for i, s := range shares {
		out[i] = shareDTO{ID: s.ID, Name: s.Name, PhoneNumber: s.PhoneNumber, Amount: s.Amount, IsLocked: s.IsLocked}
	}
	return out
}

func fromShareDTOs(dtos []shareDTO) []models.SplitShare {
	out := make([]models.SplitShare, len(dtos))
	for i, d := range dtos {
		out[i] = models.SplitShare{ID: d.ID, Name: d.Name, PhoneNumber: d.PhoneNumber, Amount: d.Amount, IsLocked: d.IsLocked}
	}
	return out
}

type transactionDTO struct {
	ID                 string     `json:"id"`
	Category           string     `json:"category"`
	Amount             float64    `json:"amount"`
	Date               time.Time  `json:"date"`
	IsCredit           bool       `json:"is_credit"`
	Note               string     `json:"note"`
	DescriptionPending bool       `json:"description_pending"`
	Splits             []shareDTO `json:"splits,omitempty"`
}

func toTransactionDTO(tx models.Transaction) transactionDTO {
	return transactionDTO{
		ID:                 tx.ID,
		Category:           tx.Category,
		Amount:             tx.Amount,
		Date:               tx.Date,
		IsCredit:           tx.IsCredit,
		Note:               tx.Note,
		DescriptionPending: tx.IsDescriptionPending(),
		Splits:             toShareDTOs(tx.Splits),
	}
}

// flowError maps entry-flow errors onto status codes: validation failures
// are caller-correctable 422s, wrong-state calls are conflicts.
func flowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrFlowState):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, service.ErrCategoryRequired), errors.Is(err, service.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleStartEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount   float64 `json:"amount"`
		IsCredit bool    `json:"is_credit"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tx, err := s.flow.Start(req.Amount, req.IsCredit)
	if err != nil {
		flowError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

func (s *Server) handleCancelEntry(w http.ResponseWriter, _ *http.Request) {
	if err := s.flow.Cancel(); err != nil {
		flowError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinalizeEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category *string `json:"category"`
		Note     *string `json:"note"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Category != nil {
		if err := s.flow.SetCategory(*req.Category); err != nil {
			flowError(w, err)
			return
		}
	}
	if req.Note != nil {
		if err := s.flow.SetNote(*req.Note); err != nil {
			flowError(w, err)
			return
		}
	}
	tx, err := s.flow.Finalize()
	if err != nil {
		flowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

func (s *Server) handleSplitMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var err error
	if req.Enabled {
		err = s.flow.EnableSplit()
	} else {
		err = s.flow.DisableSplit()
	}
	if err != nil {
		flowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shares": toShareDTOs(s.flow.Shares())})
}

func (s *Server) handleAddShare(w http.ResponseWriter, _ *http.Request) {
	id, err := s.flow.AddShare()
	if err != nil {
		flowError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "shares": toShareDTOs(s.flow.Shares())})
}

func (s *Server) handleEditShare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string  `json:"name"`
		PhoneNumber *string  `json:"phone_number"`
		Amount      *float64 `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id := r.PathValue("id")
	if req.Name != nil {
		phone := ""
		if req.PhoneNumber != nil {
			phone = *req.PhoneNumber
		}
		if err := s.flow.SetShareName(id, *req.Name, phone); err != nil {
			flowError(w, err)
			return
		}
	}
	if req.Amount != nil {
		if err := s.flow.SetShareAmount(id, *req.Amount); err != nil {
			flowError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"shares": toShareDTOs(s.flow.Shares())})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.store.Transactions()
	if windowParam := r.URL.Query().Get("window"); windowParam != "" {
		txs = calculator.FilterByWindow(txs, time.Now(), calculator.ParseWindow(windowParam))
	} else {
		sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })
	}
	out := make([]transactionDTO, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionDTO(tx)
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category  string     `json:"category"`
		Note      string     `json:"note"`
		SplitMode bool       `json:"split_mode"`
		Shares    []shareDTO `json:"shares"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id := r.PathValue("id")
	err := s.editor.Update(id, req.Category, req.Note, req.SplitMode, fromShareDTOs(req.Shares))
	switch {
	case errors.Is(err, service.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, err)
		return
	case errors.Is(err, service.ErrCategoryRequired):
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	tx, _ := s.store.Transaction(id)
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

func (s *Server) handleBalance(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{
		"balance":      calculator.Balance(s.store.Transactions()),
		"contri_total": calculator.ContriTotal(s.store.Friends()),
	})
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	window := calculator.ParseWindow(r.URL.Query().Get("window"))
	filtered := calculator.FilterByWindow(s.store.Transactions(), time.Now(), window)
	breakdown := calculator.CategoryBreakdown(filtered, s.store.Friends())

	resp := map[string]any{"slices": breakdown}
	if cursorParam := r.URL.Query().Get("cursor"); cursorParam != "" {
		cursor, err := parseFloat(cursorParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if hit, ok := calculator.ResolveSliceHit(breakdown, cursor); ok {
			resp["hit"] = hit
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Total  float64    `json:"total"`
		Shares []shareDTO `json:"shares"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	shares := fromShareDTOs(req.Shares)
	calculator.RecalculateSplits(req.Total, shares)
	writeJSON(w, http.StatusOK, map[string]any{"shares": toShareDTOs(shares)})
}
