package http

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"pocketflow/internal/calculator"
	"pocketflow/internal/ledger"
	"pocketflow/internal/models"
)

type friendDTO struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	TotalOwed   float64       `json:"total_owed"`
	Color       string        `json:"color"`
	PhoneNumber string        `json:"phone_number,omitempty"`
	History     []friendTxDTO `json:"history,omitempty"`
}

type friendTxDTO struct {
	ID     string    `json:"id"`
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
	Type   string    `json:"type"`
	Note   string    `json:"note"`
}

func toFriendDTO(f models.Friend, withHistory bool) friendDTO {
	dto := friendDTO{
		ID:          f.ID,
		Name:        f.Name,
		TotalOwed:   f.TotalOwed,
		Color:       f.Color,
		PhoneNumber: f.PhoneNumber,
	}
	if withHistory {
		history := append([]models.FriendTransaction(nil), f.History...)
		sort.SliceStable(history, func(i, j int) bool { return history[i].Date.After(history[j].Date) })
		dto.History = make([]friendTxDTO, len(history))
		for i, e := range history {
			dto.History[i] = friendTxDTO{ID: e.ID, Date: e.Date, Amount: e.Amount, Type: e.Type.String(), Note: e.Note}
		}
	}
	return dto
}

// ledgerError maps debt-ledger errors onto status codes.
func ledgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrFriendNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrBlankName):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	friends := s.store.Friends()
	if topParam := r.URL.Query().Get("top"); topParam != "" {
		n, err := strconv.Atoi(topParam)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, errors.New("top must be a positive integer"))
			return
		}
		friends = calculator.TopFriends(friends, n)
	} else {
		sort.SliceStable(friends, func(i, j int) bool { return friends[i].TotalOwed > friends[j].TotalOwed })
	}

	out := make([]friendDTO, len(friends))
	for i, f := range friends {
		out[i] = toFriendDTO(f, false)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"friends":      out,
		"contri_total": calculator.ContriTotal(s.store.Friends()),
	})
}

func (s *Server) handleGetFriend(w http.ResponseWriter, r *http.Request) {
	friend, ok := s.store.Friend(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, ledger.ErrFriendNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toFriendDTO(friend, true))
}

func (s *Server) handleAddDebt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string     `json:"name"`
		PhoneNumber string     `json:"phone_number"`
		Amount      float64    `json:"amount"`
		Date        *time.Time `json:"date"`
		Note        string     `json:"note"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	if err := s.ledger.AddFriendDebt(req.Name, req.PhoneNumber, req.Amount, date, req.Note); err != nil {
		ledgerError(w, err)
		return
	}
	friend, _ := s.store.FindFriend(req.Name)
	writeJSON(w, http.StatusCreated, toFriendDTO(friend, true))
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
		Note   string  `json:"note"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id := r.PathValue("id")
	if err := s.ledger.RecordPayment(id, req.Amount, req.Note); err != nil {
		ledgerError(w, err)
		return
	}
	friend, _ := s.store.Friend(id)
	writeJSON(w, http.StatusOK, toFriendDTO(friend, true))
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
