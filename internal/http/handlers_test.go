package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pocketflow/internal/ledger"
	"pocketflow/internal/service"
	"pocketflow/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	st := store.New()
	lg := ledger.New(st)
	srv := NewServer("0", st, lg, service.NewEntryFlow(st, lg, nil), service.NewEditor(st, lg, nil))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp, decoded
}

func TestEntryFlowOverHTTP(t *testing.T) {
	ts, st := newTestServer(t)

	resp, body := doJSON(t, "POST", ts.URL+"/api/v1/entries", map[string]any{"amount": 150.0})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start status = %d, want 201", resp.StatusCode)
	}
	if body["category"] != "Select Category" {
		t.Errorf("category = %v, want the sentinel", body["category"])
	}
	if len(st.Transactions()) != 1 {
		t.Fatal("placeholder not in store after start")
	}

	// Finalizing without a category is a 422 and the flow stays open.
	resp, _ = doJSON(t, "POST", ts.URL+"/api/v1/entries/current/finalize", map[string]any{})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("finalize without category = %d, want 422", resp.StatusCode)
	}

	resp, body = doJSON(t, "POST", ts.URL+"/api/v1/entries/current/finalize", map[string]any{
		"category": "Food",
		"note":     "groceries",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("finalize status = %d, want 200", resp.StatusCode)
	}
	if body["category"] != "Food" || body["note"] != "groceries" {
		t.Errorf("finalized transaction = %v", body)
	}

	// A second entry can be cancelled, which deletes the placeholder.
	doJSON(t, "POST", ts.URL+"/api/v1/entries", map[string]any{"amount": 20.0})
	resp, _ = doJSON(t, "DELETE", ts.URL+"/api/v1/entries/current", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("cancel status = %d, want 204", resp.StatusCode)
	}
	if got := len(st.Transactions()); got != 1 {
		t.Errorf("store has %d transactions after cancel, want 1", got)
	}

	// Nothing in progress now.
	resp, _ = doJSON(t, "DELETE", ts.URL+"/api/v1/entries/current", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("idle cancel = %d, want 409", resp.StatusCode)
	}
}

func TestSplitEntryOverHTTP(t *testing.T) {
	ts, st := newTestServer(t)

	doJSON(t, "POST", ts.URL+"/api/v1/entries", map[string]any{"amount": 100.0})

	resp, body := doJSON(t, "PUT", ts.URL+"/api/v1/entries/current/split", map[string]any{"enabled": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("enable split = %d, want 200", resp.StatusCode)
	}
	shares := body["shares"].([]any)
	if len(shares) != 1 {
		t.Fatalf("seeded %d shares, want 1", len(shares))
	}
	seed := shares[0].(map[string]any)
	if seed["amount"].(float64) != 50 {
		t.Errorf("seed amount = %v, want half the total", seed["amount"])
	}

	shareID := seed["id"].(string)
	resp, _ = doJSON(t, "PATCH", ts.URL+"/api/v1/entries/current/shares/"+shareID, map[string]any{
		"name": "Sam",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("edit share = %d, want 200", resp.StatusCode)
	}

	resp, body = doJSON(t, "POST", ts.URL+"/api/v1/entries/current/finalize", map[string]any{
		"note": "dinner",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("finalize split = %d, want 200", resp.StatusCode)
	}
	if body["category"] != "Contri" {
		t.Errorf("category = %v, want Contri", body["category"])
	}

	if _, ok := st.FindFriend("Sam"); !ok {
		t.Error("split finalize did not create the friend")
	}
}

func TestDebtAndPaymentOverHTTP(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, "POST", ts.URL+"/api/v1/friends/debts", map[string]any{
		"name":   "Rahul",
		"amount": 500.0,
		"note":   "Concert Ticket",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add debt = %d, want 201", resp.StatusCode)
	}
	friendID := body["id"].(string)
	if body["total_owed"].(float64) != 500 {
		t.Errorf("total_owed = %v, want 500", body["total_owed"])
	}

	resp, _ = doJSON(t, "POST", ts.URL+"/api/v1/friends/debts", map[string]any{
		"name":   "Rahul",
		"amount": 0.0,
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("zero debt = %d, want 422", resp.StatusCode)
	}

	resp, body = doJSON(t, "POST", ts.URL+"/api/v1/friends/"+friendID+"/payments", map[string]any{
		"amount": 200.0,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("payment = %d, want 200", resp.StatusCode)
	}
	if body["total_owed"].(float64) != 300 {
		t.Errorf("total_owed after payment = %v, want 300", body["total_owed"])
	}
	history := body["history"].([]any)
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	latest := history[0].(map[string]any)
	if latest["type"] != "payment" || latest["note"] != "Paid Back" {
		t.Errorf("newest history entry = %v, want default-noted payment", latest)
	}

	resp, _ = doJSON(t, "POST", ts.URL+"/api/v1/friends/missing/payments", map[string]any{"amount": 10.0})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown friend payment = %d, want 404", resp.StatusCode)
	}
}

func TestBreakdownIncludesContri(t *testing.T) {
	ts, _ := newTestServer(t)

	doJSON(t, "POST", ts.URL+"/api/v1/friends/debts", map[string]any{"name": "Aditya", "amount": 200.0})

	resp, body := doJSON(t, "GET", ts.URL+"/api/v1/breakdown", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("breakdown = %d, want 200", resp.StatusCode)
	}
	slices := body["slices"].([]any)
	if len(slices) != 1 {
		t.Fatalf("got %d slices, want the Contri bucket alone", len(slices))
	}
	contri := slices[0].(map[string]any)
	if contri["category"] != "Contri" || contri["amount"].(float64) != 200 {
		t.Errorf("contri slice = %v", contri)
	}

	// Cursor hit resolution on the single slice.
	resp, body = doJSON(t, "GET", ts.URL+"/api/v1/breakdown?cursor=100", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("breakdown with cursor = %d, want 200", resp.StatusCode)
	}
	hit, ok := body["hit"].(map[string]any)
	if !ok || hit["category"] != "Contri" {
		t.Errorf("hit = %v, want the Contri slice", body["hit"])
	}
}

func TestBalanceEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	doJSON(t, "POST", ts.URL+"/api/v1/entries", map[string]any{"amount": 1000.0, "is_credit": true})
	doJSON(t, "POST", ts.URL+"/api/v1/entries/current/finalize", map[string]any{})
	doJSON(t, "POST", ts.URL+"/api/v1/entries", map[string]any{"amount": 150.0})
	doJSON(t, "POST", ts.URL+"/api/v1/entries/current/finalize", map[string]any{"category": "Food"})

	resp, body := doJSON(t, "GET", ts.URL+"/api/v1/balance", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("balance = %d, want 200", resp.StatusCode)
	}
	if body["balance"].(float64) != 850 {
		t.Errorf("balance = %v, want 850", body["balance"])
	}
}

func TestRecalculateEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, "POST", ts.URL+"/api/v1/splits/recalculate", map[string]any{
		"total": 100.0,
		"shares": []map[string]any{
			{"id": "a", "name": "Sam", "amount": 30.0, "is_locked": true},
			{"id": "b", "name": "Priya", "amount": 0.0, "is_locked": false},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recalculate = %d, want 200", resp.StatusCode)
	}
	shares := body["shares"].([]any)
	locked := shares[0].(map[string]any)
	unlocked := shares[1].(map[string]any)
	if locked["amount"].(float64) != 30 {
		t.Errorf("locked share = %v, want untouched 30", locked["amount"])
	}
	// remaining 70 over one unlocked participant plus the payer slot
	if got := unlocked["amount"].(float64); got < 34.9 || got > 35.1 {
		t.Errorf("unlocked share = %v, want 35", got)
	}
}

func TestUpdateTransactionOverHTTP(t *testing.T) {
	ts, st := newTestServer(t)

	doJSON(t, "POST", ts.URL+"/api/v1/entries", map[string]any{"amount": 80.0})
	doJSON(t, "POST", ts.URL+"/api/v1/entries/current/finalize", map[string]any{"category": "Food"})
	txID := st.Transactions()[0].ID

	resp, body := doJSON(t, "PUT", ts.URL+"/api/v1/transactions/"+txID, map[string]any{
		"category": "Travel",
		"note":     "cab fare",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update = %d, want 200", resp.StatusCode)
	}
	if body["category"] != "Travel" || body["note"] != "cab fare" {
		t.Errorf("updated transaction = %v", body)
	}

	resp, _ = doJSON(t, "PUT", ts.URL+"/api/v1/transactions/missing", map[string]any{
		"category": "Travel",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown transaction update = %d, want 404", resp.StatusCode)
	}
}

func TestListTransactionsWindow(t *testing.T) {
	ts, _ := newTestServer(t)

	for i, amount := range []float64{10, 20, 30} {
		doJSON(t, "POST", ts.URL+"/api/v1/entries", map[string]any{"amount": amount})
		doJSON(t, "POST", ts.URL+"/api/v1/entries/current/finalize", map[string]any{
			"category": fmt.Sprintf("Cat%d", i),
		})
	}

	resp, body := doJSON(t, "GET", ts.URL+"/api/v1/transactions?window=7d", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list = %d, want 200", resp.StatusCode)
	}
	txs := body["transactions"].([]any)
	if len(txs) != 3 {
		t.Fatalf("got %d transactions, want 3", len(txs))
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := doJSON(t, "GET", ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", resp.StatusCode, body)
	}
}
