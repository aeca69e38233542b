package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerbook/pokerbook/internal/settlement"
)

const (
	playerA = "3f6f0a52-6d1e-4c8e-9a47-1c2b3d4e5f01"
	playerB = "3f6f0a52-6d1e-4c8e-9a47-1c2b3d4e5f02"
)

func ptr[T any](v T) *T { return &v }

func TestEntry_Profit(t *testing.T) {
	assert.Equal(t, 0.0, (&Entry{BuyIn: 20}).Profit())
	assert.Equal(t, 25.0, (&Entry{BuyIn: 20, CashOut: ptr(45.0)}).Profit())
	assert.Equal(t, -20.0, (&Entry{BuyIn: 20, CashOut: ptr(0.0)}).Profit())
}

func TestSession_SettlementEntries(t *testing.T) {
	s := &Session{Entries: []*Entry{
		{PlayerID: "a", PlayerName: "Ann", BuyIn: 20, CashOut: ptr(40.0)},
		{PlayerID: "b", PlayerName: "Bo", BuyIn: 20, CashOut: ptr(0.0)},
	}}

	entries, err := s.SettlementEntries()
	require.NoError(t, err)
	assert.Equal(t, []settlement.Entry{
		{PlayerID: "a", PlayerName: "Ann", BuyIn: 20, CashOut: 40},
		{PlayerID: "b", PlayerName: "Bo", BuyIn: 20, CashOut: 0},
	}, entries)

	s.Entries = append(s.Entries, &Entry{PlayerID: "c", PlayerName: "Cy", BuyIn: 20})
	_, err = s.SettlementEntries()
	assert.ErrorIs(t, err, ErrMissingCashOut)
}

func TestSession_EntryAndTotals(t *testing.T) {
	s := &Session{Entries: []*Entry{
		{PlayerID: "a", BuyIn: 40, CashOut: ptr(10.0)},
		{PlayerID: "b", BuyIn: 20},
	}}

	assert.Same(t, s.Entries[1], s.Entry("b"))
	assert.Nil(t, s.Entry("z"))

	buyIns, cashOuts := s.Totals()
	assert.Equal(t, 60.0, buyIns)
	assert.Equal(t, 10.0, cashOuts)
}

func TestCreateSessionRequest_Validate(t *testing.T) {
	entries := func(cashOut *float64) []EntryInput {
		return []EntryInput{{PlayerID: playerA, CashOut: cashOut}, {PlayerID: playerB, CashOut: cashOut}}
	}

	tests := []struct {
		name    string
		req     CreateSessionRequest
		wantErr error
	}{
		{"traditional", CreateSessionRequest{Date: "2024-03-01", Entries: entries(ptr(20.0))}, nil},
		{"live without cash-outs", CreateSessionRequest{Date: "2024-03-01", Live: true, Entries: entries(nil)}, nil},
		{"traditional without cash-outs", CreateSessionRequest{Date: "2024-03-01", Entries: entries(nil)}, ErrMissingCashOut},
		{"bad date", CreateSessionRequest{Date: "01/03/2024", Entries: entries(ptr(20.0))}, ErrInvalidRequest},
		{"no players", CreateSessionRequest{Date: "2024-03-01"}, ErrInvalidRequest},
		{"negative buy-in", CreateSessionRequest{Date: "2024-03-01", Live: true, Entries: []EntryInput{{PlayerID: playerA, BuyIn: ptr(-1.0)}}}, ErrInvalidRequest},
		{"player id is not a uuid", CreateSessionRequest{Date: "2024-03-01", Live: true, Entries: []EntryInput{{PlayerID: "a"}}}, ErrInvalidRequest},
		{"duplicate player", CreateSessionRequest{Date: "2024-03-01", Live: true, Entries: []EntryInput{{PlayerID: playerA}, {PlayerID: playerA}}}, ErrDuplicatePlayer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, err := tt.req.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), date)
		})
	}
}

func TestEndSessionRequest_Validate(t *testing.T) {
	assert.NoError(t, (&EndSessionRequest{CashOuts: []CashOutInput{{PlayerID: playerA, CashOut: 0}}}).Validate())
	assert.ErrorIs(t, (&EndSessionRequest{CashOuts: []CashOutInput{{CashOut: 5}}}).Validate(), ErrInvalidRequest)
	assert.ErrorIs(t, (&EndSessionRequest{CashOuts: []CashOutInput{{PlayerID: playerA, CashOut: -5}}}).Validate(), ErrInvalidRequest)
	assert.ErrorIs(t, (&EndSessionRequest{CashOuts: []CashOutInput{{PlayerID: playerA}, {PlayerID: playerA}}}).Validate(), ErrDuplicatePlayer)
}

func TestAddPlayerRequest_Validate(t *testing.T) {
	assert.NoError(t, (&AddPlayerRequest{PlayerID: playerA}).Validate())
	assert.NoError(t, (&AddPlayerRequest{PlayerID: playerA, BuyIn: ptr(40.0)}).Validate())
	assert.ErrorIs(t, (&AddPlayerRequest{PlayerID: "x"}).Validate(), ErrInvalidRequest)
	assert.ErrorIs(t, (&AddPlayerRequest{PlayerID: playerA, BuyIn: ptr(0.0)}).Validate(), ErrInvalidAmount)
}

func TestSession_ToResponse(t *testing.T) {
	s := &Session{
		ID:        "s1",
		GroupID:   "g1",
		Date:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:    StatusLive,
		CreatedAt: time.Date(2024, 3, 1, 19, 30, 0, 0, time.UTC),
		Entries: []*Entry{
			{PlayerID: "a", PlayerName: "Ann", BuyIn: 20.004, CashOut: ptr(33.333)},
			{PlayerID: "b", PlayerName: "Bo", BuyIn: 40, Rebuys: 1},
		},
	}

	resp := s.ToResponse()
	assert.Equal(t, "2024-03-01", resp.Date)
	assert.Equal(t, 60.0, resp.TotalBuyIn)
	assert.Equal(t, 33.33, resp.TotalCashOut)
	assert.NotNil(t, resp.Settlements)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, 13.33, *resp.Entries[0].Profit)
	assert.Nil(t, resp.Entries[1].CashOut)
	assert.Nil(t, resp.Entries[1].Profit)
	assert.Equal(t, 1, resp.Entries[1].Rebuys)
}

func TestHandler_RejectsInvalidPaths(t *testing.T) {
	r := chi.NewRouter()
	r.Mount("/{groupId}/sessions", NewHandler(nil).Routes())
	const base = "/0b7c8f9e-5a44-4a8e-b0e3-91f3f4f0c2d1/sessions"

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"bad group id", http.MethodGet, "/nope/sessions/", ""},
		{"bad session id", http.MethodGet, base + "/not-a-uuid", ""},
		{"bad player id", http.MethodPost, base + "/6f1c2a7e-1d0b-4a55-9a51-2f0f8e3c9b10/players/nope/rebuys", ""},
		{"malformed end body", http.MethodPost, base + "/6f1c2a7e-1d0b-4a55-9a51-2f0f8e3c9b10/end", `{"cash_outs":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
