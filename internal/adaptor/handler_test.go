package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"cinema-ticketing/internal/booking"
	"cinema-ticketing/internal/dto/request"
	"cinema-ticketing/internal/dto/response"
	"cinema-ticketing/internal/gateway"
	"cinema-ticketing/internal/payment"
	"cinema-ticketing/internal/usecase"
	"cinema-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"machine validation", fmt.Errorf("toggle: %w", booking.ErrSeatLimitExceeded), http.StatusUnprocessableEntity, ""},
		{"wrong step", booking.ErrWrongStep, http.StatusUnprocessableEntity, ""},
		{"bad date", usecase.ErrInvalidDate, http.StatusBadRequest, ""},
		{"session missing", usecase.ErrSessionNotFound, http.StatusNotFound, ""},
		{"combo missing", usecase.ErrComboNotFound, http.StatusNotFound, ""},
		{"seat conflict", fmt.Errorf("create booking: %w", gateway.ErrSeatConflict), http.StatusConflict, CodeSeatConflict},
		{"stale", usecase.ErrStaleResponse, http.StatusConflict, CodeStale},
		{"in flight", usecase.ErrOperationInFlight, http.StatusConflict, CodeInFlight},
		{"backend down", fmt.Errorf("list: %w", gateway.ErrBackendUnavailable), http.StatusServiceUnavailable, ""},
		{"timeout", context.DeadlineExceeded, http.StatusServiceUnavailable, ""},
		{"backend refused", gateway.ErrRejected, http.StatusUnprocessableEntity, ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(rec, zap.NewNop(), tt.err, "test")

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decode(t, rec)
			assert.False(t, resp.Status)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

// stubCounter implements the calls a test needs; the rest panic.
type stubCounter struct {
	usecase.CounterService
	submitCustomer func(staffID, sessionID string, req *request.CustomerRequest) (*response.SessionResponse, error)
	submit         func(staffID, sessionID string) (*response.SubmitResponse, error)
}

func (s *stubCounter) SubmitCustomer(ctx context.Context, staffID, sessionID string, req *request.CustomerRequest) (*response.SessionResponse, error) {
	return s.submitCustomer(staffID, sessionID, req)
}

func (s *stubCounter) Submit(ctx context.Context, staffID, sessionID string) (*response.SubmitResponse, error) {
	return s.submit(staffID, sessionID)
}

func counterRouter(h *CounterHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/sessions/{id}/customer", h.SubmitCustomer)
	r.Post("/sessions/{id}/submit", h.Submit)
	return r
}

func staffRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(utils.SetStaffContext(req.Context(), "staff-1", utils.RoleStaff))
}

func TestCounterHandler_SubmitCustomer(t *testing.T) {
	var gotSession string
	var gotReq *request.CustomerRequest
	stub := &stubCounter{
		submitCustomer: func(staffID, sessionID string, req *request.CustomerRequest) (*response.SessionResponse, error) {
			gotSession, gotReq = sessionID, req
			return &response.SessionResponse{ID: sessionID, Step: int(booking.StepSelectMovie), WalkIn: true}, nil
		},
	}
	router := counterRouter(NewCounterHandler(stub, zap.NewNop()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, staffRequest(http.MethodPost, "/sessions/sess-1/customer", `{"phone":"0901 234 567","name":"Chị Lan"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sess-1", gotSession)
	assert.Equal(t, "0901 234 567", gotReq.Phone)
	assert.Equal(t, "Chị Lan", gotReq.Name)
	assert.True(t, decode(t, rec).Status)
}

func TestCounterHandler_RejectsBadInput(t *testing.T) {
	stub := &stubCounter{
		submitCustomer: func(string, string, *request.CustomerRequest) (*response.SessionResponse, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	router := counterRouter(NewCounterHandler(stub, zap.NewNop()))

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
	}{
		{"not json", staffRequest(http.MethodPost, "/sessions/s/customer", `phone=1`), http.StatusBadRequest},
		{"letters in phone", staffRequest(http.MethodPost, "/sessions/s/customer", `{"phone":"call me"}`), http.StatusBadRequest},
		{"no staff", httptest.NewRequest(http.MethodPost, "/sessions/s/customer", strings.NewReader(`{"phone":"0901234567"}`)), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, tt.req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestCounterHandler_SubmitSeatConflict(t *testing.T) {
	stub := &stubCounter{
		submit: func(string, string) (*response.SubmitResponse, error) {
			return nil, fmt.Errorf("create booking: %w", gateway.ErrSeatConflict)
		},
	}
	router := counterRouter(NewCounterHandler(stub, zap.NewNop()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, staffRequest(http.MethodPost, "/sessions/s/submit", ""))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, CodeSeatConflict, decode(t, rec).Code)
}

type stubPayment struct {
	result *payment.Result
	err    error
	query  url.Values
}

func (s *stubPayment) Verify(ctx context.Context, query url.Values) (*payment.Result, error) {
	s.query = query
	return s.result, s.err
}

func TestPaymentHandler_Relay(t *testing.T) {
	h := NewPaymentHandler(&stubPayment{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Relay(rec, httptest.NewRequest(http.MethodGet, "/payment-result?vnp_TxnRef=b42_1760864400&vnp_ResponseCode=00", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, payment.CallbackPath, location.Path)
	assert.Equal(t, "b42_1760864400", location.Query().Get("vnp_TxnRef"))
	assert.Equal(t, "00", location.Query().Get("vnp_ResponseCode"))
}

func TestPaymentHandler_VerifyCallback(t *testing.T) {
	result := payment.NewResult(payment.Callback{BookingID: "b42"}).Succeed()
	stub := &stubPayment{result: &result}
	h := NewPaymentHandler(stub, zap.NewNop())

	rec := httptest.NewRecorder()
	h.VerifyCallback(rec, httptest.NewRequest(http.MethodGet, "/api/payment/vnpay-callback?vnp_TxnRef=b42_1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b42_1", stub.query.Get("vnp_TxnRef"))

	var body struct {
		Message string         `json:"message"`
		Data    payment.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, payment.StatusSuccess, body.Data.Status)
	assert.Equal(t, "/payment/b42", body.Data.Redirect)
	assert.Equal(t, payment.SuccessMessage, body.Message)

	stub.err = usecase.ErrMissingCallbackParams
	rec = httptest.NewRecorder()
	h.VerifyCallback(rec, httptest.NewRequest(http.MethodGet, "/api/payment/vnpay-callback", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
