package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/pkg/utils"

	"go.uber.org/zap"
)

const (
	maxErrorBody    = 4 << 10
	maxResponseBody = 8 << 20
)

// APIClient talks to the cinema backend's REST API. Every call is bounded by
// the configured timeout.
type APIClient struct {
	baseURL    string
	token      string
	timeout    time.Duration
	maxBody    int64
	httpClient *http.Client
	log        *zap.Logger
}

func NewAPIClient(config utils.BackendConfig, log *zap.Logger) *APIClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &APIClient{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		token:      config.APIToken,
		timeout:    timeout,
		maxBody:    maxResponseBody,
		httpClient: &http.Client{},
		log:        log.With(zap.String("gateway", "api")),
	}
}

func (c *APIClient) LookupCustomerByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	q := url.Values{}
	q.Set("phone", phone)

	body, err := c.do(ctx, http.MethodGet, "/users/search", q, nil)
	if err != nil {
		return nil, fmt.Errorf("lookup customer by phone: %w", err)
	}

	raw, err := decodeObject[rawCustomer](body, "user")
	if err != nil {
		return nil, fmt.Errorf("decode customer: %w", err)
	}
	if raw == nil || raw.String() == "" {
		return nil, fmt.Errorf("customer with phone %s: %w", phone, ErrNotFound)
	}

	return raw.toEntity(), nil
}

func (c *APIClient) ListShowtimes(ctx context.Context, filter ShowtimeFilter) ([]entity.Showtime, error) {
	q := url.Values{}
	if filter.MovieID != "" {
		q.Set("movieId", filter.MovieID)
	}
	if filter.CinemaID != "" {
		q.Set("cinemaId", filter.CinemaID)
	}
	if !filter.Date.IsZero() {
		q.Set("date", filter.Date.Format("2006-01-02"))
	}

	body, err := c.do(ctx, http.MethodGet, "/showtimes", q, nil)
	if err != nil {
		return nil, fmt.Errorf("list showtimes: %w", err)
	}

	raws, err := decodeList[rawShowtime](body, "showtimes")
	if err != nil {
		return nil, fmt.Errorf("decode showtimes: %w", err)
	}

	showtimes := make([]entity.Showtime, 0, len(raws))
	for _, raw := range raws {
		showtimes = append(showtimes, raw.toEntity())
	}
	return showtimes, nil
}

func (c *APIClient) ListCinemas(ctx context.Context) ([]entity.CinemaSummary, error) {
	body, err := c.do(ctx, http.MethodGet, "/cinemas", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list cinemas: %w", err)
	}

	raws, err := decodeList[rawCinema](body, "cinemas")
	if err != nil {
		return nil, fmt.Errorf("decode cinemas: %w", err)
	}

	cinemas := make([]entity.CinemaSummary, 0, len(raws))
	for _, raw := range raws {
		if cinema := raw.toEntity(); cinema != nil {
			cinemas = append(cinemas, *cinema)
		}
	}
	return cinemas, nil
}

func (c *APIClient) ListCombos(ctx context.Context) ([]entity.Combo, error) {
	body, err := c.do(ctx, http.MethodGet, "/combos", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list combos: %w", err)
	}

	raws, err := decodeList[rawCombo](body, "combos")
	if err != nil {
		return nil, fmt.Errorf("decode combos: %w", err)
	}

	combos := make([]entity.Combo, 0, len(raws))
	for _, raw := range raws {
		if combo := raw.toEntity(); combo.IsActive {
			combos = append(combos, combo)
		}
	}
	return combos, nil
}

type createBookingPayload struct {
	ShowtimeID    string                `json:"showtimeId"`
	Seats         []createBookingSeat   `json:"seats"`
	Combos        []createBookingCombo  `json:"combos"`
	BookingType   entity.BookingChannel `json:"bookingType"`
	CustomerPhone string                `json:"customerPhone"`
	CustomerName  string                `json:"customerName,omitempty"`
	CustomerID    string                `json:"customerId,omitempty"`
}

type createBookingSeat struct {
	Row    string `json:"row"`
	Number int    `json:"number"`
	Type   string `json:"type"`
	Price  int64  `json:"price"`
}

type createBookingCombo struct {
	ComboID  string `json:"comboId"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

func (c *APIClient) CreateBooking(ctx context.Context, req entity.NewBooking) (*entity.Booking, error) {
	payload := createBookingPayload{
		ShowtimeID:    req.ShowtimeID,
		Seats:         make([]createBookingSeat, 0, len(req.Seats)),
		Combos:        make([]createBookingCombo, 0, len(req.Combos)),
		BookingType:   req.Channel,
		CustomerPhone: req.CustomerPhone,
		CustomerName:  req.CustomerName,
		CustomerID:    req.CustomerID,
	}
	for _, s := range req.Seats {
		payload.Seats = append(payload.Seats, createBookingSeat{Row: s.Row, Number: s.Number, Type: string(s.Type), Price: s.Price})
	}
	for _, cb := range req.Combos {
		payload.Combos = append(payload.Combos, createBookingCombo{ComboID: cb.ComboID, Name: cb.Name, Quantity: cb.Quantity, Price: cb.Price})
	}

	body, err := c.do(ctx, http.MethodPost, "/bookings", nil, payload)
	if err != nil {
		return nil, fmt.Errorf("create booking for showtime %s: %w", req.ShowtimeID, err)
	}

	raw, err := decodeObject[rawBooking](body, "booking")
	if err != nil {
		return nil, fmt.Errorf("decode booking: %w", err)
	}
	if raw == nil || raw.String() == "" {
		return nil, fmt.Errorf("create booking: backend returned no booking id: %w", ErrRejected)
	}

	booking := raw.toEntity()
	if booking.ShowtimeID == "" {
		booking.ShowtimeID = req.ShowtimeID
	}
	if booking.Channel == "" {
		booking.Channel = req.Channel
	}
	return booking, nil
}

func (c *APIClient) VerifyPaymentCallback(ctx context.Context, params map[string]string) (*PaymentVerification, error) {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}

	body, err := c.do(ctx, http.MethodGet, "/payments/vnpay/callback", q, nil)
	if err != nil {
		var rejected *rejectionError
		if errors.As(err, &rejected) {
			// A refused verification is an answer, not a transport failure.
			return &PaymentVerification{Success: false, Message: rejected.message}, nil
		}
		return nil, fmt.Errorf("verify payment callback: %w", err)
	}

	var v PaymentVerification
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode payment verification: %w", err)
	}
	return &v, nil
}

// rejectionError carries the backend's message for a 4xx answer.
type rejectionError struct {
	status  int
	message string
	kind    error
}

func (e *rejectionError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", e.kind, e.status, e.message)
}

func (e *rejectionError) Unwrap() error { return e.kind }

func (c *APIClient) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("Backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s %s: %w: %v", method, path, ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w: %v", method, path, ErrBackendUnavailable, err)
	}
	if int64(len(body)) > c.maxBody {
		c.log.Warn("Backend response too large",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int64("limit", c.maxBody),
		)
		return nil, fmt.Errorf("read %s %s: %w: response exceeds %d bytes", method, path, ErrBackendUnavailable, c.maxBody)
	}

	c.log.Debug("Backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, &rejectionError{status: resp.StatusCode, message: errorMessage(body), kind: ErrNotFound}
	case resp.StatusCode == http.StatusConflict:
		return nil, &rejectionError{status: resp.StatusCode, message: errorMessage(body), kind: ErrSeatConflict}
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, ErrBackendUnavailable)
	default:
		msg := errorMessage(body)
		kind := ErrRejected
		if method == http.MethodPost && path == "/bookings" && mentionsSeatTaken(msg) {
			kind = ErrSeatConflict
		}
		return nil, &rejectionError{status: resp.StatusCode, message: msg, kind: kind}
	}
}

// bearer prefers the caller's own token so the backend applies the staff
// member's permissions, e.g. restricting showtimes to their cinema.
func (c *APIClient) bearer(ctx context.Context) string {
	if token, ok := utils.GetTokenFromContext(ctx); ok && token != "" {
		return token
	}
	return c.token
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := firstString(payload.Message, payload.Error); msg != "" {
			return msg
		}
	}
	return truncate(strings.TrimSpace(string(body)), maxErrorBody)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func mentionsSeatTaken(msg string) bool {
	msg = strings.ToLower(msg)
	for _, hint := range []string{"already booked", "not available", "đã được đặt", "seat taken", "đã có người đặt"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
