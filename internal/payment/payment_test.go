package payment

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		bookingID string
	}{
		{"booking and timestamp", "vnp_TxnRef=665f1c2a_1718000000&vnp_ResponseCode=00", "665f1c2a"},
		{"no timestamp", "vnp_TxnRef=665f1c2a", "665f1c2a"},
		{"several underscores", "vnp_TxnRef=abc_1_2", "abc"},
		{"missing ref", "vnp_ResponseCode=24", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)

			cb := ParseCallback(q)
			assert.Equal(t, tt.bookingID, cb.BookingID)
			assert.Len(t, cb.Params, len(q), "every parameter is forwarded")
		})
	}
}

func TestResult_Transitions(t *testing.T) {
	r := NewResult(Callback{BookingID: "b1"})
	assert.Equal(t, StatusProcessing, r.Status)
	assert.False(t, r.Terminal())

	ok := r.Succeed()
	assert.Equal(t, StatusSuccess, ok.Status)
	assert.Equal(t, "/payment/b1", ok.Redirect)
	assert.Equal(t, SuccessMessage, ok.Message)
	assert.Equal(t, ok, ok.Fail("late failure"), "terminal results do not move")

	failed := r.Fail("")
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Equal(t, DefaultFailureMessage, failed.Message)
	assert.Equal(t, failed, failed.Succeed())
}

func TestResult_RedirectWithoutBooking(t *testing.T) {
	r := NewResult(Callback{})
	assert.Equal(t, "/profile/bookings", r.Succeed().Redirect)
	assert.Equal(t, "/movies", r.Fail("Giao dịch bị hủy").Redirect)
}

func TestRelayURL(t *testing.T) {
	q := url.Values{"vnp_TxnRef": {"b1_17"}, "vnp_Amount": {"21000000"}}
	assert.Equal(t, "/payment/vnpay-callback?vnp_Amount=21000000&vnp_TxnRef=b1_17", RelayURL(q))
	assert.Equal(t, "/payment/vnpay-callback", RelayURL(nil))
}
