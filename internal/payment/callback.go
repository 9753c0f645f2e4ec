// Package payment interprets VNPay return callbacks. Signature checking is
// the backend's job; this package only extracts what the caller needs and
// tracks the outcome of the verification.
package payment

import (
	"net/url"
	"strings"
)

const (
	TxnRefParam = "vnp_TxnRef"

	// CallbackPath is where the relay sends the browser after VNPay returns.
	CallbackPath = "/payment/vnpay-callback"
)

// Callback is one VNPay return, with every query parameter kept for the
// backend's signature check.
type Callback struct {
	Params    map[string]string
	TxnRef    string
	BookingID string
}

// ParseCallback reads the gateway's query parameters. The booking id is the
// part of vnp_TxnRef before the first underscore ("<bookingId>_<timestamp>").
// When a key repeats, the first value wins.
func ParseCallback(query url.Values) Callback {
	params := make(map[string]string, len(query))
	for k, vs := range query {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}

	txnRef := strings.TrimSpace(params[TxnRefParam])
	bookingID, _, _ := strings.Cut(txnRef, "_")

	return Callback{
		Params:    params,
		TxnRef:    txnRef,
		BookingID: bookingID,
	}
}

// RelayURL re-targets a gateway return at CallbackPath keeping every query
// parameter.
func RelayURL(query url.Values) string {
	if len(query) == 0 {
		return CallbackPath
	}
	return CallbackPath + "?" + query.Encode()
}
