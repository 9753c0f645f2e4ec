package payment

type Status string

const (
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
)

const (
	SuccessMessage        = "Thanh toán thành công! Vé của bạn đã được xác nhận."
	DefaultFailureMessage = "Thanh toán thất bại. Vui lòng liên hệ hỗ trợ."

	bookingsPath = "/profile/bookings"
	moviesPath   = "/movies"
)

// Result is the outcome of verifying one callback. It starts processing and
// moves once to success or failed; terminal results ignore further moves.
type Result struct {
	Status    Status `json:"status"`
	BookingID string `json:"booking_id,omitempty"`
	Message   string `json:"message"`
	// Redirect is where the customer goes next: the ticket on success, the
	// retry page on failure.
	Redirect string `json:"redirect"`
}

func NewResult(cb Callback) Result {
	return Result{Status: StatusProcessing, BookingID: cb.BookingID}
}

func (r Result) Terminal() bool {
	return r.Status == StatusSuccess || r.Status == StatusFailed
}

func (r Result) Succeed() Result {
	if r.Terminal() {
		return r
	}
	r.Status = StatusSuccess
	r.Message = SuccessMessage
	r.Redirect = bookingsPath
	if r.BookingID != "" {
		r.Redirect = "/payment/" + r.BookingID
	}
	return r
}

func (r Result) Fail(message string) Result {
	if r.Terminal() {
		return r
	}
	if message == "" {
		message = DefaultFailureMessage
	}
	r.Status = StatusFailed
	r.Message = message
	r.Redirect = moviesPath
	if r.BookingID != "" {
		r.Redirect = "/payment/" + r.BookingID
	}
	return r
}
