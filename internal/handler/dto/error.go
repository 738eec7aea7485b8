package dto

// Client-facing messages. Rate limiting and duplicate submissions are the
// errors end users see most, so they always carry an Arabic translation.
const (
	MsgRateLimited   = "Too many applications submitted. Please try again later."
	MsgRateLimitedAr = "تم إرسال عدد كبير من الطلبات. يرجى المحاولة لاحقاً."

	MsgDuplicate   = "An application with this email already exists."
	MsgDuplicateAr = "يوجد طلب مسجل بهذا البريد الإلكتروني بالفعل."

	MsgMethodNotAllowed = "Method not allowed"
	MsgNotFound         = "Not found"
	MsgPayloadTooLarge  = "Request body too large"
	MsgSubmitFailed     = "Failed to submit application"
	MsgInternal         = "Internal server error"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	ErrorAr string `json:"error_ar,omitempty"`
	Field   string `json:"field,omitempty"`
}

// RateLimitedError is the bilingual 429 body.
func RateLimitedError() ErrorResponse {
	return ErrorResponse{Error: MsgRateLimited, ErrorAr: MsgRateLimitedAr}
}

// DuplicateError is the bilingual 409 body.
func DuplicateError() ErrorResponse {
	return ErrorResponse{Error: MsgDuplicate, ErrorAr: MsgDuplicateAr}
}
