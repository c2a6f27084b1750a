package response

// Error codes shared by all handlers
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// Response is the envelope of every JSON body
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorData  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorData describes a failed request
type ErrorData struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Meta carries pagination info
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Success wraps data in a successful response
func Success(data interface{}) *Response {
	return &Response{Success: true, Data: data}
}

// Paginated wraps a page of items
func Paginated(data interface{}, page, perPage int, total int64) *Response {
	pages := 0
	if perPage > 0 {
		pages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return &Response{
		Success: true,
		Data:    data,
		Meta:    &Meta{Page: page, PerPage: perPage, Total: total, TotalPages: pages},
	}
}

// Error builds an error response
func Error(code, message string) *Response {
	return &Response{
		Success: false,
		Error:   &ErrorData{Code: code, Message: message},
	}
}

// ErrorWithDetails builds an error response carrying structured details
func ErrorWithDetails(code, message string, details interface{}) *Response {
	resp := Error(code, message)
	resp.Error.Details = details
	return resp
}

func BadRequest(message string) *Response {
	return Error(ErrCodeBadRequest, message)
}

func NotFound(message string) *Response {
	return Error(ErrCodeNotFound, message)
}

func Conflict(message string) *Response {
	return Error(ErrCodeConflict, message)
}

func Unauthorized(message string) *Response {
	return Error(ErrCodeUnauthorized, message)
}

func Forbidden(message string) *Response {
	return Error(ErrCodeForbidden, message)
}

func InternalError(message string) *Response {
	return Error(ErrCodeInternal, message)
}
