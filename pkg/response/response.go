package response

import "rrhh/pkg/pagination"

// Response represents a standard API response format
type Response struct {
	Status     string            `json:"status"`      // "success" or "error"
	StatusCode int               `json:"status_code"` // HTTP status code
	Data       interface{}       `json:"data,omitempty"`
	Code       string            `json:"code,omitempty"`
	Error      string            `json:"error,omitempty"`
	Fields     map[string]string `json:"campos,omitempty"`
}

// Page is the data of a paginated listing
type Page struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Pages int         `json:"paginas"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Paginated wraps one page of items with the total row count
func Paginated(statusCode int, items interface{}, total int64, page, limit int) Response {
	pages := pagination.New(page, limit).Pages(total)
	return Success(statusCode, Page{Items: items, Total: total, Page: page, Limit: limit, Pages: pages})
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// ErrorWithCode adds the machine readable code and, for validation
// failures, the offending fields
func ErrorWithCode(statusCode int, code, err string, fields map[string]string) Response {
	resp := Error(statusCode, err)
	resp.Code = code
	resp.Fields = fields
	return resp
}
