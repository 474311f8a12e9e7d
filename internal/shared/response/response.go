package response

import (
	"github.com/gin-gonic/gin"
)

// Pagination is the metadata block list responses carry. The field names
// match the existing browser client, do not rename them.
type Pagination struct {
	Total       int64 `json:"total"`
	Limit       int   `json:"limit"`
	Offset      int   `json:"offset"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

func NewPagination(total int64, limit, offset int) Pagination {
	return Pagination{
		Total:       total,
		Limit:       limit,
		Offset:      offset,
		HasNext:     int64(offset+limit) < total,
		HasPrevious: offset > 0,
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Error(c *gin.Context, status int, errorCode string, message string, details any) {
	c.JSON(status, errorBody{
		Code:    errorCode,
		Message: message,
		Details: details,
	})
}
