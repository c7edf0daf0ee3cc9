package response

import "github.com/gin-gonic/gin"

type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(200, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(201, data)
}

// Error writes {error}.
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorBody{Error: message})
}

// ErrorWithMessage writes {error, message}.
func ErrorWithMessage(c *gin.Context, httpStatus int, message, detail string) {
	c.JSON(httpStatus, ErrorBody{Error: message, Message: detail})
}

// ErrorWithDetails writes {error, details}.
func ErrorWithDetails(c *gin.Context, httpStatus int, message string, details any) {
	c.JSON(httpStatus, ErrorBody{Error: message, Details: details})
}

// Abort writes {error} and stops the handler chain.
func Abort(c *gin.Context, httpStatus int, message string) {
	c.AbortWithStatusJSON(httpStatus, ErrorBody{Error: message})
}
