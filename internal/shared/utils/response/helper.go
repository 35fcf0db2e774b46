package response

import "github.com/gin-gonic/gin"

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError emits an error envelope with a stable machine-readable reason
// code in addition to the human message.
func RespondError(c *gin.Context, httpStatus int, reasonCode string, message string, errors interface{}) {
	c.JSON(httpStatus, StandardApiResponse{
		Status:     "error",
		StatusCode: httpStatus,
		Code:       reasonCode,
		Message:    message,
		Errors:     errors,
	})
}
