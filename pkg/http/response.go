package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataResponse wraps data in the APIResponse envelope. The status goes to both the
// HTTP header and the envelope.
func DataResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, APIResponse{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

// SuccessResponse writes data with 200 OK.
func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// ListResponse writes rows along with their count.
func ListResponse(c echo.Context, rows interface{}, total int64) error {
	return SuccessResponse(c, &ListDataResponse{Rows: rows, Total: total})
}

// ValidationResponse writes the []ValidationError produced by ReadAndValidateRequest
// with 400 Bad Request.
func ValidationResponse(c echo.Context, errs interface{}) error {
	return DataResponse(c, http.StatusBadRequest, errs)
}

// AppErrorResponse writes err as a one-element error list. Errors that carry no
// *AppError are reported as ERR_INTERNAL without their text.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = InternalError("Something went wrong").WithError(err)
	}
	return DataResponse(c, appErr.Status, []*AppError{appErr})
}
