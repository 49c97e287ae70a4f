package handler

import (
	"net/http"

	"orderbot/internal/logging"
	"orderbot/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

var statusByCode = map[usecase.ErrorCode]int{
	usecase.CodeInvalid:   http.StatusBadRequest,
	usecase.CodeEmptyCart: http.StatusBadRequest,
	usecase.CodeNotFound:  http.StatusNotFound,
	usecase.CodeForbidden: http.StatusForbidden,
	usecase.CodeInactive:  http.StatusConflict,
}

// usecase のエラーを HTTP に変換する
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := usecase.AsAppError(err); ok {
		if status, ok := statusByCode[ae.Code]; ok {
			return c.JSON(status, ErrorResponse{Error: ae.Message})
		}
	}

	//500
	logging.FromCtx(c.Request().Context()).Error("handler error", "err", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get("user_id")
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}
