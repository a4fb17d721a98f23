package appers

import (
	"calendarback/pkg/odata"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type ErrorResp struct {
	StatusCode int    `json:"statusCode,omitempty"`
	StatusDesc string `json:"statusDesc,omitempty"`
}

func (e ErrorResp) Error() string {
	return e.StatusDesc
}

var (
	ErrEntryNotFound = ErrorResp{
		http.StatusNotFound,
		"запись не найдена",
	}
	ErrIDMismatch = ErrorResp{
		StatusCode: http.StatusBadRequest,
		StatusDesc: "id в пути не совпадает с Id в теле запроса",
	}
	ErrInvalidID = ErrorResp{
		StatusCode: http.StatusBadRequest,
		StatusDesc: "id должен быть целым числом",
	}
	ErrTopLimitExceeded = ErrorResp{
		StatusCode: http.StatusBadRequest,
		StatusDesc: "превышен лимит $top (максимум 100)",
	}
	ErrInvalidBody = ErrorResp{
		StatusCode: http.StatusBadRequest,
		StatusDesc: "не удалось разобрать тело запроса",
	}
	// запись изменилась или исчезла между чтением и UPDATE
	ErrUpdateConflict = ErrorResp{
		StatusCode: http.StatusInternalServerError,
		StatusDesc: "конфликт при обновлении записи",
	}
)

func SanitizeError(c *fiber.Ctx, err error) error {
	var (
		errResp  ErrorResp
		queryErr *odata.Error
		valErrs  validator.ValidationErrors
	)

	switch {
	case errors.Is(err, odata.ErrTopLimit):
		return NewErr(c, ErrTopLimitExceeded.StatusCode, ErrTopLimitExceeded)
	case errors.As(err, &errResp):
		return c.Status(errResp.StatusCode).JSON(fiber.Map{
			"message": errResp.StatusDesc,
		})
	case errors.As(err, &queryErr):
		return NewErr(c, http.StatusBadRequest, queryErr)
	case errors.As(err, &valErrs):
		return NewErr(c, http.StatusBadRequest, valErrs)
	default:
		return NewErr(c, http.StatusInternalServerError, err)
	}
}

func NewErr(ctx *fiber.Ctx, status int, err error) error {
	return ctx.Status(status).JSON(fiber.Map{
		"message": err.Error(),
	})
}
