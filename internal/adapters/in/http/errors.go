package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"parceldesk/internal/core/application/usecases/queries"
	"parceldesk/internal/core/domain/model/parcel"
)

const reasonJournalDisabled = "journal_disabled"

// statusOf maps a core error to an HTTP status and a stable reason.
func statusOf(err error) (int, string) {
	if errors.Is(err, queries.ErrJournalDisabled) {
		return http.StatusNotFound, reasonJournalDisabled
	}

	reason := parcel.ReasonOf(err)
	switch reason {
	case parcel.ReasonNotFound:
		return http.StatusNotFound, string(reason)
	case parcel.ReasonInvalidTransition:
		return http.StatusConflict, string(reason)
	case parcel.ReasonMissingProof, parcel.ReasonMissingAgent:
		return http.StatusUnprocessableEntity, string(reason)
	case parcel.ReasonInvalidInput:
		return http.StatusBadRequest, string(reason)
	case parcel.ReasonNone, parcel.ReasonDuplicateCode, parcel.ReasonUnknown:
	}
	return http.StatusInternalServerError, string(parcel.ReasonUnknown)
}

func writeError(c echo.Context, err error) error {
	status, reason := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	return c.JSON(status, Error{Code: status, Reason: reason, Message: msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Reason:  string(parcel.ReasonInvalidInput),
		Message: msg,
	})
}
