package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/plex-projectplanner/projectplanner/internal/db/controller/appsetting"
)

// Error codes of the api error body.
const (
	CodeNotFound      = "ProjectPlanner:NotFound"
	CodeAlreadyExists = "ProjectPlanner:AlreadyExists"
	CodeValidation    = "ProjectPlanner:Validation"
	CodeUnauthorized  = "ProjectPlanner:Unauthorized"
	CodeForbidden     = "ProjectPlanner:Forbidden"
	CodeInternal      = "ProjectPlanner:InternalServerError"
)

type (
	// ValidationErrorInfo is one invalid member of a request.
	ValidationErrorInfo struct {
		Message string   `json:"message"`
		Members []string `json:"members"`
	}

	// ErrorInfo is the body of a failed request.
	ErrorInfo struct {
		Code             string                `json:"code"`
		Message          string                `json:"message"`
		Details          string                `json:"details,omitempty"`
		ValidationErrors []ValidationErrorInfo `json:"validationErrors,omitempty"`
	}

	// ErrorResponse wraps ErrorInfo the way api clients expect it.
	ErrorResponse struct {
		Error ErrorInfo `json:"error"`
	}
)

// ErrorHandler renders errors returned by handlers as ErrorResponse.
// Store errors map to 404, 409 and 400, fiber errors keep their status,
// everything else is logged and answered with 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, body := Describe(err)

	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}

	return c.Status(status).JSON(body)
}

// Describe maps err to a status code and error body.
func Describe(err error) (int, ErrorResponse) {
	var (
		ve *appsetting.ValidationError
		fe *fiber.Error
	)

	switch {
	case errors.As(err, &ve):
		info := ErrorInfo{
			Code:    CodeValidation,
			Message: "Your request is not valid!",
			Details: ve.Error(),
		}

		for _, f := range ve.Fields {
			info.ValidationErrors = append(info.ValidationErrors, ValidationErrorInfo{
				Message: f.Message,
				Members: []string{f.Member},
			})
		}

		return fiber.StatusBadRequest, ErrorResponse{Error: info}
	case errors.Is(err, appsetting.ErrValidation):
		return fiber.StatusBadRequest, ErrorResponse{Error: ErrorInfo{Code: CodeValidation, Message: err.Error()}}
	case errors.Is(err, appsetting.ErrNotFound):
		return fiber.StatusNotFound, ErrorResponse{Error: ErrorInfo{
			Code:    CodeNotFound,
			Message: "There is no entity ApplicationSetting with the given id.",
		}}
	case errors.Is(err, appsetting.ErrAlreadyExists):
		return fiber.StatusConflict, ErrorResponse{Error: ErrorInfo{Code: CodeAlreadyExists, Message: err.Error()}}
	case errors.As(err, &fe):
		return fe.Code, ErrorResponse{Error: ErrorInfo{Code: codeOf(fe.Code), Message: fe.Message}}
	default:
		return fiber.StatusInternalServerError, ErrorResponse{Error: ErrorInfo{
			Code:    CodeInternal,
			Message: "An internal error occurred during your request!",
		}}
	}
}

func codeOf(status int) string {
	switch status {
	case fiber.StatusUnauthorized:
		return CodeUnauthorized
	case fiber.StatusForbidden:
		return CodeForbidden
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusConflict:
		return CodeAlreadyExists
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
		return CodeValidation
	default:
		if status >= fiber.StatusInternalServerError {
			return CodeInternal
		}

		return "ProjectPlanner:Error"
	}
}
