// Package response holds the unified JSON envelope returned by every
// HTTP handler: a success flag, an optional human-readable message and
// an optional data payload.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// Response is the standard server envelope.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the error shape used in Swagger @Failure
// annotations.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"invalid request body"`
}

// OK returns a success envelope carrying only a message.
func OK(msg string) Response {
	return Response{
		Success: true,
		Message: msg,
	}
}

// OKWithData returns a success envelope carrying data.
func OKWithData(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// OKMessageWithData returns a success envelope carrying both a message
// and data.
func OKMessageWithData(msg string, data any) Response {
	return Response{
		Success: true,
		Message: msg,
		Data:    data,
	}
}

// Session wraps the issued access token inside the data payload.
type Session struct {
	AccessToken string `json:"access_token"`
}

// AuthPayload is the data block returned by the authentication
// endpoints: the account (serialized as "user") and its session token.
type AuthPayload struct {
	Account any     `json:"user"`
	Session Session `json:"session"`
}

// Auth builds the standard authentication payload.
func Auth(account any, token string) AuthPayload {
	return AuthPayload{
		Account: account,
		Session: Session{AccessToken: token},
	}
}

// Error returns a failure envelope with the given message.
func Error(msg string) Response {
	return Response{
		Success: false,
		Message: msg,
	}
}

// ValidationError folds validator violations into a single
// human-readable failure message.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email address", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too long", err.Field()))
		case "len":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s has a wrong length", err.Field()))
		case "numeric":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers", err.Field()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a uuid", err.Field()))
		case "eqfield":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must match field %s", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s has an unsupported value", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Response{
		Success: false,
		Message: strings.Join(errsMsgs, ", "),
	}
}
