package api

import (
	"errors"
	"net/http"

	"github.com/hardyjosh/rain-oracle-server/pkg/oracle"
	"github.com/hardyjosh/rain-oracle-server/pkg/order"
)

// Error codes returned in the "error" field.
const (
	codeInvalidBody          = "invalid_body"
	codeInvalidIndex         = "invalid_index"
	codeUnsupportedTokenPair = "unsupported_token_pair"
	codeInvalidInput         = "invalid_input"
	codeUpstreamUnavailable  = "upstream_unavailable"
	codeInternal             = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// classify maps an error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, order.ErrInvalidBody):
		return http.StatusBadRequest, codeInvalidBody
	case errors.Is(err, order.ErrInvalidIndex):
		return http.StatusBadRequest, codeInvalidIndex
	case errors.Is(err, oracle.ErrUnsupportedTokenPair):
		return http.StatusBadRequest, codeUnsupportedTokenPair
	case errors.Is(err, oracle.ErrUpstreamUnavailable):
		return http.StatusBadGateway, codeUpstreamUnavailable
	case errors.Is(err, oracle.ErrInvalidInput):
		return http.StatusBadRequest, codeInvalidInput
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
