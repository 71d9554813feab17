package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"

	"resumatch/internal/errors"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// classifyError turns a provider failure into an AI_* AppError.
func classifyError(err error) *errors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := errors.As(err); ok {
		return appErr
	}

	switch {
	case stderrors.Is(err, gobreaker.ErrOpenState), stderrors.Is(err, gobreaker.ErrTooManyRequests):
		return errors.NewAIError(errors.ErrCodeAICircuitOpen,
			"suggestion service is temporarily unavailable", err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewAIError(errors.ErrCodeAITimeout, "suggestion request timed out", err)
	}

	if status, ok := providerStatus(err); ok {
		return errors.NewAIError(codeForStatus(status),
			fmt.Sprintf("suggestion request failed with status %d", status), err).
			WithContext("status", status)
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewAIError(errors.ErrCodeAITimeout, "suggestion request timed out", err)
	}

	return errors.NewAIError(errors.ErrCodeAIServiceFailed, "suggestion request failed", err)
}

// providerStatus digs the HTTP status out of the provider SDK error types.
func providerStatus(err error) (int, bool) {
	var oaiErr *openai.APIError
	if stderrors.As(err, &oaiErr) {
		return oaiErr.HTTPStatusCode, true
	}
	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode, true
	}
	var genaiErr genai.APIError
	if stderrors.As(err, &genaiErr) {
		return genaiErr.Code, true
	}
	var genaiErrPtr *genai.APIError
	if stderrors.As(err, &genaiErrPtr) && genaiErrPtr != nil {
		return genaiErrPtr.Code, true
	}
	var gErr *googleapi.Error
	if stderrors.As(err, &gErr) {
		return gErr.Code, true
	}
	return 0, false
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.ErrCodeAIAuthFailed
	case http.StatusTooManyRequests:
		return errors.ErrCodeAIRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return errors.ErrCodeAITimeout
	default:
		return errors.ErrCodeAIServiceFailed
	}
}
