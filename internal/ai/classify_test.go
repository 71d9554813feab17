package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"resumatch/internal/errors"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"open breaker", gobreaker.ErrOpenState, errors.ErrCodeAICircuitOpen},
		{"half-open overflow", gobreaker.ErrTooManyRequests, errors.ErrCodeAICircuitOpen},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), errors.ErrCodeAITimeout},
		{"openai 429", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, errors.ErrCodeAIRateLimited},
		{"openai 403", &openai.APIError{HTTPStatusCode: http.StatusForbidden}, errors.ErrCodeAIAuthFailed},
		{"openai request 504", &openai.RequestError{HTTPStatusCode: http.StatusGatewayTimeout, Err: stderrors.New("x")}, errors.ErrCodeAITimeout},
		{"googleapi 429", &googleapi.Error{Code: http.StatusTooManyRequests}, errors.ErrCodeAIRateLimited},
		{"googleapi 500", &googleapi.Error{Code: http.StatusInternalServerError}, errors.ErrCodeAIServiceFailed},
		{"plain", stderrors.New("boom"), errors.ErrCodeAIServiceFailed},
		{"app error kept", errors.NewAIError(errors.ErrCodeAINotConfigured, "no key", nil), errors.ErrCodeAINotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, errors.ErrorTypeAI, got.Type)
		})
	}

	assert.Nil(t, classifyError(nil))
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("", "Data Analyst", "SQL, Excel")
	assert.Equal(t, "You are a helpful career coach. The user is applying for the role of Data Analyst.\n"+
		"Here is their resume text:\n\nSQL, Excel\n\n"+
		"Please provide 3 clear and actionable suggestions to improve their resume for better chances in this role.\n", got)

	assert.Equal(t, "Data Analyst|x", BuildPrompt("%[1]s|%[2]s", "Data Analyst", "x"))
}
