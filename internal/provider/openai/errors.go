package openai

import (
	"errors"

	"github.com/openai/openai-go"
	"github.com/spetersoncode/nollama"
	"github.com/spetersoncode/nollama/internal/provider"
)

// wrapError categorizes API errors by status. Transport failures are passed
// through for the retry package to judge.
func wrapError(err error) error {
	var apiErr *openai.Error
	if err == nil || !errors.As(err, &apiErr) {
		return err
	}
	return provider.WrapStatus(nollama.ProviderOpenAI, apiErr.StatusCode, apiErr.Response, err)
}
