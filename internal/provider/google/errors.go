package google

import (
	"cmp"
	"errors"

	"github.com/spetersoncode/nollama"
	"google.golang.org/genai"
)

// wrapError categorizes API errors by status. genai.APIError keeps no
// headers, so Gemini errors never carry a Retry-After. Transport failures
// are passed through for the retry package to judge.
func wrapError(err error) error {
	var apiErr genai.APIError
	if err == nil || !errors.As(err, &apiErr) {
		return err
	}
	return nollama.NewError(nollama.ProviderGoogle, nollama.CategorizeStatusCode(apiErr.Code),
		cmp.Or(apiErr.Message, err.Error()), apiErr.Code, err)
}
