package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-hclog"
)

var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
)

// DecodeResponse decodes the HTTP response body into the provided type T.
func DecodeResponse[T any](
	ctx context.Context,
	apiName string,
	resp *http.Response,
	expectedStatus int,
) (*T, error) {
	var (
		respErr error
		result  T
	)

	if resp.StatusCode == expectedStatus {
		respErr = json.NewDecoder(resp.Body).Decode(&result)
	} else {
		respErr = fmt.Errorf("%w %s", ErrUnexpectedStatusCode, resp.Status)
	}

	if respErr != nil {
		return nil, fmt.Errorf("invalid response from %s: %w", apiName, respErr)
	}

	return &result, nil
}

// CloseBody drains and closes a response body so the underlying connection
// can be reused. Safe on a nil response.
func CloseBody(logger hclog.Logger, op string, resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	if err := resp.Body.Close(); err != nil {
		logger.Error("failed to close response body", "op", op, "error", err)
	}
}
