package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rbxsync/rbxsync/pkg/errors"
)

// DecodeResponse decodes a JSON response into the target structure. A nil
// target or an empty body on a success status are accepted: several Open
// Cloud PATCH endpoints return no content.
func DecodeResponse(resp *http.Response, target any) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &errors.APIError{
			Endpoint:   resp.Request.URL.String(),
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	if target == nil || len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", resp.Request.URL.String(), err)
	}

	return nil
}
