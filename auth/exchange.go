package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// exchange posts a form-encoded grant request to the token endpoint and
// decodes the typed response. A non-2xx status or an error body yields a
// TransportError; a 2xx body missing access_token or expires_in is also an
// error so callers never see a token without an expiry.
func (m *Manager) exchange(ctx context.Context, grant GrantType, form url.Values) (*tokenResponse, error) {
	op := string(grant)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	var decoded tokenResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("token endpoint returned %s", resp.Status)}
		}
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode token response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK || decoded.Error != "" {
		return nil, &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Code:       decoded.Error,
			Err:        fmt.Errorf("token endpoint returned %s: %s", resp.Status, decoded.ErrorDescription),
		}
	}
	if decoded.AccessToken == "" || decoded.ExpiresIn <= 0 {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: errors.New("token response missing access_token or expires_in")}
	}
	return &decoded, nil
}
