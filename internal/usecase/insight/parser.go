package insight

import (
	"encoding/json"
	"fmt"
	"strings"

	ucerrors "github.com/meetwise-team/meeting-insights/internal/usecase/errors"
)

// CoerceJSON recovers a JSON document from a raw model reply. Models
// wrap output in markdown fences or chat around it; this strips fences
// and cuts the text down to the outermost object or array.
func CoerceJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty response", ucerrors.ErrMalformedResponse)
	}

	if strings.HasPrefix(s, "```") {
		s = strings.Trim(s, "`")
		s = strings.TrimSpace(strings.TrimPrefix(s, "json"))
	}

	objStart := strings.IndexByte(s, '{')
	arrStart := strings.IndexByte(s, '[')
	start := objStart
	if start < 0 || (arrStart >= 0 && arrStart < start) {
		start = arrStart
	}
	if start < 0 {
		return "", fmt.Errorf("%w: no JSON payload found", ucerrors.ErrMalformedResponse)
	}

	objEnd := strings.LastIndexByte(s, '}')
	arrEnd := strings.LastIndexByte(s, ']')
	end := objEnd
	if arrEnd > end {
		end = arrEnd
	}
	if end < start {
		return "", fmt.Errorf("%w: unterminated JSON payload", ucerrors.ErrMalformedResponse)
	}

	s = s[start : end+1]
	if !json.Valid([]byte(s)) {
		return "", fmt.Errorf("%w: invalid JSON payload", ucerrors.ErrMalformedResponse)
	}
	return s, nil
}

// DecodeJSON coerces the raw reply and unmarshals it into v
func DecodeJSON(raw string, v interface{}) error {
	s, err := CoerceJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("%w: %v", ucerrors.ErrMalformedResponse, err)
	}
	return nil
}
