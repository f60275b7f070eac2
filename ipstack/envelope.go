package ipstack

import (
	"bytes"
	"encoding/json"
)

// envelope is a part of ipstack response which tells if request was
// successful. Absent success field means success: ipstack sets it only
// on failures. This also means that empty object {} is treated as
// a successful response.
type envelope struct {
	Success *bool           `json:"success"`
	Error   json.RawMessage `json:"error"`
}

func (e *envelope) IsSuccess() bool {
	return e.Success == nil || *e.Success
}

// Details returns error.code and error.info. If any of them is absent or
// has incorrect type, ok is false.
func (e *envelope) Details() (code int, info string, ok bool) {
	if len(e.Error) == 0 {
		return 0, "", false
	}

	details := struct {
		Code *int    `json:"code"`
		Info *string `json:"info"`
	}{}

	if err := json.Unmarshal(e.Error, &details); err != nil {
		return 0, "", false
	}

	if details.Code == nil || details.Info == nil {
		return 0, "", false
	}

	return *details.Code, *details.Info, true
}

// parseEnvelope extracts an envelope from valid JSON. Only objects have
// envelopes, bulk responses are arrays and always considered successful.
func parseEnvelope(body json.RawMessage) (*envelope, error) {
	env := &envelope{}

	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '{' {
		return env, nil
	}

	if err := json.Unmarshal(body, env); err != nil {
		return nil, err
	}

	return env, nil
}
