package vex

import (
	"encoding/json"
	"fmt"

	"github.com/vexlang/vex/internal/vexvalue"
)

// ToJSON renders v as strict encoding/json-compatible bytes (spec.md
// §6.4 JSON compatibility), distinct from v.String(...): the
// canonical textual form can use Infinity/NaN tags that are not valid
// JSON and writes a top-level string without quotes, whereas ToJSON is
// for a host that wants to hand a result to
// an ordinary JSON encoder/API.
func ToJSON(v *vexvalue.Value) ([]byte, error) {
	b, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("vex: cannot marshal to JSON: %w", err)
	}
	return b, nil
}

// FromJSONBytes decodes data as JSON and normalizes the result into a
// runtime Value, the counterpart to ToJSON for a host that already
// holds a serialized JSON payload (e.g. an HTTP request body) rather
// than native Go values it would otherwise pass through
// WithInjectedVariables/FromHost.
func FromJSONBytes(data []byte) (*vexvalue.Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("vex: invalid JSON: %w", err)
	}
	v, err := vexvalue.FromJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("vex: %w", err)
	}
	return v, nil
}
