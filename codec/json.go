package codec

import "encoding/json"

// JSON is the standard-library codec. Output is indented for reports
// meant to be read by people.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }

func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (JSON) Name() string { return "json" }
