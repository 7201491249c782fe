package content

import "encoding/json"

// JSONParser decodes "application/json" bodies strictly: a decode
// failure becomes a ParseError, surfaced by the state machine as a 422.
type JSONParser struct{}

func (JSONParser) MediaType() string { return "application/json" }

func (p JSONParser) Parse(body []byte, text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, &ParseError{MediaType: p.MediaType(), Err: err}
	}

	return v, nil
}

// JSONRenderer serializes a handler's return value as JSON.
type JSONRenderer struct{}

func (JSONRenderer) MediaType() string { return "application/json" }
func (JSONRenderer) Charset() string   { return "utf-8" }

func (JSONRenderer) Render(v any) ([]byte, error) {
	return json.Marshal(v)
}
