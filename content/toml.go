package content

import (
	"bytes"

	"github.com/BurntSushi/toml"
)

// TOMLRenderer serializes a handler's return value as TOML, mirroring the
// teacher's `Response.WriteTOML`.
type TOMLRenderer struct{}

func (TOMLRenderer) MediaType() string { return "application/toml" }
func (TOMLRenderer) Charset() string   { return "utf-8" }

func (TOMLRenderer) Render(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
