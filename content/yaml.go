package content

import "gopkg.in/yaml.v3"

// YAMLRenderer serializes a handler's return value as YAML, mirroring the
// teacher's `Response.WriteYAML`.
type YAMLRenderer struct{}

func (YAMLRenderer) MediaType() string { return "application/yaml" }
func (YAMLRenderer) Charset() string   { return "utf-8" }

func (YAMLRenderer) Render(v any) ([]byte, error) {
	return yaml.Marshal(v)
}
