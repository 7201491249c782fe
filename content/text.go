package content

// TextParser is the identity parser for "text/plain" bodies: the
// charset-decoded text is the value (§4.2).
type TextParser struct{}

func (TextParser) MediaType() string { return "text/plain" }

func (TextParser) Parse(body []byte, text string) (any, error) {
	return text, nil
}

// TextRenderer serializes a handler's return value as plain text. Byte
// slices and strings pass through verbatim; anything else is rendered
// with fmt's default verb, mirroring how the teacher's WriteString keeps
// text rendering a thin, allocation-light path.
type TextRenderer struct{}

func (TextRenderer) MediaType() string { return "text/plain" }
func (TextRenderer) Charset() string   { return "utf-8" }

func (TextRenderer) Render(v any) ([]byte, error) {
	switch s := v.(type) {
	case string:
		return []byte(s), nil
	case []byte:
		return s, nil
	case nil:
		return nil, nil
	default:
		return []byte(toText(s)), nil
	}
}
