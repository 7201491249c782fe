package content

import "net/url"

// FormParser decodes "application/x-www-form-urlencoded" bodies into a
// multi-map (map[string][]string). Per §4.2, form decoding never fails on
// syntax — url.ParseQuery's error is swallowed the same way net/http's own
// ParseForm tolerates partially malformed pairs, keeping whatever it could
// parse.
type FormParser struct{}

func (FormParser) MediaType() string { return "application/x-www-form-urlencoded" }

func (FormParser) Parse(body []byte, text string) (any, error) {
	values, _ := url.ParseQuery(text)
	return map[string][]string(values), nil
}
