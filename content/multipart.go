package content

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
)

// Part is one body part of a multipart/form-data request. The
// specification does not require streaming (§4.2), so Body is fully
// buffered rather than exposed as a reader.
type Part struct {
	Headers textproto.MIMEHeader
	Body    []byte
}

// MultipartParser decodes "multipart/form-data" bodies into a []Part. The
// boundary parameter is not read by Parse itself: the caller takes it from
// the request's Content-Type header and sets Boundary (see resolveReserved
// in the relay package's reserved.go).
type MultipartParser struct {
	// Boundary is set by the caller before Parse is invoked, since the
	// boundary lives in Content-Type parameters rather than in the body.
	Boundary string
}

func (MultipartParser) MediaType() string { return "multipart/form-data" }

func (p MultipartParser) Parse(body []byte, text string) (any, error) {
	if p.Boundary == "" {
		return nil, &ParseError{MediaType: p.MediaType(), Err: mime.ErrInvalidMediaParameter}
	}

	r := multipart.NewReader(bytes.NewReader(body), p.Boundary)

	var parts []Part

	for {
		part, err := r.NextPart()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, &ParseError{MediaType: p.MediaType(), Err: err}
		}

		data, err := io.ReadAll(part)
		if err != nil {
			return nil, &ParseError{MediaType: p.MediaType(), Err: err}
		}

		parts = append(parts, Part{Headers: part.Header, Body: data})
	}

	return parts, nil
}
