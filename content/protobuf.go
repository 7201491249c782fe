package content

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

// ErrNotProtoMessage is returned when ProtobufRenderer is asked to render
// a value that does not implement proto.Message.
var ErrNotProtoMessage = errors.New("content: value does not implement proto.Message")

// ProtobufRenderer serializes a handler's return value as protobuf wire
// format. Only usable when the handler result implements proto.Message.
// Accept-header negotiation does not look at Go types, so a route whose
// result is not a proto.Message can still select this renderer; Render
// then returns ErrNotProtoMessage.
type ProtobufRenderer struct{}

func (ProtobufRenderer) MediaType() string { return "application/x-protobuf" }
func (ProtobufRenderer) Charset() string   { return "" }

func (ProtobufRenderer) Render(v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, ErrNotProtoMessage
	}

	return proto.Marshal(msg)
}
