package content

import "github.com/vmihailenco/msgpack/v5"

// MsgpackRenderer serializes a handler's return value as MessagePack, a
// vendor content type registerable the same way JSON/TOML/YAML are,
// mirroring the teacher's `Response.WriteMsgpack`.
type MsgpackRenderer struct{}

func (MsgpackRenderer) MediaType() string { return "application/x-msgpack" }
func (MsgpackRenderer) Charset() string   { return "" }

func (MsgpackRenderer) Render(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}
