package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Codec carries the plain Go message structs of this package as JSON.
// It is forced on both server and client, so no protobuf types are involved.
var Codec encoding.Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return "json" }

func init() {
	encoding.RegisterCodec(Codec)
}
