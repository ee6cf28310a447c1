// Package moviepb declares the popflix.RecommendService gRPC contract.
//
// Messages are plain Go structs carried with a JSON codec registered under
// the "json" content subtype, so no protoc step is needed. Clients select it
// with grpc.CallContentSubtype(CodecName); the server picks it up from the
// request content type.
//
// On the wire every call is application/grpc+json. Stock protobuf tooling
// (grpcurl, stubs generated by protoc-gen-go-grpc) speaks application/grpc
// with the proto codec and is not supported; use NewRecommendServiceClient
// or any client that sets the "json" content subtype.
package moviepb

import (
	"github.com/goccy/go-json"
	"google.golang.org/grpc/encoding"
)

const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
