package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName 客户端需通过 grpc.CallContentSubtype(CodecName) 使用 json 编码
const CodecName = "json"

func init() {
	encoding.RegisterCodec(JSONCodec{})
}

var _ encoding.Codec = JSONCodec{}

// JSONCodec 以 json 编码 gRPC 消息，请求响应直接使用 Go 结构体
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("[educafric] json codec marshal %T: %w", v, err)
	}
	return data, nil
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("[educafric] json codec unmarshal %T: %w", v, err)
	}
	return nil
}

func (JSONCodec) Name() string {
	return CodecName
}
