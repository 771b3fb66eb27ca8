// Package codec provides the payload encodings placeholder sources use.
//
// Every codec implements replica.Codec. Lookup maps a MIME type to its codec
// so a source can store the content type next to the payload.
package codec

import (
	"encoding/json"
	"encoding/xml"
	"mime"
	"sort"

	"github.com/zoobzio/replica"
	"go.mongodb.org/mongo-driver/bson"
)

var byContentType = map[string]func() replica.Codec{
	"application/json":    JSON,
	"application/xml":     XML,
	"application/yaml":    YAML,
	"application/msgpack": MsgPack,
	"application/bson":    BSON,
}

// funcCodec adapts a package-level Marshal/Unmarshal pair.
type funcCodec struct {
	contentType string
	marshal     func(any) ([]byte, error)
	unmarshal   func([]byte, any) error
}

func (c funcCodec) ContentType() string                { return c.contentType }
func (c funcCodec) Marshal(v any) ([]byte, error)      { return c.marshal(v) }
func (c funcCodec) Unmarshal(data []byte, v any) error { return c.unmarshal(data, v) }

// JSON returns a codec backed by encoding/json.
func JSON() replica.Codec {
	return funcCodec{"application/json", json.Marshal, json.Unmarshal}
}

// XML returns an XML codec. Payload types need xml tags or an XMLName field
// to round-trip; an untagged struct is encoded under its Go type name.
func XML() replica.Codec {
	return funcCodec{"application/xml", xml.Marshal, xml.Unmarshal}
}

// BSON returns a BSON codec backed by the MongoDB driver.
// Payloads must be documents: structs, maps or bson.D. A bare string or slice
// fails to marshal.
func BSON() replica.Codec {
	return funcCodec{"application/bson", bson.Marshal, bson.Unmarshal}
}

// Lookup returns the codec for a MIME type. Parameters such as
// "; charset=utf-8" are ignored.
func Lookup(contentType string) (replica.Codec, bool) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, false
	}
	newCodec, ok := byContentType[mt]
	if !ok {
		return nil, false
	}
	return newCodec(), true
}

// ContentTypes lists the MIME types Lookup understands, sorted.
func ContentTypes() []string {
	types := make([]string, 0, len(byContentType))
	for ct := range byContentType {
		types = append(types, ct)
	}
	sort.Strings(types)
	return types
}
