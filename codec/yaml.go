package codec

import (
	"bytes"
	"errors"
	"io"

	"github.com/zoobzio/replica"
	"gopkg.in/yaml.v3"
)

// yamlCodec implements replica.Codec for YAML.
type yamlCodec struct{}

// YAML returns a YAML codec. Unmarshal reads the first document only.
func YAML() replica.Codec {
	return yamlCodec{}
}

func (yamlCodec) ContentType() string { return "application/yaml" }

func (yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	err := yaml.NewDecoder(bytes.NewReader(data)).Decode(v)
	if errors.Is(err, io.EOF) {
		// empty payload leaves v untouched, like yaml.Unmarshal
		return nil
	}
	return err
}
