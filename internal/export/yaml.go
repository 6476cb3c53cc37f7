package export

import "gopkg.in/yaml.v3"

type YAMLEncoder struct{}

func (YAMLEncoder) ContentType() string { return "application/yaml" }

func (YAMLEncoder) Extension() string { return "yaml" }

func (YAMLEncoder) EncodeRows(rows []Row) ([]byte, error) {
	out := make([]flatRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, flatten(r))
	}
	return yaml.Marshal(out)
}
