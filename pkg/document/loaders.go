package document

import (
	"bytes"
	"io"
	"sort"

	"github.com/goccy/go-json"
	"github.com/magiconair/properties"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/stratumcfg/stratum/pkg/errors"
	"github.com/stratumcfg/stratum/pkg/property"
	"github.com/stratumcfg/stratum/pkg/resource"
	stringpool "github.com/stratumcfg/stratum/pkg/strings"
)

// DefaultLoaders returns the built-in loaders in probe order. Later loaders'
// documents end up with higher precedence when several formats exist at the
// same location.
func DefaultLoaders() []Loader {
	return []Loader{
		&PropertiesLoader{},
		&JSONLoader{},
		&YAMLLoader{},
	}
}

func layerName(name string, res resource.Resource, doc, total int) string {
	b := stringpool.GetBuilder(stringpool.Small)
	defer stringpool.PutBuilder(b, stringpool.Small)
	b.WriteString(name)
	b.WriteString(" [")
	b.WriteString(res.Location())
	b.WriteByte(']')
	if total > 1 {
		b.WriteString(stringpool.Sprintf(" (document #%d)", doc))
	}
	return b.String()
}

func readAll(res resource.Resource) ([]byte, error) {
	rc, err := res.Open()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeResource,
			"failed to open "+res.Location())
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeResource,
			"failed to read "+res.Location())
	}
	return data, nil
}

// PropertiesLoader parses Java-style .properties files. A properties file is
// always a single document.
type PropertiesLoader struct{}

func (l *PropertiesLoader) Name() string         { return "properties" }
func (l *PropertiesLoader) Extensions() []string { return []string{"properties"} }

// Load parses the file preserving key order. Placeholder expansion is
// disabled here; the merged stack resolves placeholders across layers.
func (l *PropertiesLoader) Load(name string, res resource.Resource) ([]*Document, error) {
	data, err := readAll(res)
	if err != nil {
		return nil, err
	}

	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeResource,
			"failed to parse "+res.Location())
	}
	if props.Len() == 0 {
		return nil, nil
	}

	layer := property.NewLayer(layerName(name, res, 0, 1))
	for _, key := range props.Keys() {
		v, _ := props.Get(key)
		layer.Set(key, v)
	}
	return []*Document{New(layer)}, nil
}

// YAMLLoader parses YAML files, including multi-document streams. Nested
// maps flatten to dotted keys and sequences to [index] suffixes, preserving
// the order keys appear in the file.
type YAMLLoader struct{}

func (l *YAMLLoader) Name() string         { return "yaml" }
func (l *YAMLLoader) Extensions() []string { return []string{"yml", "yaml"} }

func (l *YAMLLoader) Load(name string, res resource.Resource) ([]*Document, error) {
	data, err := readAll(res)
	if err != nil {
		return nil, err
	}

	var roots []*yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(err, errors.ErrorTypeResource,
				"failed to parse "+res.Location())
		}
		roots = append(roots, &node)
	}

	var flattened []*property.Layer
	for _, root := range roots {
		layer := property.NewLayer("")
		if err := flattenYAML(root, "", layer); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeResource,
				"failed to flatten "+res.Location())
		}
		if layer.Len() > 0 {
			flattened = append(flattened, layer)
		}
	}

	docs := make([]*Document, 0, len(flattened))
	for i, flat := range flattened {
		layer := property.NewLayer(layerName(name, res, i, len(flattened)))
		for _, key := range flat.Keys() {
			v, _ := flat.Get(key)
			layer.Set(key, v)
		}
		docs = append(docs, New(layer))
	}
	return docs, nil
}

func flattenYAML(node *yaml.Node, prefix string, layer *property.Layer) error {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			if err := flattenYAML(child, prefix, layer); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			if prefix != "" {
				key = prefix + "." + key
			}
			if err := flattenYAML(node.Content[i+1], key, layer); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for i, child := range node.Content {
			key := stringpool.Sprintf("%s[%d]", prefix, i)
			if err := flattenYAML(child, key, layer); err != nil {
				return err
			}
		}
	case yaml.ScalarNode:
		if prefix == "" {
			return nil
		}
		if node.Tag == "!!null" {
			layer.Set(prefix, "")
			return nil
		}
		layer.Set(prefix, node.Value)
	case yaml.AliasNode:
		if node.Alias != nil {
			return flattenYAML(node.Alias, prefix, layer)
		}
	}
	return nil
}

// JSONLoader parses JSON files. JSON objects have no reliable key order, so
// keys are sorted for determinism.
type JSONLoader struct{}

func (l *JSONLoader) Name() string         { return "json" }
func (l *JSONLoader) Extensions() []string { return []string{"json"} }

func (l *JSONLoader) Load(name string, res resource.Resource) ([]*Document, error) {
	data, err := readAll(res)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeResource,
			"failed to parse "+res.Location())
	}
	if len(parsed) == 0 {
		return nil, nil
	}

	layer := property.NewLayer(layerName(name, res, 0, 1))
	flattenJSON(parsed, "", layer)
	return []*Document{New(layer)}, nil
}

func flattenJSON(value interface{}, prefix string, layer *property.Layer) {
	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			full := key
			if prefix != "" {
				full = prefix + "." + key
			}
			flattenJSON(v[key], full, layer)
		}
	case []interface{}:
		for i, item := range v {
			flattenJSON(item, stringpool.Sprintf("%s[%d]", prefix, i), layer)
		}
	case nil:
		layer.Set(prefix, "")
	default:
		layer.Set(prefix, cast.ToString(v))
	}
}
