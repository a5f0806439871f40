package property

import (
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/stratumcfg/stratum/pkg/errors"
	stringpool "github.com/stratumcfg/stratum/pkg/strings"
)

// Bind collects the subtree rooted at key across every layer of the stack
// (higher-precedence layers override lower ones), resolves required
// placeholders against the full stack, and decodes the result into out.
//
// Scalar values bind onto strings, numbers, booleans and durations; a scalar
// bound onto a string slice is split on commas. Indexed child keys
// (key[0], key[1], ...) bind onto slices. A key with no value in any layer
// yields a not_found error; an unresolvable required placeholder yields a
// placeholder error that fails only this binding request.
func Bind(stack *Stack, key string, out interface{}) error {
	flat := gather(stack, key)
	if len(flat) == 0 {
		return errors.Newf(errors.ErrorTypeNotFound, "no property bound for key %q", key)
	}

	resolver := NewResolver(stack)
	for path, raw := range flat {
		resolved, err := resolver.ResolveRequired(raw)
		if err != nil {
			return err
		}
		flat[path] = resolved
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeBinding, "failed to construct binder")
	}
	if err := decoder.Decode(buildTree(flat)); err != nil {
		return errors.Wrap(err, errors.ErrorTypeBinding,
			stringpool.Sprintf("failed to bind key %q", key))
	}
	return nil
}

// ListValue reads a string-list value through get. A scalar value is split
// on commas; when the key itself is absent, indexed children (key[0],
// key[1], ...) are collected in order instead, so list-shaped document
// values and comma-separated scalars read the same. Items are trimmed and
// empty items dropped; nil when neither shape is present.
func ListValue(get func(string) (string, bool), key string) []string {
	if v, ok := get(key); ok {
		return splitList(v)
	}
	var out []string
	for i := 0; ; i++ {
		v, ok := get(key + "[" + strconv.Itoa(i) + "]")
		if !ok {
			break
		}
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// gather walks the stack lowest precedence first so that later layers
// overwrite earlier values for the same relative path.
func gather(stack *Stack, key string) map[string]string {
	flat := make(map[string]string)
	for _, layer := range stack.Layers() {
		for _, k := range layer.Keys() {
			var rel string
			switch {
			case k == key:
				rel = ""
			case strings.HasPrefix(k, key+"."):
				rel = k[len(key)+1:]
			case strings.HasPrefix(k, key+"["):
				rel = k[len(key):]
			default:
				continue
			}
			v, _ := layer.Get(k)
			flat[rel] = v
		}
	}
	return flat
}

// buildTree converts flattened dotted/indexed paths into nested maps and
// slices suitable for mapstructure decoding.
func buildTree(flat map[string]string) interface{} {
	if v, ok := flat[""]; ok && len(flat) == 1 {
		return v
	}

	var root interface{}
	for path, value := range flat {
		if path == "" {
			// Children take precedence over a bare scalar at the same key.
			continue
		}
		root = setPath(root, tokenize(path), value)
	}
	return root
}

type pathToken struct {
	key     string
	index   int
	isIndex bool
}

func tokenize(path string) []pathToken {
	var tokens []pathToken
	i := 0
	for i < len(path) {
		switch path[i] {
		case '.':
			i++
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				// Malformed index, treat the remainder as a literal key.
				tokens = append(tokens, pathToken{key: path[i:]})
				return tokens
			}
			idx, err := strconv.Atoi(path[i+1 : i+end])
			if err != nil {
				tokens = append(tokens, pathToken{key: path[i+1 : i+end]})
			} else {
				tokens = append(tokens, pathToken{index: idx, isIndex: true})
			}
			i += end + 1
		default:
			end := strings.IndexAny(path[i:], ".[")
			if end < 0 {
				tokens = append(tokens, pathToken{key: path[i:]})
				return tokens
			}
			tokens = append(tokens, pathToken{key: path[i : i+end]})
			i += end
		}
	}
	return tokens
}

func setPath(node interface{}, tokens []pathToken, value string) interface{} {
	if len(tokens) == 0 {
		return value
	}
	t := tokens[0]
	if t.isIndex {
		slice, _ := node.([]interface{})
		for len(slice) <= t.index {
			slice = append(slice, nil)
		}
		slice[t.index] = setPath(slice[t.index], tokens[1:], value)
		return slice
	}
	m, _ := node.(map[string]interface{})
	if m == nil {
		m = make(map[string]interface{})
	}
	m[t.key] = setPath(m[t.key], tokens[1:], value)
	return m
}

