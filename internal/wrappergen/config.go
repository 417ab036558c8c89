package wrappergen

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// maxRefDepth bounds chains of $ref pointing at other $ref nodes.
const maxRefDepth = 32

var ErrBadRef = errors.New("unresolvable $ref")

// LoadConfig reads a cluster configuration and resolves local $ref nodes.
func LoadConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a YAML or JSON cluster configuration and replaces every
// {"$ref": "#/pointer"} node with the value it points at.
func ParseConfig(data []byte) (map[string]any, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse cluster config: %w", err)
	}
	if root == nil {
		return nil, errors.New("cluster config is empty")
	}
	out, err := resolveRefs(root, root, 0)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

func resolveRefs(node any, root map[string]any, depth int) (any, error) {
	if depth > maxRefDepth {
		return nil, fmt.Errorf("%w: reference chain deeper than %d", ErrBadRef, maxRefDepth)
	}
	switch n := node.(type) {
	case map[string]any:
		if ref, ok := n["$ref"].(string); ok && len(n) == 1 {
			target, err := lookupPointer(root, ref)
			if err != nil {
				return nil, err
			}
			return resolveRefs(target, root, depth+1)
		}
		out := make(map[string]any, len(n))
		for k, v := range n {
			r, err := resolveRefs(v, root, depth)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			r, err := resolveRefs(v, root, depth)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return node, nil
	}
}

// lookupPointer follows an RFC 6901 fragment such as "#/cluster/tcdm".
func lookupPointer(root map[string]any, ref string) (any, error) {
	if !strings.HasPrefix(ref, "#") {
		return nil, fmt.Errorf("%w: %q is not a local reference", ErrBadRef, ref)
	}
	ptr := strings.TrimPrefix(ref, "#")
	if ptr == "" {
		return root, nil
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, fmt.Errorf("%w: %q", ErrBadRef, ref)
	}
	var cur any = root
	for _, tok := range strings.Split(ptr[1:], "/") {
		tok = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[tok]
			if !ok {
				return nil, fmt.Errorf("%w: %q has no key %q", ErrBadRef, ref, tok)
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(c) {
				return nil, fmt.Errorf("%w: %q has no index %q", ErrBadRef, ref, tok)
			}
			cur = c[i]
		default:
			return nil, fmt.Errorf("%w: %q walks into a scalar at %q", ErrBadRef, ref, tok)
		}
	}
	return cur, nil
}

// clusterView is the typed subset of the configuration the generator reads.
type clusterView struct {
	Cluster struct {
		DataWidth    int `json:"data_width"`
		DMADataWidth int `json:"dma_data_width"`
		TCDM         struct {
			Size  int `json:"size"`
			Banks int `json:"banks"`
		} `json:"tcdm"`
		Hives []struct {
			Cores []map[string]any `json:"cores"`
		} `json:"hives"`
	} `json:"cluster"`
}

func decodeView(cfg map[string]any) (clusterView, error) {
	var v clusterView
	raw, err := json.Marshal(cfg)
	if err != nil {
		return v, fmt.Errorf("encode cluster config: %w", err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode cluster config: %w", err)
	}
	return v, nil
}
