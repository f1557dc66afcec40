package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadFile reads a YAML document and flattens it into variable names, so that
//
//	http:
//	  server_addr: ":9090"
//
// resolves the same variable as HTTP_SERVER_ADDR.
func loadFile(path string) (map[string]string, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(buf, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	values := make(map[string]string)
	flatten("", doc, values)

	return values, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for key, value := range node {
		name := strings.ToUpper(prefix + key)

		switch v := value.(type) {
		case map[string]any:
			flatten(name+"_", v, out)
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				items = append(items, fmt.Sprint(item))
			}

			out[name] = strings.Join(items, ",")
		case nil:
			out[name] = ""
		default:
			out[name] = fmt.Sprint(v)
		}
	}
}
