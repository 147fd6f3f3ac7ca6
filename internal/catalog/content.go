package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fittinglab/storefront/internal/domain/entity"
)

// Content maps product handles to editorial copy.
type Content map[string]entity.ProductContent

// LoadContent reads the YAML content file. A missing file yields empty content.
func LoadContent(path string) (Content, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Content{}, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseContent(b)
}

func ParseContent(b []byte) (Content, error) {
	var items []entity.ProductContent
	if err := yaml.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("parse product content: %w", err)
	}
	out := make(Content, len(items))
	for _, it := range items {
		h := strings.TrimSpace(it.Handle)
		if h == "" {
			return nil, errors.New("parse product content: entry without handle")
		}
		if _, dup := out[h]; dup {
			return nil, fmt.Errorf("parse product content: duplicate handle %q", h)
		}
		it.LongDescription = strings.TrimSpace(it.LongDescription)
		out[h] = it
	}
	return out, nil
}

func (c Content) For(handle string) *entity.ProductContent {
	it, ok := c[handle]
	if !ok {
		return nil
	}
	return &it
}
