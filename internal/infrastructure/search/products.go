// Package search keeps the Elasticsearch product index.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/fittinglab/storefront/internal/domain/entity"
)

const productMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "handle":      {"type": "keyword"},
      "title":       {"type": "text", "analyzer": "german"},
      "subtitle":    {"type": "text", "analyzer": "german"},
      "description": {"type": "text", "analyzer": "german"},
      "thumbnail":   {"type": "keyword", "index": false},
      "skus":        {"type": "keyword"},
      "min_price":   {"type": "double"}
    }
  }
}`

// Hit is one product returned by a search.
type Hit struct {
	ID        string  `json:"id"`
	Handle    string  `json:"handle"`
	Title     string  `json:"title"`
	Subtitle  string  `json:"subtitle,omitempty"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	MinPrice  float64 `json:"min_price"`
	Score     float64 `json:"score"`
}

type document struct {
	ID          string   `json:"id"`
	Handle      string   `json:"handle"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Description string   `json:"description,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	SKUs        []string `json:"skus,omitempty"`
	MinPrice    float64  `json:"min_price"`
}

// MinPrice is the cheapest calculated variant price, 0 when no variant is priced.
func MinPrice(p entity.Product) float64 {
	lowest := 0.0
	for _, v := range p.Variants {
		if v.CalculatedPrice == nil {
			continue
		}
		if lowest == 0 || v.CalculatedPrice.CalculatedAmount < lowest {
			lowest = v.CalculatedPrice.CalculatedAmount
		}
	}
	return lowest
}

func toDocument(p entity.Product) document {
	d := document{
		ID:          p.ID,
		Handle:      p.Handle,
		Title:       p.Title,
		Subtitle:    p.Subtitle,
		Description: p.Description,
		Thumbnail:   p.Thumbnail,
		MinPrice:    MinPrice(p),
	}
	for _, v := range p.Variants {
		if v.SKU != "" {
			d.SKUs = append(d.SKUs, v.SKU)
		}
	}
	return d
}

type ProductIndex struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewProductIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *ProductIndex {
	return &ProductIndex{ES: es, Index: index, Logger: logger}
}

// EnsureIndex creates the index with the German analyzers when it does not exist yet.
func (x *ProductIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := esapi.IndicesExistsRequest{Index: []string{x.Index}}.Do(c, x.ES)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{Index: x.Index, Body: strings.NewReader(productMapping)}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", x.Index, res.Status())
	}
	return nil
}

// IndexProducts upserts products with one bulk request.
func (x *ProductIndex) IndexProducts(ctx context.Context, products []entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range products {
		meta := map[string]any{"index": map[string]any{"_index": x.Index, "_id": p.ID}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(toDocument(p)); err != nil {
			return err
		}
	}

	c, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	res, err := esapi.BulkRequest{Body: &buf, Refresh: "true"}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("bulk index %s: %s", x.Index, res.Status())
	}

	var parsed struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID    string `json:"_id"`
			Error *struct {
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return err
	}
	if parsed.Errors {
		failed := 0
		for _, item := range parsed.Items {
			for _, r := range item {
				if r.Error != nil {
					failed++
					if x.Logger != nil {
						x.Logger.WithField("product_id", r.ID).WithField("reason", r.Error.Reason).Warn("es bulk item failed")
					}
				}
			}
		}
		return fmt.Errorf("bulk index %s: %d of %d documents failed", x.Index, failed, len(products))
	}
	return nil
}

// Search runs a multi_match over title, subtitle, description and SKUs.
func (x *ProductIndex) Search(ctx context.Context, q string, size int) ([]Hit, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"title^3", "subtitle^2", "description", "skus"},
				"fuzziness": "AUTO",
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Index), x.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", x.Index, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Score  float64  `json:"_score"`
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		d := h.Source
		out = append(out, Hit{ID: d.ID, Handle: d.Handle, Title: d.Title, Subtitle: d.Subtitle, Thumbnail: d.Thumbnail, MinPrice: d.MinPrice, Score: h.Score})
	}
	return out, nil
}
