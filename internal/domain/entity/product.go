package entity

// Product mirrors a Medusa store product with variants, options and images expanded.
type Product struct {
	ID          string          `json:"id"`
	Handle      string          `json:"handle"`
	Title       string          `json:"title"`
	Subtitle    string          `json:"subtitle,omitempty"`
	Description string          `json:"description,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	Images      []Image         `json:"images,omitempty"`
	Options     []ProductOption `json:"options,omitempty"`
	Variants    []Variant       `json:"variants,omitempty"`
}

type Image struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type ProductOption struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Values []Option `json:"values,omitempty"`
}

type Option struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

type Variant struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	SKU             string           `json:"sku,omitempty"`
	CalculatedPrice *CalculatedPrice `json:"calculated_price,omitempty"`
	Product         *Product         `json:"product,omitempty"`
}

type CalculatedPrice struct {
	CalculatedAmount float64 `json:"calculated_amount"`
	OriginalAmount   float64 `json:"original_amount"`
	CurrencyCode     string  `json:"currency_code"`
}

// ProductContent is editorial copy kept next to the backend, keyed by product handle.
type ProductContent struct {
	Handle                 string         `yaml:"handle" json:"handle"`
	LongDescription        string         `yaml:"long_description" json:"long_description,omitempty"`
	Specs                  []Spec         `yaml:"specs" json:"specs,omitempty"`
	SupportedManufacturers []Manufacturer `yaml:"supported_manufacturers" json:"supported_manufacturers,omitempty"`
	ImageSrc               string         `yaml:"image_src" json:"image_src,omitempty"`
	ImageColor             string         `yaml:"image_color" json:"image_color,omitempty"`
	PriceLabel             string         `yaml:"price_label" json:"price_label,omitempty"`
}

type Spec struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

type Manufacturer struct {
	Name string `yaml:"name" json:"name"`
	Logo string `yaml:"logo" json:"logo"`
}
