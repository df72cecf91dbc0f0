package catalog

type Product struct {
	ID          int64  `json:"id"`
	Art         string `json:"art"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Sizes       string `json:"sizes,omitempty"`
	Images      string `json:"images,omitempty"`
	WeightGrams int    `json:"weight_grams,omitempty"`
	Active      bool   `json:"active"`
}
