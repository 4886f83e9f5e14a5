// internal/nlu/models.go
package nlu

// Classification is the general-chat shape: what kind of question this is
// and, for small talk, a canned response to relay.
type Classification struct {
	Intent   string `json:"intent"`
	Category string `json:"category"`
	Response string `json:"response"`
}

// Intent categories the classifier may return.
const (
	CategorySalesOrder = "sales_order"
	CategoryProduct    = "product"
	CategoryGeneral    = "general"
)

// ProductAttributes is the product-search preprocessing shape.
type ProductAttributes struct {
	Product         string   `json:"product"`
	Color           string   `json:"color"`
	OtherAttributes []string `json:"other_attributes"`
}
