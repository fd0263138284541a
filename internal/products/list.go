package product

import (
	"github.com/mtaanigas/fulfillment-backend/pkg/pagination"
)

// ListFilters describe the supported filter knobs for the catalog endpoint.
type ListFilters struct {
	Query   string `json:"q,omitempty"`
	Size    string `json:"size,omitempty"`
	InStock *bool  `json:"in_stock,omitempty"`
}

// ListProductsInput captures the inputs needed to paginate/filter the catalog.
type ListProductsInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}
