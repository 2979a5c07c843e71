package cart

import (
	"github.com/shopspring/decimal"

	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
)

type quantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// cartResponse adds the derived totals the storefront badge and summary show.
type cartResponse struct {
	*cartsvc.Cart
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

func toResponse(c *cartsvc.Cart) cartResponse {
	if c.Lines == nil {
		c.Lines = []cartsvc.Line{}
	}
	return cartResponse{Cart: c, Count: c.Count(), Total: c.Total()}
}
