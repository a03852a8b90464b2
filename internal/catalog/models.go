package catalog

import "time"

const (
	AvailabilityInStock    = "In Stock"
	AvailabilityLowStock   = "Low Stock"
	AvailabilityOutOfStock = "Out of Stock"
)

type Product struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Category             string     `json:"category"`
	Price                float64    `json:"price"`
	DiscountPercentage   float64    `json:"discountPercentage"`
	Rating               float64    `json:"rating"`
	Stock                int        `json:"stock"`
	Tags                 []string   `json:"tags"`
	Brand                string     `json:"brand,omitempty"`
	SKU                  string     `json:"sku"`
	Weight               float64    `json:"weight"`
	Dimensions           Dimensions `json:"dimensions"`
	WarrantyInformation  string     `json:"warrantyInformation,omitempty"`
	ShippingInformation  string     `json:"shippingInformation,omitempty"`
	AvailabilityStatus   string     `json:"availabilityStatus"`
	Reviews              []Review   `json:"reviews"`
	ReturnPolicy         string     `json:"returnPolicy,omitempty"`
	MinimumOrderQuantity int        `json:"minimumOrderQuantity"`
	Meta                 Meta       `json:"meta"`
	Images               []string   `json:"images"`
	Thumbnail            string     `json:"thumbnail"`
}

type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

type Review struct {
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	Date          time.Time `json:"date"`
	ReviewerName  string    `json:"reviewerName"`
	ReviewerEmail string    `json:"reviewerEmail"`
}

type Meta struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Barcode   string    `json:"barcode,omitempty"`
	QRCode    string    `json:"qrCode,omitempty"`
}

// normalize fills defaults so the stored document never carries null lists.
func (p *Product) normalize(now time.Time) {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Reviews == nil {
		p.Reviews = []Review{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Meta.CreatedAt.IsZero() {
		p.Meta.CreatedAt = now
	}
	if p.Meta.UpdatedAt.IsZero() {
		p.Meta.UpdatedAt = p.Meta.CreatedAt
	}
	if p.AvailabilityStatus == "" {
		p.AvailabilityStatus = availabilityFor(p.Stock)
	}
}

func availabilityFor(stock int) string {
	switch {
	case stock <= 0:
		return AvailabilityOutOfStock
	case stock < 10:
		return AvailabilityLowStock
	default:
		return AvailabilityInStock
	}
}
