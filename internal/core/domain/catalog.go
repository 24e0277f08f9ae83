package domain

// Shop is a storefront owned by one user and staffed by zero or more
// employees. Field tags mirror the marketplace API's mixed-case JSON.
type Shop struct {
	ID          uint      `json:"ID"`
	Name        string    `json:"name"`
	Slug        string    `json:"Slug"`
	Description string    `json:"description,omitempty"`
	Moto        string    `json:"moto,omitempty"`
	City        string    `json:"City,omitempty"`
	OwnerID     uint      `json:"owner_id"`
	Owner       *User     `json:"owner,omitempty"`
	Employees   []User    `json:"employees,omitempty"`
	Products    []Product `json:"products,omitempty"`
}

// OwnerIdentity satisfies Owned.
func (s *Shop) OwnerIdentity() uint { return s.OwnerID }

// MemberIdentities satisfies Membered with the employee IDs.
func (s *Shop) MemberIdentities() []uint {
	ids := make([]uint, 0, len(s.Employees))
	for _, e := range s.Employees {
		ids = append(ids, e.ID)
	}
	return ids
}

// Category groups products for browsing.
type Category struct {
	ID          uint   `json:"ID"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Product is a sellable item listed in a shop.
type Product struct {
	ID          uint           `json:"ID"`
	Name        string         `json:"name"`
	Price       float64        `json:"price"`
	Stock       int            `json:"stock"`
	Description string         `json:"description,omitempty"`
	Slug        string         `json:"Slug"`
	ShopID      uint           `json:"shop_id"`
	Shop        *Shop          `json:"shop,omitempty"`
	Categories  []Category     `json:"categories,omitempty"`
	Images      []ProductImage `json:"images,omitempty"`
}

// ProductImage is a stored image attached to a product.
type ProductImage struct {
	ID        uint   `json:"ID"`
	ProductID uint   `json:"product_id"`
	URL       string `json:"url"`
	AltText   string `json:"alt_text,omitempty"`
	IsPrimary bool   `json:"is_primary,omitempty"`
}
