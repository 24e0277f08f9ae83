package domain

// DisplaySettings controls which storefront sections are rendered.
type DisplaySettings struct {
	ShowFeaturedProducts  bool   `json:"showFeaturedProducts"`
	ShowRecentlyViewed    bool   `json:"showRecentlyViewed"`
	ShowAllProducts       bool   `json:"showAllProducts"`
	ShowAllImages         bool   `json:"showAllImages"`
	FeaturedProductsTitle string `json:"featuredProductsTitle"`
	FeaturedProductsCount int    `json:"featuredProductsCount"`
	RecentlyViewedCount   int    `json:"recentlyViewedCount"`
}

// GlobalSettings is the single site-wide configuration record exposed by
// the admin API.
type GlobalSettings struct {
	ID                 uint            `json:"id"`
	SiteName           string          `json:"siteName"`
	SiteDescription    string          `json:"siteDescription,omitempty"`
	MaintenanceMode    bool            `json:"maintenanceMode"`
	Currency           string          `json:"currency"`
	EmailNotifications bool            `json:"emailNotifications"`
	DisplaySettings    DisplaySettings `json:"displaySettings"`
}
