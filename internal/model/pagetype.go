package model

// pageTypeUnknownStr is the string representation for unclassified pages.
const pageTypeUnknownStr = "unknown"

// PageType represents the functional role of a page on a company website.
type PageType string

// Page type constants.
const (
	// PageTypeUnknown represents a page that matched no classification rule.
	PageTypeUnknown PageType = "unknown"
	// PageTypeHome represents the site's landing page.
	PageTypeHome PageType = "home"
	// PageTypeAbout represents a company/about page.
	PageTypeAbout PageType = "about"
	// PageTypeProducts represents a products, services, or catalog page.
	PageTypeProducts PageType = "products"
	// PageTypeContact represents a contact or inquiry page.
	PageTypeContact PageType = "contact"
	// PageTypeCertifications represents a certifications/compliance page.
	PageTypeCertifications PageType = "certifications"
	// PageTypeExport represents an export or international trade page.
	PageTypeExport PageType = "export"
)

// String returns the string representation of the PageType.
func (p PageType) String() string {
	if p == "" {
		return pageTypeUnknownStr
	}
	return string(p)
}

// IsValid returns true if this is a known page type.
func (p PageType) IsValid() bool {
	switch p {
	case PageTypeUnknown, PageTypeHome, PageTypeAbout, PageTypeProducts,
		PageTypeContact, PageTypeCertifications, PageTypeExport:
		return true
	default:
		return false
	}
}

// IsClassified returns true if the page was assigned a concrete type.
func (p PageType) IsClassified() bool {
	return p != "" && p != PageTypeUnknown
}

// ParsePageType converts a string to PageType.
func ParsePageType(s string) PageType {
	switch s {
	case "home", "homepage", "index":
		return PageTypeHome
	case "about", "about_us":
		return PageTypeAbout
	case "products", "product", "services", "catalog":
		return PageTypeProducts
	case "contact", "contacts":
		return PageTypeContact
	case "certifications", "certification", "compliance":
		return PageTypeCertifications
	case "export", "international":
		return PageTypeExport
	default:
		return PageTypeUnknown
	}
}

// AllPageTypes returns all concrete page types in report display order.
// PageTypeUnknown is listed last so reports surface classified pages first.
func AllPageTypes() []PageType {
	return []PageType{
		PageTypeHome,
		PageTypeAbout,
		PageTypeProducts,
		PageTypeContact,
		PageTypeCertifications,
		PageTypeExport,
		PageTypeUnknown,
	}
}

// CorePageTypes returns the page types a complete company site is
// expected to expose. Used for coverage analysis in site profiles.
func CorePageTypes() []PageType {
	return []PageType{
		PageTypeHome,
		PageTypeAbout,
		PageTypeProducts,
		PageTypeContact,
	}
}
