package models

// Category groups products. Titles are unique.
type Category struct {
	ID    uint   `gorm:"primaryKey"`
	Title string `gorm:"size:20;not null;uniqueIndex:idx_categories_title"`
	Timestamps
}

// Tag labels products. Titles are unique.
type Tag struct {
	ID    uint   `gorm:"primaryKey"`
	Title string `gorm:"size:20;not null;uniqueIndex:idx_tags_title"`
	Timestamps
}

// Product is sold by its vendor. Deleting the category leaves the product
// uncategorised; deleting the vendor deletes the product.
type Product struct {
	ID          uint      `gorm:"primaryKey"`
	VendorID    uint      `gorm:"not null;index"`
	Vendor      *User     `gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE"`
	CategoryID  *uint     `gorm:"index"`
	Category    *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Tags        []Tag     `gorm:"many2many:product_tags;constraint:OnDelete:CASCADE"`
	Title       string    `gorm:"size:100;not null"`
	Price       int64     `gorm:"not null;check:price >= 0"`
	Description string    `gorm:"type:text;not null;default:''"`
	Timestamps
}

// TagIDs returns the ids of the loaded tags.
func (p *Product) TagIDs() []uint {
	ids := make([]uint, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
