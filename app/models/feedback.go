package models

// RatingChoices are the accepted review ratings.
var RatingChoices = []float64{0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5}

// Review is a user's single review of a product.
type Review struct {
	ID          uint     `gorm:"primaryKey"`
	ReviewerID  uint     `gorm:"not null;uniqueIndex:idx_reviews_reviewer_product"`
	Reviewer    *User    `gorm:"foreignKey:ReviewerID;constraint:OnDelete:CASCADE"`
	ProductID   uint     `gorm:"not null;uniqueIndex:idx_reviews_reviewer_product;index"`
	Product     *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Rating      float64  `gorm:"not null;check:rating >= 0.5 AND rating <= 5"`
	Description string   `gorm:"type:text;not null;default:''"`
	Timestamps
}

// ProductLike records that a user likes a product.
type ProductLike struct {
	ID        uint     `gorm:"primaryKey"`
	LikerID   uint     `gorm:"not null;uniqueIndex:idx_product_likes_liker_product"`
	Liker     *User    `gorm:"foreignKey:LikerID;constraint:OnDelete:CASCADE"`
	ProductID uint     `gorm:"not null;uniqueIndex:idx_product_likes_liker_product;index"`
	Product   *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Timestamps
}

// ReviewLike records that a user likes a review.
type ReviewLike struct {
	ID       uint    `gorm:"primaryKey"`
	LikerID  uint    `gorm:"not null;uniqueIndex:idx_review_likes_liker_review"`
	Liker    *User   `gorm:"foreignKey:LikerID;constraint:OnDelete:CASCADE"`
	ReviewID uint    `gorm:"not null;uniqueIndex:idx_review_likes_liker_review;index"`
	Review   *Review `gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE"`
	Timestamps
}
