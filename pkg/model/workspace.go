package model

import (
	"time"

	"bookmyworkspace/pkg/checkout"
)

type Workspace struct {
	ID            string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID       string          `json:"owner_id" bson:"owner_id" validate:"required,max=64"`
	Name          string          `json:"name" bson:"name" validate:"required,min=2,max=120"`
	City          string          `json:"city" bson:"city" validate:"required,min=2,max=60"`
	Area          string          `json:"area" bson:"area" validate:"required,min=2,max=80"`
	Address       string          `json:"address" bson:"address" validate:"required,min=5,max=300"`
	Description   string          `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	PricePerHour  *int64          `json:"price_per_hour,omitempty" bson:"price_per_hour,omitempty" validate:"omitempty,gt=0"`
	PricePerDay   int64           `json:"price_per_day" bson:"price_per_day" validate:"required,gt=0"`
	PricePerWeek  *int64          `json:"price_per_week,omitempty" bson:"price_per_week,omitempty" validate:"omitempty,gt=0"`
	PricePerMonth *int64          `json:"price_per_month,omitempty" bson:"price_per_month,omitempty" validate:"omitempty,gt=0"`
	Capacity      int             `json:"capacity" bson:"capacity" validate:"required,min=1,max=10000"`
	Amenities     []string        `json:"amenities" bson:"amenities" validate:"omitempty,max=30,dive,amenity"`
	Images        []string        `json:"images" bson:"images" validate:"omitempty,max=20,dive,url"`
	IsPremium     bool            `json:"is_premium" bson:"is_premium"`
	HasVideoTour  bool            `json:"has_video_tour" bson:"has_video_tour"`
	Rating        float64         `json:"rating" bson:"rating" validate:"gte=0,lte=5"`
	ReviewCount   int             `json:"review_count" bson:"review_count" validate:"gte=0"`
	ContactEmail  string          `json:"contact_email,omitempty" bson:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone  string          `json:"contact_phone,omitempty" bson:"contact_phone,omitempty" validate:"omitempty,e164"`
	Plans         []checkout.Plan `json:"plans" bson:"plans" validate:"required,min=1,max=10,unique=ID,dive"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" bson:"updated_at"`
}

// Plan returns the workspace plan with the given id.
func (w *Workspace) Plan(id string) (checkout.Plan, bool) {
	for _, p := range w.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return checkout.Plan{}, false
}

// WorkspaceUpdate carries the editable fields of a listing. Plans are fixed
// at creation and cannot be changed.
type WorkspaceUpdate struct {
	Name          string    `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty,min=2,max=120"`
	City          string    `json:"city,omitempty" bson:"city,omitempty" validate:"omitempty,min=2,max=60"`
	Area          string    `json:"area,omitempty" bson:"area,omitempty" validate:"omitempty,min=2,max=80"`
	Address       string    `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,min=5,max=300"`
	Description   *string   `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	PricePerHour  *int64    `json:"price_per_hour,omitempty" bson:"price_per_hour,omitempty" validate:"omitempty,gt=0"`
	PricePerDay   *int64    `json:"price_per_day,omitempty" bson:"price_per_day,omitempty" validate:"omitempty,gt=0"`
	PricePerWeek  *int64    `json:"price_per_week,omitempty" bson:"price_per_week,omitempty" validate:"omitempty,gt=0"`
	PricePerMonth *int64    `json:"price_per_month,omitempty" bson:"price_per_month,omitempty" validate:"omitempty,gt=0"`
	Capacity      *int      `json:"capacity,omitempty" bson:"capacity,omitempty" validate:"omitempty,min=1,max=10000"`
	Amenities     *[]string `json:"amenities,omitempty" bson:"amenities,omitempty" validate:"omitempty,max=30,dive,amenity"`
	Images        *[]string `json:"images,omitempty" bson:"images,omitempty" validate:"omitempty,max=20,dive,url"`
	IsPremium     *bool     `json:"is_premium,omitempty" bson:"is_premium,omitempty"`
	HasVideoTour  *bool     `json:"has_video_tour,omitempty" bson:"has_video_tour,omitempty"`
	ContactEmail  *string   `json:"contact_email,omitempty" bson:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone  *string   `json:"contact_phone,omitempty" bson:"contact_phone,omitempty" validate:"omitempty,e164"`
}

const (
	SortByRating    = "rating"
	SortByCreatedAt = "created_at"
)

// WorkspaceFilter narrows a listing search. Zero values mean "any".
type WorkspaceFilter struct {
	Location  string   `json:"location,omitempty"`
	Amenities []string `json:"amenities,omitempty"`
	MinPrice  *int64   `json:"min_price,omitempty"`
	MaxPrice  *int64   `json:"max_price,omitempty"`
	Premium   *bool    `json:"premium,omitempty"`
	OwnerID   string   `json:"owner_id,omitempty"`
	Sort      string   `json:"sort,omitempty"`
}
