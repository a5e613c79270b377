package tour

import "time"

type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyDifficult:
		return true
	default:
		return false
	}
}

type Tour struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Duration        int         `json:"duration"`
	MaxGroupSize    int         `json:"maxGroupSize"`
	Difficulty      Difficulty  `json:"difficulty"`
	RatingsAverage  float64     `json:"ratingsAverage"`
	RatingsQuantity int         `json:"ratingsQuantity"`
	Price           float64     `json:"price"`
	PriceDiscount   *float64    `json:"priceDiscount,omitempty"`
	Summary         string      `json:"summary"`
	Description     string      `json:"description,omitempty"`
	ImageCover      string      `json:"imageCover,omitempty"`
	Images          []string    `json:"images,omitempty"`
	StartDates      []time.Time `json:"startDates,omitempty"`
	// secret tours are hidden from default listings
	Secret    bool      `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateTourRequest struct {
	Name           string      `json:"name" binding:"required,min=10,max=40"`
	Duration       int         `json:"duration" binding:"required,gt=0"`
	MaxGroupSize   int         `json:"maxGroupSize" binding:"required,gt=0"`
	Difficulty     Difficulty  `json:"difficulty" binding:"required,oneof=easy medium difficult"`
	RatingsAverage float64     `json:"ratingsAverage" binding:"omitempty,min=1,max=5"`
	Price          float64     `json:"price" binding:"required,gt=0"`
	PriceDiscount  float64     `json:"priceDiscount" binding:"omitempty,gt=0,ltfield=Price"`
	Summary        string      `json:"summary" binding:"required,max=200"`
	Description    string      `json:"description" binding:"omitempty,max=2000"`
	ImageCover     string      `json:"imageCover" binding:"omitempty,max=255"`
	Images         []string    `json:"images" binding:"omitempty,dive,max=255"`
	StartDates     []time.Time `json:"startDates"`
	Secret         bool        `json:"secret"`
}

// partial update, every field optional
type UpdateTourRequest struct {
	Name           *string     `json:"name" binding:"omitempty,min=10,max=40"`
	Duration       *int        `json:"duration" binding:"omitempty,gt=0"`
	MaxGroupSize   *int        `json:"maxGroupSize" binding:"omitempty,gt=0"`
	Difficulty     *Difficulty `json:"difficulty" binding:"omitempty,oneof=easy medium difficult"`
	RatingsAverage *float64    `json:"ratingsAverage" binding:"omitempty,min=1,max=5"`
	Price          *float64    `json:"price" binding:"omitempty,gt=0"`
	PriceDiscount  *float64    `json:"priceDiscount" binding:"omitempty,gt=0"`
	Summary        *string     `json:"summary" binding:"omitempty,max=200"`
	Description    *string     `json:"description" binding:"omitempty,max=2000"`
	ImageCover     *string     `json:"imageCover" binding:"omitempty,max=255"`
	Images         []string    `json:"images" binding:"omitempty,dive,max=255"`
	StartDates     []time.Time `json:"startDates"`
	Secret         *bool       `json:"secret"`
}

// Stats is one aggregate row per difficulty.
type Stats struct {
	Difficulty Difficulty `json:"difficulty"`
	NumTours   int        `json:"numTours"`
	AvgRating  float64    `json:"avgRating"`
	AvgPrice   float64    `json:"avgPrice"`
	MinPrice   float64    `json:"minPrice"`
	MaxPrice   float64    `json:"maxPrice"`
}
