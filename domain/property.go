package domain

import (
	"encoding/json"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Property struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	HostID       string               `bson:"host_id" json:"host_id"`
	Name         string               `bson:"property_name" json:"property_name"`
	Location     string               `bson:"property_location" json:"property_location"`
	Pricing      PropertyPricing      `bson:"pricing" json:"pricing"`
	Availability PropertyAvailability `bson:"availability" json:"availability"`
}

type PropertyPricing struct {
	BasePrice      float64 `bson:"base_price" json:"base_price"`
	Currency       string  `bson:"currency" json:"currency"`
	CleaningFee    float64 `bson:"cleaning_fee" json:"cleaning_fee"`
	TaxRatePercent float64 `bson:"tax_rate_percent" json:"tax_rate_percent"`
}

type PropertyAvailability struct {
	IsActive          bool               `bson:"is_active" json:"is_active"`
	MinimumStay       int                `bson:"minimum_stay" json:"minimum_stay"`
	MaximumStay       int                `bson:"maximum_stay" json:"maximum_stay"`
	BlockedDateRanges []BlockedDateRange `bson:"blocked_date_ranges" json:"blocked_date_ranges"`
}

// Blocked ranges may overlap each other; a date range is blocked if it
// intersects any entry.
type BlockedDateRange struct {
	Start  time.Time `bson:"start" json:"start"`
	End    time.Time `bson:"end" json:"end"`
	Reason string    `bson:"reason" json:"reason"`
}

// Overlaps uses inclusive boundaries on both ends, so back-to-back stays that
// touch on the same day count as conflicting.
func (r BlockedDateRange) Overlaps(checkIn, checkOut time.Time) bool {
	return !checkIn.After(r.End) && !checkOut.Before(r.Start)
}

type Properties []*Property

func (o *Property) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(o)
}

func (o *Property) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(o)
}
