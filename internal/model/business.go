package model

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
)

// RatingNotAvailable is rendered in place of a rating the provider did not return.
const RatingNotAvailable = "N/A"

// SearchQuery is the normalized form of a user-entered search string.
type SearchQuery struct {
	Raw            string `json:"raw"`
	Query          string `json:"query"`
	IsDomainSearch bool   `json:"is_domain_search"`
	Domain         string `json:"domain,omitempty"`
}

// Rating is an optional provider rating. The zero value is "not available".
type Rating struct {
	Value float64
	Valid bool
}

// NewRating returns a Rating from an optional provider value.
func NewRating(v *float64) Rating {
	if v == nil {
		return Rating{}
	}
	return Rating{Value: *v, Valid: true}
}

// String renders the rating, or RatingNotAvailable.
func (r Rating) String() string {
	if !r.Valid {
		return RatingNotAvailable
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

// MarshalJSON encodes a number, or the "N/A" sentinel.
func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return json.Marshal(RatingNotAvailable)
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts a number, a numeric string, "N/A", "" or null.
func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Rating{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "model: decode rating")
		}
		if s == "" || s == RatingNotAvailable {
			*r = Rating{}
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return eris.Wrapf(err, "model: rating %q is not numeric", s)
		}
		*r = Rating{Value: f, Valid: true}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return eris.Wrap(err, "model: decode rating")
	}
	*r = Rating{Value: f, Valid: true}
	return nil
}

// LatLng is a geographic coordinate. Either component may be absent.
type LatLng struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// BusinessSummary is one row of a business search result. PlaceID is
// assigned by the places provider and is never generated locally.
type BusinessSummary struct {
	PlaceID      string `json:"place_id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	Rating       Rating `json:"rating"`
	TotalRatings int    `json:"total_ratings"`
	Location     LatLng `json:"location"`
}

// BusinessDetail is a fully resolved business. Email and CEOName are empty
// when contact extraction found nothing.
type BusinessDetail struct {
	PlaceID      string   `json:"place_id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Phone        string   `json:"phone"`
	Website      string   `json:"website"`
	Types        []string `json:"types"`
	Rating       Rating   `json:"rating"`
	TotalRatings int      `json:"total_ratings"`
	MapsURL      string   `json:"maps_url"`
	Location     LatLng   `json:"location"`
	Email        string   `json:"email"`
	CEOName      string   `json:"ceo_name"`
}

// Summary returns the summary fields of the detail record.
func (d BusinessDetail) Summary() BusinessSummary {
	return BusinessSummary{
		PlaceID:      d.PlaceID,
		Name:         d.Name,
		Address:      d.Address,
		Rating:       d.Rating,
		TotalRatings: d.TotalRatings,
		Location:     d.Location,
	}
}

// Contact is the result of website contact extraction.
type Contact struct {
	Email   string `json:"email"`
	CEOName string `json:"ceo_name"`
}
