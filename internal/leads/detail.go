package leads

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/daniellim27/leadgen-scraper/internal/config"
	"github.com/daniellim27/leadgen-scraper/internal/model"
	"github.com/daniellim27/leadgen-scraper/internal/resilience"
	"github.com/daniellim27/leadgen-scraper/pkg/google"
)

// ContactExtractor recovers contact details from a business website.
// Implementations never fail; an empty Contact means nothing was found.
type ContactExtractor interface {
	Extract(ctx context.Context, websiteURL string) model.Contact
}

// Detailer resolves place IDs into BusinessDetail records.
type Detailer struct {
	cfg       *config.Config
	places    google.Client
	extractor ContactExtractor
}

// NewDetailer creates a Detailer. extractor may be nil, in which case
// contact fields are always empty.
func NewDetailer(cfg *config.Config, places google.Client, extractor ContactExtractor) *Detailer {
	return &Detailer{cfg: cfg, places: places, extractor: extractor}
}

// Details fetches a single place and, when it has a website, merges the
// extracted email and executive name into the record. Provider errors are
// returned; extraction problems only leave the contact fields empty.
func (d *Detailer) Details(ctx context.Context, placeID string) (*model.BusinessDetail, error) {
	if d.cfg.Places.Key == "" {
		return nil, resilience.NewConfigError("Google Maps API key is not configured")
	}

	zap.L().Info("leads: getting business details", zap.String("place_id", placeID))

	pd, err := d.places.PlaceDetails(ctx, placeID)
	if err != nil {
		zap.L().Error("leads: place details failed",
			zap.String("place_id", placeID),
			zap.String("kind", resilience.Kind(err)),
			zap.Error(err),
		)
		return nil, eris.Wrapf(err, "leads: details for %s", placeID)
	}

	detail := toDetail(pd)
	if detail.Website != "" {
		// Extraction runs to its own timeout even if the caller goes away.
		contact := d.extract(context.WithoutCancel(ctx), detail.Website)
		detail.Email = contact.Email
		detail.CEOName = contact.CEOName
	}

	return &detail, nil
}

func (d *Detailer) extract(ctx context.Context, website string) (contact model.Contact) {
	if d.extractor == nil {
		return model.Contact{}
	}
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("leads: contact extraction panicked",
				zap.String("website", website),
				zap.String("panic", fmt.Sprint(r)),
			)
			contact = model.Contact{}
		}
	}()
	return d.extractor.Extract(ctx, website)
}

func toDetail(pd *google.PlaceDetails) model.BusinessDetail {
	types := pd.Types
	if types == nil {
		types = []string{}
	}
	return model.BusinessDetail{
		PlaceID:      pd.ID,
		Name:         pd.DisplayName.Text,
		Address:      pd.FormattedAddress,
		Phone:        pd.InternationalPhoneNumber,
		Website:      pd.WebsiteURI,
		Types:        types,
		Rating:       model.NewRating(pd.Rating),
		TotalRatings: pd.UserRatingCount,
		MapsURL:      pd.GoogleMapsURI,
		Location:     toLatLng(pd.Location),
	}
}
