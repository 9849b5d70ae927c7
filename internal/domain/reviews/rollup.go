package reviews

import "campnest/internal/domain/sites"

// RollupProperty recounts the property-level triad over the given published
// reviews. An empty slice yields the zero aggregate, never stale numbers.
func RollupProperty(published []*Review) sites.PropertyRating {
	if len(published) == 0 {
		return sites.PropertyRating{}
	}
	var location, communication, value int
	for _, r := range published {
		location += r.Property.Location
		communication += r.Property.Communication
		value += r.Property.Value
	}
	n := float64(len(published))
	rating := sites.PropertyRating{
		Location:      float64(location) / n,
		Communication: float64(communication) / n,
		Value:         float64(value) / n,
		Count:         len(published),
	}
	rating.Overall = (rating.Location + rating.Communication + rating.Value) / 3
	return rating
}

// RollupSite recounts the site-level triad over the given published reviews.
func RollupSite(published []*Review) sites.SiteRating {
	if len(published) == 0 {
		return sites.SiteRating{}
	}
	var cleanliness, accuracy, amenities int
	for _, r := range published {
		cleanliness += r.Site.Cleanliness
		accuracy += r.Site.Accuracy
		amenities += r.Site.Amenities
	}
	n := float64(len(published))
	rating := sites.SiteRating{
		Cleanliness: float64(cleanliness) / n,
		Accuracy:    float64(accuracy) / n,
		Amenities:   float64(amenities) / n,
		Count:       len(published),
	}
	rating.Overall = (rating.Cleanliness + rating.Accuracy + rating.Amenities) / 3
	return rating
}
