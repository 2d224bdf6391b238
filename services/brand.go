// services/brand.go - brand sponsor reference data
package services

import (
	"math/rand"

	"github.com/la-cortesia/cortesia_api/model"
)

// brandSponsors is read-only reference data. Sponsors are selected by id
// at generation time, or randomly when branding is requested without one.
var brandSponsors = []model.BrandSponsor{
	{
		ID:          "mezcal-bruma",
		Name:        "Mezcal Bruma",
		LogoRef:     "/assets/brands/mezcal_bruma.png",
		Industry:    "bebidas",
		RewardValue: 80,
	},
	{
		ID:          "zerosum",
		Name:        "ZeroSum",
		LogoRef:     "/assets/brands/zerosum.png",
		Industry:    "fintech",
		RewardValue: 150,
	},
	{
		ID:          "taqueria-orbita",
		Name:        "Taquería Órbita",
		LogoRef:     "/assets/brands/taqueria_orbita.png",
		Industry:    "alimentos",
		RewardValue: 60,
	},
	{
		ID:          "ropa-eterna",
		Name:        "Ropa Eterna",
		LogoRef:     "/assets/brands/ropa_eterna.png",
		Industry:    "moda",
		RewardValue: 100,
	},
}

// SponsorByID returns the sponsor with the given id.
func SponsorByID(id string) (model.BrandSponsor, bool) {
	for _, sponsor := range brandSponsors {
		if sponsor.ID == id {
			return sponsor, true
		}
	}
	return model.BrandSponsor{}, false
}

// RandomSponsor picks a sponsor uniformly from the reference data.
func RandomSponsor(rng *rand.Rand) model.BrandSponsor {
	return brandSponsors[rng.Intn(len(brandSponsors))]
}

// Sponsors returns a copy of the sponsor catalog.
func Sponsors() []model.BrandSponsor {
	out := make([]model.BrandSponsor, len(brandSponsors))
	copy(out, brandSponsors)
	return out
}
