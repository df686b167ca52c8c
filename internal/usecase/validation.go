package usecase

import (
	"strings"

	"github.com/gr8terthings/signup-proxy/internal/entity"
)

// ParseCampaignInterest splits the comma separated form value into tags.
func ParseCampaignInterest(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// normalizeSubscribeInput maps the form payload onto a subscriber patch.
// Invalid delivery preferences are dropped.
func normalizeSubscribeInput(input SubscribeInput) *entity.Subscriber {
	s := &entity.Subscriber{
		FirstName:        strings.TrimSpace(input.FirstName),
		LastName:         strings.TrimSpace(input.LastName),
		Email:            strings.TrimSpace(input.EmailAddress),
		Phone:            strings.TrimSpace(input.PhoneNumber),
		CampaignInterest: ParseCampaignInterest(input.CampaignInterest),
	}
	if pref, ok := entity.ParseDeliveryPreference(input.DeliveryPreference); ok {
		s.DeliveryPreference = pref
	}
	return s
}
