package models

// Provider is a streaming, rental or purchase service for a title.
type Provider struct {
	ProviderID      int    `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	LogoPath        string `json:"logo_path"`
	DisplayPriority int    `json:"display_priority"`
}

// RegionProviders is the per-region entry of the watch providers payload.
// The zero value means the region is not listed.
type RegionProviders struct {
	Link     string     `json:"link"`
	Flatrate []Provider `json:"flatrate,omitempty"`
	Rent     []Provider `json:"rent,omitempty"`
	Buy      []Provider `json:"buy,omitempty"`
}

// WatchProvidersResponse is the payload of GET /movie/{id}/watch/providers.
type WatchProvidersResponse struct {
	ID      int                        `json:"id"`
	Results map[string]RegionProviders `json:"results"`
}

// WatchProviderSet is the deduplicated provider list shown on a detail view.
type WatchProviderSet struct {
	Region    string     `json:"region"`
	Link      string     `json:"link"`
	Providers []Provider `json:"providers"`
}

// Merge deduplicates providers by id across flatrate, rent and buy, keeping
// the first occurrence in that category order.
func (r RegionProviders) Merge(region string) WatchProviderSet {
	seen := make(map[int]struct{})
	merged := make([]Provider, 0, len(r.Flatrate)+len(r.Rent)+len(r.Buy))
	for _, group := range [][]Provider{r.Flatrate, r.Rent, r.Buy} {
		for _, p := range group {
			if _, ok := seen[p.ProviderID]; ok {
				continue
			}
			seen[p.ProviderID] = struct{}{}
			merged = append(merged, p)
		}
	}
	return WatchProviderSet{
		Region:    region,
		Link:      r.Link,
		Providers: merged,
	}
}
