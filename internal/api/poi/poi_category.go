package poi

import (
	"strings"

	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

var (
	museumKeywords   = []string{"博物馆", "museum", "纪念馆"}
	relicKeywords    = []string{"遗址", "古城", "故城", "遗迹", "旧址"}
	heritageKeywords = []string{"非遗", "非物质", "heritage"}
)

// ResolveCategory derives the map category of a record. Exhibits are always
// museums; videos about intangible heritage are heritage; everything else is
// decided by keyword, museum before relic before heritage, defaulting to scenic.
func ResolveCategory(rec types.ContentRecord) types.POICategory {
	title := strings.ToLower(rec.Title)
	desc := strings.ToLower(rec.Description)

	switch rec.Type {
	case types.ContentTypeExhibit:
		return types.CategoryMuseum
	case types.ContentTypeVideo:
		if containsAny(heritageKeywords, title, desc) {
			return types.CategoryHeritage
		}
	}

	tags := strings.ToLower(strings.Join(rec.Tags, ","))
	text := title + desc
	switch {
	case containsAny(museumKeywords, tags, text):
		return types.CategoryMuseum
	case containsAny(relicKeywords, tags, text):
		return types.CategoryRelic
	case containsAny(heritageKeywords, tags, text):
		return types.CategoryHeritage
	}
	return types.CategoryScenic
}

func containsAny(keywords []string, sources ...string) bool {
	for _, src := range sources {
		if strings.TrimSpace(src) == "" {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(src, kw) {
				return true
			}
		}
	}
	return false
}
