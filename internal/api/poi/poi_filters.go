package poi

import (
	"strings"

	"github.com/paulmach/orb"

	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

const categoryAll = "all"

// filter is a predicate over a mapped point. Filters compose by conjunction.
type filter func(p mappedPoint) bool

// mappedPoint pairs the response shape with its planar coordinate (lng, lat).
type mappedPoint struct {
	types.GeoPoint
	loc orb.Point
}

func buildFilters(q types.PoiQuery) []filter {
	var fs []filter
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		fs = append(fs, keywordFilter(kw))
	}
	if c := strings.TrimSpace(q.Category); c != "" && !strings.EqualFold(c, categoryAll) {
		fs = append(fs, categoryFilter(c))
	}
	if q.Bounds != nil {
		fs = append(fs, boundsFilter(toBound(*q.Bounds)))
	}
	return fs
}

func matchesAll(p mappedPoint, fs []filter) bool {
	for _, f := range fs {
		if !f(p) {
			return false
		}
	}
	return true
}

func keywordFilter(keyword string) filter {
	kw := strings.ToLower(keyword)
	return func(p mappedPoint) bool {
		if strings.Contains(strings.ToLower(p.Title), kw) || strings.Contains(strings.ToLower(p.Summary), kw) {
			return true
		}
		for _, tag := range p.Tags {
			if strings.Contains(strings.ToLower(tag), kw) {
				return true
			}
		}
		return false
	}
}

func categoryFilter(category string) filter {
	return func(p mappedPoint) bool {
		return strings.EqualFold(string(p.Category), category)
	}
}

func boundsFilter(b orb.Bound) filter {
	return func(p mappedPoint) bool {
		return b.Contains(p.loc)
	}
}

// toBound converts a viewport into an orb.Bound. Missing edges open up to the
// full coordinate range.
func toBound(b types.Bounds) orb.Bound {
	return orb.Bound{
		Min: orb.Point{edge(b.West, -180), edge(b.South, -90)},
		Max: orb.Point{edge(b.East, 180), edge(b.North, 90)},
	}
}

func edge(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
