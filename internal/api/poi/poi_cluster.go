package poi

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

const (
	defaultBucketSize = 0.25
	minBucketSize     = 0.05
	maxBucketSize     = 1.2
	minZoom           = 3
	maxZoom           = 18
)

type bucketKey struct {
	lat, lng int64
}

// bucketSize maps a map zoom level to a grid cell edge in degrees.
// Higher zoom gives a finer grid.
func bucketSize(zoom *int) float64 {
	if zoom == nil {
		return defaultBucketSize
	}
	z := min(max(*zoom, minZoom), maxZoom)
	size := float64(maxZoom-z) * 0.05
	return min(max(size, minBucketSize), maxBucketSize)
}

func keyFor(loc orb.Point, size float64) bucketKey {
	return bucketKey{
		lat: int64(math.Round(loc.Lat() / size)),
		lng: int64(math.Round(loc.Lon() / size)),
	}
}

// buildClusters groups points by grid cell. Cells holding a single point do
// not form a cluster. The second return value holds the IDs absorbed into a
// cluster.
func buildClusters(points []mappedPoint, zoom *int) ([]types.PoiCluster, map[int64]struct{}) {
	absorbed := make(map[int64]struct{})
	if len(points) == 0 {
		return []types.PoiCluster{}, absorbed
	}

	size := bucketSize(zoom)
	buckets := make(map[bucketKey][]mappedPoint)
	for _, p := range points {
		k := keyFor(p.loc, size)
		buckets[k] = append(buckets[k], p)
	}

	clusters := make([]types.PoiCluster, 0, len(buckets))
	for _, members := range buckets {
		if len(members) < 2 {
			continue
		}
		mp := make(orb.MultiPoint, 0, len(members))
		breakdown := make(map[string]int)
		for _, m := range members {
			mp = append(mp, m.loc)
			breakdown[string(m.Category)]++
			absorbed[m.ID] = struct{}{}
		}
		centroid, _ := planar.CentroidArea(mp)
		clusters = append(clusters, types.PoiCluster{
			Lat:        centroid.Lat(),
			Lng:        centroid.Lon(),
			Count:      len(members),
			Categories: breakdown,
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		a, b := clusters[i], clusters[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Lat != b.Lat {
			return a.Lat < b.Lat
		}
		return a.Lng < b.Lng
	})
	return clusters, absorbed
}
