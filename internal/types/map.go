package types

// ContentType is the kind of culture resource a record was published as.
type ContentType string

const (
	ContentTypeArticle ContentType = "ARTICLE"
	ContentTypeExhibit ContentType = "EXHIBIT"
	ContentTypeVideo   ContentType = "VIDEO"
	ContentTypeAudio   ContentType = "AUDIO"
)

// ContentRecord is a culture resource as stored, before it is projected onto the map.
type ContentRecord struct {
	ID          int64
	Title       string
	Description string
	Cover       string
	Region      string
	Tags        []string
	Type        ContentType
	Lat         *float64
	Lng         *float64
	Views       int
	Favorites   int
}

type POICategory string

const (
	CategoryScenic   POICategory = "scenic"
	CategoryRelic    POICategory = "relic"
	CategoryMuseum   POICategory = "museum"
	CategoryHeritage POICategory = "heritage"
)

// AllCategories lists every category in display order.
var AllCategories = []POICategory{CategoryScenic, CategoryRelic, CategoryMuseum, CategoryHeritage}

const OriginTypeCulture = "CULTURE"

// GeoPoint is a mappable content record with its derived category.
type GeoPoint struct {
	ID          int64       `json:"id"`
	OriginRefID int64       `json:"originRefId"`
	OriginType  string      `json:"originType"`
	ContentType string      `json:"contentType"`
	Category    POICategory `json:"category"`
	Title       string      `json:"title"`
	Lat         float64     `json:"lat"`
	Lng         float64     `json:"lng"`
	Region      string      `json:"region,omitempty"`
	Cover       string      `json:"cover,omitempty"`
	Tags        []string    `json:"tags"`
	Summary     string      `json:"summary,omitempty"`
	Views       int         `json:"views"`
	Favorites   int         `json:"favorites"`
}

// Bounds is a viewport; nil edges are open.
type Bounds struct {
	North *float64 `json:"north,omitempty"`
	South *float64 `json:"south,omitempty"`
	East  *float64 `json:"east,omitempty"`
	West  *float64 `json:"west,omitempty"`
}

type PoiQuery struct {
	Keyword  string
	Category string
	Bounds   *Bounds
	Cluster  bool
	Zoom     *int
	Limit    *int
}

type PoiCluster struct {
	Lat        float64        `json:"lat"`
	Lng        float64        `json:"lng"`
	Count      int            `json:"count"`
	Categories map[string]int `json:"categories"`
}

type PoiResult struct {
	Pois      []GeoPoint     `json:"pois"`
	Clusters  []PoiCluster   `json:"clusters"`
	Stats     map[string]int `json:"stats"`
	Total     int            `json:"total"`
	Filtered  int            `json:"filtered"`
	Clustered bool           `json:"clustered"`
}
