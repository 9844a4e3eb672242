package internal

const (
	StacVersion    = "1.0.0"
	LicenseUnknown = "not-provided"
	TypeCollection = "Collection"

	DiscoveryCMR  = "cmr"
	AssetNameData = "data"
)

// RawEntry is one element of feed.entry in a CMR collection search response.
type RawEntry struct {
	ShortName string   `json:"short_name"`
	DatasetID string   `json:"dataset_id"`
	Summary   string   `json:"summary"`
	Boxes     []string `json:"boxes"`
	TimeStart *string  `json:"time_start"`
	TimeEnd   *string  `json:"time_end"`
	VersionID string   `json:"version_id"`
}

// BoundingBox is ordered west, north, east, south.
type BoundingBox [4]float64

// TemporalInterval is [start, end]; a nil slot is written as JSON null.
type TemporalInterval [2]*string

type SpatialExtent struct {
	BBox []BoundingBox `json:"bbox"`
}

type TemporalExtent struct {
	Interval []TemporalInterval `json:"interval"`
}

type Extent struct {
	Spatial  SpatialExtent  `json:"spatial"`
	Temporal TemporalExtent `json:"temporal"`
}

// Collection is the STAC-like descriptor written to the collections store.
// Field order is the JSON key order.
type Collection struct {
	ID          string `json:"id"`
	StacVersion string `json:"stac_version"`
	License     string `json:"license"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Extent      Extent `json:"extent"`
}

// DiscoveryItem tells the downstream workflow to discover one version of a
// collection through CMR.
type DiscoveryItem struct {
	QueueMessages string   `json:"queue_messages"`
	Collection    string   `json:"collection"`
	Version       string   `json:"version"`
	Discovery     string   `json:"discovery"`
	Mode          string   `json:"mode"`
	AssetName     string   `json:"asset_name"`
	AssetRoles    []string `json:"asset_roles"`
}

// Group is everything collected for one identifier.
type Group struct {
	Collection Collection
	Items      []DiscoveryItem
}

// Payload is what gets written to the step function inputs store: the item
// itself when there is exactly one, otherwise the ordered list.
func (g Group) Payload() any {
	if len(g.Items) == 1 {
		return g.Items[0]
	}
	return g.Items
}

// Aggregated maps identifier to Group and remembers first-seen key order.
type Aggregated struct {
	keys   []string
	groups map[string]*Group
}

// NewAggregated returns an empty Aggregated ready for Put.
func NewAggregated() *Aggregated {
	return &Aggregated{groups: map[string]*Group{}}
}

// Put stores collection as the current descriptor for its id and appends item
// to the id's history.
func (a *Aggregated) Put(collection Collection, item DiscoveryItem) {
	g, ok := a.groups[collection.ID]
	if !ok {
		a.keys = append(a.keys, collection.ID)
		a.groups[collection.ID] = &Group{Collection: collection, Items: []DiscoveryItem{item}}
		return
	}
	g.Collection = collection
	g.Items = append(g.Items, item)
}

// Len is the number of distinct identifiers.
func (a *Aggregated) Len() int {
	return len(a.keys)
}

// Keys returns a copy of the identifiers in first-seen order.
func (a *Aggregated) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Get returns a copy of the group for id. Its Items slice is shared.
func (a *Aggregated) Get(id string) (Group, bool) {
	g, ok := a.groups[id]
	if !ok {
		return Group{}, false
	}
	return *g, true
}

// ItemCount is the total number of discovery items across all groups.
func (a *Aggregated) ItemCount() int {
	n := 0
	for _, g := range a.groups {
		n += len(g.Items)
	}
	return n
}

type CollectionRow struct {
	ID             string
	Title          string
	Description    string
	Versions       []string
	ItemCount      int
	BBoxCount      int
	TimeStart      *string
	TimeEnd        *string
	CollectionJSON string
	LastRunID      string
	LastSeenAt     string
}

type RunRow struct {
	ID          string
	Keyword     string
	Source      string
	RawRef      string
	Entries     int
	Collections int
	Items       int
	CreatedAt   string
}
