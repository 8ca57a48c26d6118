package wordstat

// rawRegion is the tree endpoint's wire shape. The numeric id arrives
// string-typed; normalization to int64 happens in this package, at the
// trust boundary, so the rest of the codebase never sees the
// string/number ambiguity.
type rawRegion struct {
	Value    string      `json:"value"`
	Label    string      `json:"label"`
	Children []rawRegion `json:"children"`
}

// RegionRow is one row of a regional distribution response, with wire
// snake_case mapped to the internal field names. RegionName is empty
// until enrichment resolves it against the flat index.
type RegionRow struct {
	RegionID      int64   `json:"regionId"`
	Count         int64   `json:"count"`
	Share         float64 `json:"share"`
	AffinityIndex float64 `json:"affinityIndex"`
	RegionName    string  `json:"regionName,omitempty"`
}

type regionRowWire struct {
	RegionID      int64   `json:"region_id"`
	Count         int64   `json:"count"`
	Share         float64 `json:"share"`
	AffinityIndex float64 `json:"affinity_index"`
}

type distributionRequest struct {
	Phrase  string   `json:"phrase"`
	Regions []int64  `json:"regions,omitempty"`
	Devices []string `json:"devices,omitempty"`
}

type distributionResponse struct {
	Rows []regionRowWire `json:"rows"`
}
