package pipeline

import "cmrstac/internal"

// Aggregate folds entries in order into one group per short_name. The last
// entry seen for an id supplies its collection; every entry contributes an
// item. Any transform error aborts the whole fold.
func Aggregate(entries []internal.RawEntry) (*internal.Aggregated, error) {
	out := internal.NewAggregated()
	for _, entry := range entries {
		collection, item, err := Transform(entry)
		if err != nil {
			return nil, err
		}
		out.Put(collection, item)
	}
	return out, nil
}
