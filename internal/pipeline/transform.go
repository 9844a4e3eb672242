package pipeline

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"cmrstac/internal"
)

var (
	ErrMissingIdentifier    = errors.New("missing short_name")
	ErrMalformedBoundingBox = errors.New("malformed bounding box")
)

// Transform maps one catalog entry to its collection descriptor and the
// discovery item for that entry's version.
func Transform(entry internal.RawEntry) (internal.Collection, internal.DiscoveryItem, error) {
	id := entry.ShortName
	if strings.TrimSpace(id) == "" {
		return internal.Collection{}, internal.DiscoveryItem{}, fmt.Errorf("entry %q: %w", entry.DatasetID, ErrMissingIdentifier)
	}

	bbox := make([]internal.BoundingBox, 0, len(entry.Boxes))
	for _, box := range entry.Boxes {
		b, err := parseBox(box)
		if err != nil {
			return internal.Collection{}, internal.DiscoveryItem{}, fmt.Errorf("collection %s: %w", id, err)
		}
		bbox = append(bbox, b)
	}

	collection := internal.Collection{
		ID:          id,
		StacVersion: internal.StacVersion,
		License:     internal.LicenseUnknown,
		Title:       entry.DatasetID,
		Type:        internal.TypeCollection,
		Description: entry.Summary,
		Extent: internal.Extent{
			Spatial: internal.SpatialExtent{BBox: bbox},
			Temporal: internal.TemporalExtent{
				Interval: []internal.TemporalInterval{{copyString(entry.TimeStart), copyString(entry.TimeEnd)}},
			},
		},
	}

	item := internal.DiscoveryItem{
		QueueMessages: "true",
		Collection:    id,
		Version:       entry.VersionID,
		Discovery:     internal.DiscoveryCMR,
		Mode:          internal.DiscoveryCMR,
		AssetName:     internal.AssetNameData,
		AssetRoles:    []string{internal.AssetNameData},
	}

	return collection, item, nil
}

// parseBox reads "south west north east" and returns [west, north, east, south].
func parseBox(box string) (internal.BoundingBox, error) {
	fields := strings.Fields(box)
	if len(fields) != 4 {
		return internal.BoundingBox{}, fmt.Errorf("%w: %q has %d tokens, want 4", ErrMalformedBoundingBox, box, len(fields))
	}

	var coords [4]float64
	for i, f := range fields {
		// ParseFloat also takes hex floats, NaN and Inf; none of them are coordinates.
		if strings.ContainsAny(f, "xX_") {
			return internal.BoundingBox{}, fmt.Errorf("%w: %q: token %q is not a decimal number", ErrMalformedBoundingBox, box, f)
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return internal.BoundingBox{}, fmt.Errorf("%w: %q: token %q is not a number", ErrMalformedBoundingBox, box, f)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return internal.BoundingBox{}, fmt.Errorf("%w: %q: token %q is not a finite number", ErrMalformedBoundingBox, box, f)
		}
		coords[i] = v
	}

	south, west, north, east := coords[0], coords[1], coords[2], coords[3]
	return internal.BoundingBox{west, north, east, south}, nil
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
