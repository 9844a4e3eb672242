package pipeline

import (
	"encoding/json"
	"fmt"
	"io"

	"cmrstac/internal"
)

type searchResponse struct {
	Feed struct {
		Entry []internal.RawEntry `json:"entry"`
	} `json:"feed"`
}

// DecodeFeed reads a CMR collections.json response and returns feed.entry.
func DecodeFeed(r io.Reader) ([]internal.RawEntry, error) {
	var resp searchResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode cmr response: %w", err)
	}
	return resp.Feed.Entry, nil
}
