package demo

import (
	"encoding/json"

	"github.com/danverstone/realsearch/pkg/searchbackend"
)

func unmarshalHit(hit searchbackend.Hit, v any) error {
	return json.Unmarshal(hit.Source, v)
}
