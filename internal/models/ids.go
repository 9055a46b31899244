package models

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

const (
	ProviderIDPrefix = "prov"
	OfferIDPrefix    = "offer"
)

// GenerateID returns a k-sortable identifier with a prefix, ex prov_01HZX3...
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, ulid.Make().String())
}
