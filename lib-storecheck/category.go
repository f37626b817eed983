package storecheck

import (
	"fmt"
	"strings"
)

// Category is the kind of endpoint. It decides the latency thresholds.
type Category string

const (
	CategoryWeb Category = "web"
	CategoryAPI Category = "api"
)

// ParseCategory parses category string. The comparison is case-insensitive.
func ParseCategory(raw string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryWeb:
		return CategoryWeb, nil
	case CategoryAPI:
		return CategoryAPI, nil
	default:
		return "", fmt.Errorf("unknown category %q (use web or api)", raw)
	}
}
