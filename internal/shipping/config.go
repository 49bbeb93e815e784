package shipping

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed shipping.yaml
var defaultConfig []byte

type Transit struct {
	MinDays int `yaml:"min_days" json:"minDays"`
	MaxDays int `yaml:"max_days" json:"maxDays"`
}

type carrierConfig struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	BasePrice     string  `yaml:"base_price"`
	FreeThreshold string  `yaml:"free_threshold"`
	Transit       Transit `yaml:"transit"`
}

type regionConfig struct {
	Transit   Transit  `yaml:"transit"`
	Countries []string `yaml:"countries"`
}

type fileConfig struct {
	Domestic  string                  `yaml:"domestic"`
	Carriers  []carrierConfig         `yaml:"carriers"`
	Regions   map[string]regionConfig `yaml:"regions"`
	Countries map[string][]string     `yaml:"countries"`
}

// Carrier is one entry of the domestic menu.
type Carrier struct {
	ID            string
	Name          string
	BasePrice     decimal.Decimal
	FreeThreshold decimal.Decimal
	Transit       Transit
}

// LoadFile builds a resolver from a YAML file on disk.
func LoadFile(path string) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shipping config: %w", err)
	}
	return Parse(data)
}

// Parse builds a resolver from a YAML document.
func Parse(data []byte) (*Resolver, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse shipping config: %w", err)
	}

	domestic := strings.ToUpper(strings.TrimSpace(fc.Domestic))
	if len(domestic) != 2 {
		return nil, fmt.Errorf("shipping config: domestic country code %q is invalid", fc.Domestic)
	}
	if len(fc.Carriers) == 0 {
		return nil, fmt.Errorf("shipping config: at least one carrier is required")
	}

	r := &Resolver{
		domestic: domestic,
		regionOf: make(map[string]Region),
		transit:  make(map[Region]Transit),
		names:    make(map[string]string),
	}

	for i, c := range fc.Carriers {
		base, err := decimal.NewFromString(c.BasePrice)
		if err != nil {
			return nil, fmt.Errorf("carrier %d (%s): base price: %w", i, c.ID, err)
		}
		threshold, err := decimal.NewFromString(c.FreeThreshold)
		if err != nil {
			return nil, fmt.Errorf("carrier %d (%s): free threshold: %w", i, c.ID, err)
		}
		if c.ID == "" || c.ID == DestinationOptionID {
			return nil, fmt.Errorf("carrier %d: id %q is reserved or empty", i, c.ID)
		}
		r.carriers = append(r.carriers, Carrier{
			ID:            c.ID,
			Name:          c.Name,
			BasePrice:     base,
			FreeThreshold: threshold,
			Transit:       c.Transit,
		})
	}

	for name, rc := range fc.Regions {
		region := Region(name)
		switch region {
		case RegionOverseas, RegionNeighbour, RegionWorld:
		default:
			return nil, fmt.Errorf("shipping config: unknown region %q", name)
		}
		r.transit[region] = rc.Transit
		for _, code := range rc.Countries {
			r.regionOf[strings.ToUpper(code)] = region
		}
	}
	if _, ok := r.transit[RegionWorld]; !ok {
		return nil, fmt.Errorf("shipping config: region %q is required", RegionWorld)
	}

	for code, names := range fc.Countries {
		code = strings.ToUpper(code)
		r.names[foldName(code)] = code
		for _, n := range names {
			r.names[foldName(n)] = code
		}
	}
	if _, ok := r.names[foldName(domestic)]; !ok {
		r.names[foldName(domestic)] = domestic
	}

	return r, nil
}
