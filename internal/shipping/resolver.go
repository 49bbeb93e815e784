// Package shipping maps a destination and a cart subtotal to the carrier
// options shown at checkout. Everything here is pure: no I/O after the
// configuration has been parsed.
package shipping

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DestinationOptionID is the single option offered outside the domestic
// country. Its price is settled out-of-band.
const DestinationOptionID = "destination"

var ErrUnsupportedCountry = errors.New("unsupported country")

type Region string

const (
	RegionDomestic  Region = "domestic"
	RegionOverseas  Region = "overseas"
	RegionNeighbour Region = "neighbour"
	RegionWorld     Region = "world"
)

// Option is one selectable shipping method. Price is nil when the cost is
// calculated at destination.
type Option struct {
	ID      string
	Name    string
	Region  Region
	Price   *decimal.Decimal
	Base    decimal.Decimal
	FreeAt  *decimal.Decimal
	Transit Transit
}

func (o Option) Free() bool {
	return o.Price != nil && o.Price.IsZero()
}

// Cost returns the effective price, zero when calculated at destination.
func (o Option) Cost() decimal.Decimal {
	if o.Price == nil {
		return decimal.Zero
	}
	return *o.Price
}

func (o Option) AtDestination() bool {
	return o.Price == nil
}

type Resolver struct {
	domestic string
	carriers []Carrier
	regionOf map[string]Region
	transit  map[Region]Transit
	names    map[string]string
}

var (
	defaultOnce     sync.Once
	defaultResolver *Resolver
)

// Default returns the resolver built from the embedded configuration.
func Default() *Resolver {
	defaultOnce.Do(func() {
		r, err := Parse(defaultConfig)
		if err != nil {
			panic("shipping: embedded config: " + err.Error())
		}
		defaultResolver = r
	})
	return defaultResolver
}

func (r *Resolver) Domestic() string { return r.domestic }

// Carriers returns a copy of the domestic menu.
func (r *Resolver) Carriers() []Carrier {
	out := make([]Carrier, len(r.carriers))
	copy(out, r.carriers)
	return out
}

// RegionOf buckets an ISO code. Codes not listed anywhere are rest-of-world.
func (r *Resolver) RegionOf(code string) Region {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == r.domestic {
		return RegionDomestic
	}
	if reg, ok := r.regionOf[code]; ok {
		return reg
	}
	return RegionWorld
}

// Resolve lists the options for a destination country code and subtotal.
func (r *Resolver) Resolve(countryCode string, subtotal decimal.Decimal) []Option {
	region := r.RegionOf(countryCode)
	if region != RegionDomestic {
		return []Option{{
			ID:      DestinationOptionID,
			Name:    "Calculated at destination",
			Region:  region,
			Transit: r.transit[region],
		}}
	}

	out := make([]Option, 0, len(r.carriers))
	for _, c := range r.carriers {
		price := c.BasePrice
		if subtotal.GreaterThanOrEqual(c.FreeThreshold) {
			price = decimal.Zero
		}
		threshold := c.FreeThreshold
		out = append(out, Option{
			ID:      c.ID,
			Name:    c.Name,
			Region:  RegionDomestic,
			Price:   &price,
			Base:    c.BasePrice,
			FreeAt:  &threshold,
			Transit: c.Transit,
		})
	}
	return out
}

// Select resolves and returns the option with the given id.
func (r *Resolver) Select(countryCode string, subtotal decimal.Decimal, id string) (Option, bool) {
	for _, o := range r.Resolve(countryCode, subtotal) {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// CountryCode maps a free-text country name (or an ISO code) to its
// 2-letter code. Unknown names are an error, never the domestic default.
func (r *Resolver) CountryCode(name string) (string, error) {
	key := foldName(name)
	if key == "" {
		return "", ErrUnsupportedCountry
	}
	if code, ok := r.names[key]; ok {
		return code, nil
	}
	return "", ErrUnsupportedCountry
}

// Countries lists the supported ISO codes, sorted.
func (r *Resolver) Countries() []string {
	seen := make(map[string]struct{}, len(r.names))
	for _, code := range r.names {
		seen[code] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// foldName lowercases, strips accents and collapses separators so that
// "Réunion", "reunion" and "  RÉUNION " compare equal.
func foldName(s string) string {
	t := transform.Chain(norm.NFD, stripMarks, norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_' || r == '.'
	})
	return strings.Join(fields, " ")
}
