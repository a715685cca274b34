// Package geo holds the coordinate type shared by orders, deliverers and the
// pizzeria settings, plus the single validating parser every persistence and
// request boundary goes through.
package geo

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// Coords is a [lat, lng] pair. It marshals as a two element JSON array.
type Coords [2]float64

// Fallback is used when stored pizzeria coordinates cannot be parsed (São Paulo centre).
var Fallback = Coords{-23.5505, -46.6333}

var ErrInvalidCoords = errors.New("invalid coordinates")

func (c Coords) Lat() float64 { return c[0] }
func (c Coords) Lng() float64 { return c[1] }

func (c Coords) String() string {
	return strconv.FormatFloat(c[0], 'f', -1, 64) + "," + strconv.FormatFloat(c[1], 'f', -1, 64)
}

// Valid reports whether both components are finite and inside the WGS84 ranges.
func (c Coords) Valid() bool {
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return c[0] >= -90 && c[0] <= 90 && c[1] >= -180 && c[1] <= 180
}

// ParseCoords accepts the shapes coordinates arrive in: a Coords or float
// pair, a slice of numbers or numeric strings, a {lat, lng} object, a JSON
// text such as "[-23.5,-46.6]" or `{"lat":-23.5,"lng":-46.6}`, or a
// "lat,lng" string. Anything else is ErrInvalidCoords.
func ParseCoords(v any) (Coords, error) {
	switch t := v.(type) {
	case Coords:
		return checked(t)
	case *Coords:
		if t == nil {
			return Coords{}, ErrInvalidCoords
		}
		return checked(*t)
	case [2]float64:
		return checked(Coords(t))
	case []float64:
		if len(t) != 2 {
			return Coords{}, fmt.Errorf("%w: expected 2 values, got %d", ErrInvalidCoords, len(t))
		}
		return checked(Coords{t[0], t[1]})
	case []any:
		if len(t) != 2 {
			return Coords{}, fmt.Errorf("%w: expected 2 values, got %d", ErrInvalidCoords, len(t))
		}
		lat, err := number(t[0])
		if err != nil {
			return Coords{}, err
		}
		lng, err := number(t[1])
		if err != nil {
			return Coords{}, err
		}
		return checked(Coords{lat, lng})
	case map[string]any:
		return parseObject(t)
	case map[string]float64:
		obj := make(map[string]any, len(t))
		for k, v := range t {
			obj[k] = v
		}
		return parseObject(obj)
	case json.RawMessage:
		return parseText(string(t))
	case []byte:
		return parseText(string(t))
	case string:
		return parseText(t)
	case nil:
		return Coords{}, ErrInvalidCoords
	default:
		return Coords{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidCoords, v)
	}
}

// Sanitize returns the parsed coordinates or Fallback.
func Sanitize(v any) Coords {
	c, err := ParseCoords(v)
	if err != nil {
		return Fallback
	}
	return c
}

func parseText(s string) (Coords, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return Coords{}, ErrInvalidCoords
	}
	if strings.HasPrefix(s, "[") {
		var raw []any
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			return Coords{}, fmt.Errorf("%w: %v", ErrInvalidCoords, err)
		}
		return ParseCoords(raw)
	}
	if strings.HasPrefix(s, "{") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(s), &obj); err != nil {
			return Coords{}, fmt.Errorf("%w: %v", ErrInvalidCoords, err)
		}
		return parseObject(obj)
	}
	if strings.HasPrefix(s, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			return Coords{}, fmt.Errorf("%w: %v", ErrInvalidCoords, err)
		}
		return parseText(inner)
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coords{}, ErrInvalidCoords
	}
	return ParseCoords([]any{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])})
}

// parseObject reads {lat, lng}, also accepting latitude/longitude and lon.
func parseObject(obj map[string]any) (Coords, error) {
	lat, ok := pick(obj, "lat", "latitude")
	if !ok {
		return Coords{}, fmt.Errorf("%w: missing lat", ErrInvalidCoords)
	}
	lng, ok := pick(obj, "lng", "lon", "longitude")
	if !ok {
		return Coords{}, fmt.Errorf("%w: missing lng", ErrInvalidCoords)
	}
	return ParseCoords([]any{lat, lng})
}

func pick(obj map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func number(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidCoords, n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: unsupported component %T", ErrInvalidCoords, v)
	}
}

func checked(c Coords) (Coords, error) {
	if !c.Valid() {
		return Coords{}, fmt.Errorf("%w: %v out of range", ErrInvalidCoords, [2]float64(c))
	}
	return c, nil
}

// Value stores coordinates as a JSON array.
func (c Coords) Value() (driver.Value, error) {
	b, err := json.Marshal([2]float64(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Unreadable marks a stored value that failed to parse. It is never Valid.
var Unreadable = Coords{math.NaN(), math.NaN()}

// IsUnreadable reports whether c came from a stored value that failed to parse.
func (c Coords) IsUnreadable() bool {
	return math.IsNaN(c[0]) && math.IsNaN(c[1])
}

// Scan parses a stored column through ParseCoords. A malformed or out of
// range value loads as Unreadable instead of failing the whole query; the
// owning model decides whether that means absent or Fallback.
func (c *Coords) Scan(src any) error {
	if src == nil {
		*c = Coords{}
		return nil
	}
	parsed, err := ParseCoords(src)
	if err != nil {
		*c = Unreadable
		return nil
	}
	*c = parsed
	return nil
}

func (Coords) GormDataType() string {
	return "text"
}

// Jitter returns a point up to 0.005 degrees away from base on each axis.
func Jitter(base Coords, rnd *rand.Rand) Coords {
	f := rand.Float64
	if rnd != nil {
		f = rnd.Float64
	}
	return Coords{
		base[0] + (f()-0.5)*0.01,
		base[1] + (f()-0.5)*0.01,
	}
}

// StraightLine is the two point path drawn when no routed path exists.
func StraightLine(from, to Coords) []Coords {
	return []Coords{from, to}
}

// Distance returns the great circle distance in kilometres.
func Distance(a, b Coords) float64 {
	const earthRadiusKm = 6371.0
	lat1, lat2 := a[0]*math.Pi/180, b[0]*math.Pi/180
	dLat := lat2 - lat1
	dLng := (b[1] - a[1]) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
