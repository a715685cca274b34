package geo

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordsAcceptedShapes(t *testing.T) {
	want := Coords{-23.55, -46.63}
	cases := map[string]any{
		"coords":       Coords{-23.55, -46.63},
		"float slice":  []float64{-23.55, -46.63},
		"any numbers":  []any{-23.55, -46.63},
		"any strings":  []any{"-23.55", " -46.63"},
		"json text":    "[-23.55,-46.63]",
		"json strings": `["-23.55","-46.63"]`,
		"pair text":    "-23.55, -46.63",
		"raw message":  json.RawMessage(`[-23.55,-46.63]`),
		"quoted pair":  json.RawMessage(`"-23.55,-46.63"`),
		"object":       map[string]any{"lat": -23.55, "lng": -46.63},
		"float object": map[string]float64{"latitude": -23.55, "longitude": -46.63},
		"json object":  `{"lat":-23.55,"lng":-46.63}`,
		"string lon":   map[string]any{"lat": "-23.55", "lon": "-46.63"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseCoords(in)
			require.NoError(t, err)
			assert.InDelta(t, want.Lat(), got.Lat(), 1e-9)
			assert.InDelta(t, want.Lng(), got.Lng(), 1e-9)
		})
	}
}

func TestParseCoordsRejects(t *testing.T) {
	cases := map[string]any{
		"nil":          nil,
		"empty":        "",
		"three values": []float64{1, 2, 3},
		"not numbers":  []any{"a", "b"},
		"bad json":     "[1,",
		"out of range": Coords{91, 0},
		"missing lng":  map[string]float64{"lat": 1},
		"object range": map[string]any{"lat": 123.0, "lng": 0.0},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCoords(in)
			assert.ErrorIs(t, err, ErrInvalidCoords)
		})
	}
}

func TestSanitizeFallsBack(t *testing.T) {
	assert.Equal(t, Fallback, Sanitize("garbage"))
	assert.Equal(t, Coords{1, 2}, Sanitize([]any{1.0, 2.0}))
}

func TestJitterStaysNearBase(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	base := Coords{-23.5505, -46.6333}
	for i := 0; i < 100; i++ {
		p := Jitter(base, rnd)
		assert.InDelta(t, base.Lat(), p.Lat(), 0.005)
		assert.InDelta(t, base.Lng(), p.Lng(), 0.005)
	}
}

func TestCoordsJSONIsArray(t *testing.T) {
	b, err := json.Marshal(Coords{-23.5, -46.6})
	require.NoError(t, err)
	assert.JSONEq(t, `[-23.5,-46.6]`, string(b))
}

func TestValueScanRoundTrip(t *testing.T) {
	v, err := Coords{-23.55, -46.63}.Value()
	require.NoError(t, err)

	var c Coords
	require.NoError(t, c.Scan(v))
	assert.Equal(t, Coords{-23.55, -46.63}, c)

	require.NoError(t, c.Scan(nil))
	assert.Equal(t, Coords{}, c)
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0, Distance(Fallback, Fallback), 1e-9)
	// one degree of latitude is roughly 111 km
	assert.InDelta(t, 111.2, Distance(Coords{0, 0}, Coords{1, 0}), 0.5)
}

func TestScanMarksUnreadable(t *testing.T) {
	cases := map[string]any{
		"out of range": "[-123.55,-46.63]",
		"not a pair":   []byte("hello"),
		"bad object":   `{"lat":-23.55}`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			var c Coords
			require.NoError(t, c.Scan(src))
			assert.True(t, c.IsUnreadable())
			assert.False(t, c.Valid())
			assert.Equal(t, Fallback, Sanitize(c))
		})
	}

	var c Coords
	require.NoError(t, c.Scan(`{"lat":-23.55,"lng":-46.63}`))
	assert.Equal(t, Coords{-23.55, -46.63}, c)

	require.NoError(t, c.Scan(nil))
	assert.Equal(t, Coords{}, c)
}
