package nesting

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPacker(sheets ...StockSheet) *Packer {
	return &Packer{
		Sheets:  sheets,
		Margin:  0.25,
		Spacing: 0.125,
	}
}

func TestPackEmptyInputs(t *testing.T) {
	t.Parallel()

	pk := testPacker(StockSheet{Width: 96, Height: 48})
	_, err := pk.Pack(nil)
	assert.ErrorIs(t, err, ErrNoOutlines)

	pk = testPacker()
	_, err = pk.Pack([]Outline{{Name: "rib", Width: 10, Height: 10}})
	assert.ErrorIs(t, err, ErrNoSheets)
}

func TestPackSingleSheet(t *testing.T) {
	t.Parallel()

	pk := testPacker(StockSheet{Width: 24, Height: 48})
	placements, err := pk.Pack([]Outline{
		{Name: "bulkhead", Width: 10, Height: 10, Quantity: 5},
	})
	require.NoError(t, err)
	require.Len(t, placements, 5)

	// Two parts per row fit within 24 in; five parts need three rows, all
	// on the first sheet.
	for i, pl := range placements {
		assert.Equal(t, 0, pl.Sheet, "placement %d", i)
		assert.GreaterOrEqual(t, pl.Origin.X, 0.25)
		assert.LessOrEqual(t, pl.Origin.X+pl.PlacedWidth(), 24-0.25+1e-9)
		assert.LessOrEqual(t, pl.Origin.Y+pl.PlacedHeight(), 48-0.25+1e-9)
	}
	assert.Equal(t, 0.25, placements[0].Origin.X)
	assert.Equal(t, 0.25, placements[0].Origin.Y)
	assert.Equal(t, 10.375, placements[1].Origin.X)
	// Third part wraps to a new row.
	assert.Equal(t, 0.25, placements[2].Origin.X)
	assert.Equal(t, 10.375, placements[2].Origin.Y)
}

func TestPackLargestFirst(t *testing.T) {
	t.Parallel()

	pk := testPacker(StockSheet{Width: 96, Height: 48})
	placements, err := pk.Pack([]Outline{
		{Name: "small", Width: 4, Height: 4},
		{Name: "large", Width: 20, Height: 12},
		{Name: "medium", Width: 8, Height: 8},
	})
	require.NoError(t, err)
	require.Len(t, placements, 3)
	assert.Equal(t, "large", placements[0].Outline.Name)
	assert.Equal(t, "medium", placements[1].Outline.Name)
	assert.Equal(t, "small", placements[2].Outline.Name)
}

func TestPackCapacityExceeded(t *testing.T) {
	t.Parallel()

	pk := testPacker(StockSheet{Width: 10, Height: 10})
	_, err := pk.Pack([]Outline{
		{Name: "spar-cap", Width: 9, Height: 9, Quantity: 2},
	})
	require.Error(t, err)

	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "spar-cap", capErr.Part)
	assert.Equal(t, 1, capErr.Sheets)
}

func TestPackSpillsToSecondSheet(t *testing.T) {
	t.Parallel()

	pk := testPacker(StockSheet{Width: 10, Height: 10}, StockSheet{Width: 10, Height: 10})
	placements, err := pk.Pack([]Outline{
		{Name: "core", Width: 9, Height: 9, Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, placements, 2)
	assert.Equal(t, 0, placements[0].Sheet)
	assert.Equal(t, 1, placements[1].Sheet)
}

func TestPackQuantityExpansion(t *testing.T) {
	t.Parallel()

	pk := testPacker(StockSheet{Width: 96, Height: 48})
	placements, err := pk.Pack([]Outline{
		{Name: "rib", Width: 5, Height: 3, Quantity: 4},
		{Name: "gusset", Width: 2, Height: 2}, // zero quantity placed once
	})
	require.NoError(t, err)
	assert.Len(t, placements, 5)
}

func TestGrainRotation(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name    string
		outline Outline
		want    float64
	}{
		{
			name:    "parallel already aligned",
			outline: Outline{Grain: GrainParallel, LoadDirectionDeg: 0},
			want:    0,
		},
		{
			name:    "parallel crosswise load",
			outline: Outline{Grain: GrainParallel, LoadDirectionDeg: 90},
			want:    90,
		},
		{
			name:    "perpendicular lengthwise load",
			outline: Outline{Grain: GrainPerpendicular, LoadDirectionDeg: 0},
			want:    90,
		},
		{
			name:    "perpendicular crosswise load",
			outline: Outline{Grain: GrainPerpendicular, LoadDirectionDeg: 90},
			want:    0,
		},
		{
			name:    "specific angle within tolerance",
			outline: Outline{Grain: GrainSpecific, GrainAngleDeg: 30, LoadDirectionDeg: 0},
			want:    0,
		},
		{
			name:    "specific angle needs quarter turn",
			outline: Outline{Grain: GrainSpecific, GrainAngleDeg: 30, LoadDirectionDeg: 120},
			want:    90,
		},
		{
			name:    "unconstrained never rotates",
			outline: Outline{Grain: GrainNone, LoadDirectionDeg: 90},
			want:    0,
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			pk := &Packer{
				Sheets:       []StockSheet{{Width: 96, Height: 48}},
				Margin:       0.25,
				Spacing:      0.125,
				RespectGrain: true,
			}
			tc.outline.Name = "wing-skin"
			tc.outline.Width = 10
			tc.outline.Height = 4
			placements, err := pk.Pack([]Outline{tc.outline})
			require.NoError(t, err)
			require.Len(t, placements, 1)
			assert.Equal(t, tc.want, placements[0].RotationDeg)
			if tc.want == 90 {
				assert.Equal(t, 4.0, placements[0].PlacedWidth())
				assert.Equal(t, 10.0, placements[0].PlacedHeight())
			}
		})
	}
}

func TestGrainRotationDisabled(t *testing.T) {
	t.Parallel()

	pk := testPacker(StockSheet{Width: 96, Height: 48})
	placements, err := pk.Pack([]Outline{
		{Name: "skin", Width: 10, Height: 4, Grain: GrainParallel, LoadDirectionDeg: 90},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, placements[0].RotationDeg)
}

func TestPackDeterministic(t *testing.T) {
	t.Parallel()

	outlines := []Outline{
		{Name: "a", Width: 12, Height: 6, Quantity: 3},
		{Name: "b", Width: 12, Height: 8, Quantity: 2},
		{Name: "c", Width: 3, Height: 3, Quantity: 6},
	}
	pk := testPacker(StockSheet{Width: 48, Height: 24}, StockSheet{Width: 48, Height: 24})

	first, err := pk.Pack(outlines)
	require.NoError(t, err)
	second, err := pk.Pack(outlines)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated pack differs (-first +second):\n%s", diff)
	}
}

func TestParseGrainConstraint(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]GrainConstraint{
		"":              GrainNone,
		"none":          GrainNone,
		"Parallel":      GrainParallel,
		"PERPENDICULAR": GrainPerpendicular,
		" specific ":    GrainSpecific,
	} {
		got, err := ParseGrainConstraint(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := ParseGrainConstraint("diagonal")
	assert.Error(t, err)
}

func TestGrainConstraintJSONRoundTrip(t *testing.T) {
	t.Parallel()

	var o Outline
	data := []byte(`{"name":"rib","width":5,"height":3,"grain":"perpendicular"}`)
	require.NoError(t, json.Unmarshal(data, &o))
	assert.Equal(t, GrainPerpendicular, o.Grain)

	out, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"grain":"perpendicular"`)
}
