package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupKeepsFolderOrder(t *testing.T) {
	doc := Group([]ModelEntry{
		{Brand: "scania", Model: "streamline"},
		{Brand: "volvo", Model: "fh16"},
		{Brand: "scania", Model: "r"},
	})

	require.Len(t, doc["scania"], 2)
	assert.Equal(t, "streamline", doc["scania"][0].Model)
	assert.Equal(t, "r", doc["scania"][1].Model)
	assert.Equal(t, map[string]int{"scania": 2, "volvo": 1}, doc.Counts())
	assert.Equal(t, []string{"scania", "volvo"}, doc.Brands())
}

func TestTransmissionJSONShape(t *testing.T) {
	data, err := json.Marshal(Transmission{
		Name:     "GRSO905R",
		Speeds:   14,
		Retarder: true,
		Ratio:    "11.32 - 0.78",
		Code:     "/def/vehicle/truck/scania.r/transmission/grso905r.sii",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "GRSO905R",
		"speeds": "14",
		"retarder": true,
		"ratio": "11.32 - 0.78",
		"code": "/def/vehicle/truck/scania.r/transmission/grso905r.sii"
	}`, string(data))

	var back Transmission
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 14, back.Speeds)
}

func TestTransmissionRejectsNonNumericSpeeds(t *testing.T) {
	var tr Transmission
	err := json.Unmarshal([]byte(`{"name":"x","speeds":"many"}`), &tr)
	assert.Error(t, err)
}

func TestModelEntryOmitsBrandAndEmptyRPM(t *testing.T) {
	data, err := json.Marshal(ModelEntry{
		Brand:   "man",
		Model:   "tgx",
		Engines: []Engine{{Name: "D2676", RatedPower: "480", Torque: "2400", Code: "c"}},
	})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "man\"")
	assert.NotContains(t, string(data), "rpm")
}

func TestRestoreAndTotals(t *testing.T) {
	doc := Document{
		"daf": {
			{Model: "xf", Engines: make([]Engine, 2), Transmissions: make([]Transmission, 3)},
			{Model: "xg", Engines: make([]Engine, 1), Transmissions: make([]Transmission, 1)},
		},
	}
	doc.Restore()
	assert.Equal(t, "daf", doc["daf"][1].Brand)

	models, engines, transmissions := doc.Totals()
	assert.Equal(t, 2, models)
	assert.Equal(t, 3, engines)
	assert.Equal(t, 4, transmissions)
}
