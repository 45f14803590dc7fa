package catalog

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Engine is an engine definition extracted from a single file.
type Engine struct {
	// Name is the display name, with @@kw@@ expanded.
	Name string `json:"name"`
	// RatedPower is the power class token as written in the info line.
	RatedPower string `json:"cv"`
	// Torque is the torque field as text.
	Torque string `json:"nm"`
	// RPMLimit is only set when the file carries an rpm_limit line.
	RPMLimit string `json:"rpm,omitempty"`
	// Code identifies the source file, e.g. /def/vehicle/truck/<folder>/engine/<file>.
	Code string `json:"code"`
}

// Transmission is a gearbox definition extracted from a single file.
type Transmission struct {
	Name     string
	Speeds   int
	Retarder bool
	// Ratio is formatted as "<first> - <last>".
	Ratio string
	Code  string
}

type transmissionJSON struct {
	Name     string `json:"name"`
	Speeds   string `json:"speeds"`
	Retarder bool   `json:"retarder"`
	Ratio    string `json:"ratio"`
	Code     string `json:"code"`
}

// MarshalJSON encodes Speeds as a string, which is how consumers of the
// catalogue expect it.
func (t Transmission) MarshalJSON() ([]byte, error) {
	return json.Marshal(transmissionJSON{
		Name:     t.Name,
		Speeds:   strconv.Itoa(t.Speeds),
		Retarder: t.Retarder,
		Ratio:    t.Ratio,
		Code:     t.Code,
	})
}

func (t *Transmission) UnmarshalJSON(data []byte) error {
	var raw transmissionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	speeds, err := strconv.Atoi(raw.Speeds)
	if err != nil {
		return fmt.Errorf("transmission %q speeds: %w", raw.Name, err)
	}
	*t = Transmission{
		Name:     raw.Name,
		Speeds:   speeds,
		Retarder: raw.Retarder,
		Ratio:    raw.Ratio,
		Code:     raw.Code,
	}
	return nil
}

// ModelEntry groups the components found in one brand.model folder.
type ModelEntry struct {
	Brand         string         `json:"-"`
	Model         string         `json:"model"`
	Engines       []Engine       `json:"engines"`
	Transmissions []Transmission `json:"transmissions"`
}

// Document maps a brand name to its models in folder enumeration order.
type Document map[string][]ModelEntry

// Add appends entry under its brand, creating the brand on first sight.
func (d Document) Add(entry ModelEntry) {
	d[entry.Brand] = append(d[entry.Brand], entry)
}

// Group builds a Document from entries, keeping their relative order.
func Group(entries []ModelEntry) Document {
	doc := make(Document)
	for _, e := range entries {
		doc.Add(e)
	}
	return doc
}

// Brands returns the brand names in sorted order.
func (d Document) Brands() []string {
	return slices.Sorted(maps.Keys(d))
}

// Counts returns the number of models per brand.
func (d Document) Counts() map[string]int {
	counts := make(map[string]int, len(d))
	for brand, models := range d {
		counts[brand] = len(models)
	}
	return counts
}

// Totals returns the number of models, engines and transmissions.
func (d Document) Totals() (models, engines, transmissions int) {
	for _, entries := range d {
		for _, e := range entries {
			models++
			engines += len(e.Engines)
			transmissions += len(e.Transmissions)
		}
	}
	return models, engines, transmissions
}

// Restore fills the Brand field of every entry from its map key. Decoded
// documents need it because Brand is not part of the JSON form.
func (d Document) Restore() {
	for brand, entries := range d {
		for i := range entries {
			entries[i].Brand = brand
		}
	}
}
