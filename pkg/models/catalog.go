package models

type Well struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Type    *string `json:"type"`
	Comment *string `json:"comment"`
}

type Pump struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Comment *string `json:"comment"`
}

type SampleType struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Variant *string `json:"variant"`
	Comment *string `json:"comment"`
}

type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Options bundles every reference catalog for the front end's selectors.
type Options struct {
	Wells       []*Well       `json:"well"`
	Pumps       []*Pump       `json:"pump"`
	SampleTypes []*SampleType `json:"sample_type"`
	People      []*Person     `json:"people"`
}

// SampleSetEntry is one (sample type, quantity) pair. On the wire the sample
// type id is sent as "id".
type SampleSetEntry struct {
	SampleTypeID int64 `json:"id"`
	Qty          int64 `json:"qty"`
}
