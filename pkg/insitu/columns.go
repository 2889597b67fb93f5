package insitu

import (
	"fmt"
	"regexp"
	"strings"
)

// ChannelDateTime is the canonical name of the timestamp column.
const ChannelDateTime = "datetime"

// columnNames maps export header names (without unit) to channel names.
// CSV exports and TXT dumps name the same channels differently.
var columnNames = map[string]string{
	// CSV exports
	"Date/Time":     ChannelDateTime,
	"Temp":          "temp",
	"Temp2":         "temp2",
	"Pres":          "pres",
	"Depth":         "depth",
	"Level":         "level",
	"CNDCT":         "cndct",
	"SPCNDCT":       "spcndct",
	"SA":            "sa",
	"TDS":           "tds",
	"pH":            "ph",
	"ORP":           "orp",
	"DO(con)":       "do_con",
	"DO(%sat)":      "do_sat",
	"Turbidity":     "turbidity",
	"PPO2":          "ppo2",
	"Batt Perc(%)":  "batt",
	"R":             "resis",
	"Chlorophyll-a": "chl",

	// TXT dumps and HTML reports
	"Date and Time":                       ChannelDateTime,
	"Date Time":                           ChannelDateTime,
	"Temperature":                         "temp",
	"External Voltage":                    "v",
	"Battery Percentage (%)":              "batt",
	"Barometric Pressure":                 "pres_baro",
	"Pressure":                            "pres",
	"Dissolved Oxygen (concentration)":    "do_con",
	"Partial Pressure Oxygen":             "ppo2",
	"pH(mV)":                              "ph_mv",
	"Dissolved Oxygen (%saturation)":      "do_sat",
	"Oxidation Reduction Potential (ORP)": "orp",
	"Actual Conductivity":                 "cndct",
	"Specific Conductivity":               "spcndct",
	"Salinity":                            "sa",
	"Resistivity":                         "resis",
	"Water Density":                       "wtr_d",
	"Total Dissolved Solids":              "tds",
}

// unitScale converts a reading in the given unit to the canonical unit of
// its channel: metres, µS/cm, ppm and PSI.
var unitScale = map[string]float64{
	"(C)":      1.0,
	"(PSI)":    1.0,
	"(mmHg)":   1.0 / 51.7149,
	"(m)":      1.0,
	"(ft)":     0.3048,
	"(µS/cm)":  1.0,
	"(mS/cm)":  1000.0,
	"(PSU)":    1.0,
	"(ppm)":    1.0,
	"(ppt)":    1000.0,
	"(pH)":     1.0,
	"(mV)":     1.0,
	"(mg/L)":   1.0,
	"(%Sat)":   1.0,
	"(NTU)":    1.0,
	"(Torr)":   1.0,
	"(ohm-cm)": 1.0,
	"(V)":      1.0,
	"(g/cm3)":  1.0,
	"(µg/L)":   1.0,
	"(RFU)":    1.0,
	"(%)":      1.0,
}

var trailingUnit = regexp.MustCompile(`\s?\([^)]*\)$`)

// column is a resolved header cell.
type column struct {
	Channel string
	Scale   float64
}

// resolveColumn maps a header cell to a channel. ok is false for columns
// that are not recognised; those are ignored by the readers. A recognised
// column with an unknown unit is an error.
func resolveColumn(header string) (col column, ok bool, err error) {
	header = strings.TrimSpace(header)

	if ch, found := columnNames[header]; found {
		return column{Channel: ch, Scale: 1.0}, true, nil
	}

	base := trailingUnit.ReplaceAllString(header, "")
	ch, found := columnNames[base]
	if !found {
		return column{}, false, nil
	}

	unit := strings.TrimSpace(strings.TrimPrefix(header, base))
	scale, known := unitScale[unit]
	if !known {
		return column{}, false, fmt.Errorf("unknown unit %s for column %q", unit, base)
	}
	return column{Channel: ch, Scale: scale}, true, nil
}
