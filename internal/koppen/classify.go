package koppen

// Fixed thresholds of the Köppen-Geiger scheme. Temperatures in degrees
// Celsius, precipitation in millimeters. Ties at a boundary resolve to the
// branch whose inequality is inclusive, so the colder/drier side wins.
const (
	polarTmax      = 10.0 // E when no month reaches this
	frostTmax      = 0.0  // EF at or below, ET above
	tropicalTmin   = 18.0 // A when the coldest month stays at or above
	hotAridTann    = 18.0 // B suffix h at or above, k below
	continentalMin = -3.0 // D at or below, C above
	severeTmin     = -38.0
	hotSummerTmax  = 22.0
	warmMonthCount = 4
)

// rule pairs a guard over the record aggregates with the subtype resolution
// for its climate group. Rules are evaluated strictly in order: polar
// overrides everything, dry is decided before the thermal groups, and the
// thermal groups partition the remaining records by coldest-month
// temperature.
type rule struct {
	group    string
	applies  func(Stats) bool
	classify func(Stats) Label
}

var rules = []rule{
	{
		group:    "E",
		applies:  func(s Stats) bool { return s.Tmax < polarTmax },
		classify: classifyPolar,
	},
	{
		group:    "B",
		applies:  func(s Stats) bool { return s.Pann < 10*aridityThreshold(s) },
		classify: classifyDry,
	},
	{
		group:    "A",
		applies:  func(s Stats) bool { return s.Tmin >= tropicalTmin },
		classify: classifyTropical,
	},
	{
		group:    "C",
		applies:  func(s Stats) bool { return s.Tmin > continentalMin },
		classify: func(s Stats) Label { return Label("C" + seasonLetter(s) + temperateHeatLetter(s)) },
	},
	{
		group:    "D",
		applies:  func(s Stats) bool { return s.Tmin <= continentalMin },
		classify: func(s Stats) Label { return Label("D" + seasonLetter(s) + continentalHeatLetter(s)) },
	},
}

// Classify maps a climate record to its Köppen-Geiger subtype. It is a pure
// function: identical records always yield identical labels, and every
// complete record maps to exactly one of the 30 subtypes.
func Classify(r Record) Label {
	s := Summarize(r)
	for _, rule := range rules {
		if rule.applies(s) {
			return rule.classify(s)
		}
	}
	// Unreachable: the C and D guards partition all records the earlier
	// rules decline.
	panic("koppen: rule set is not total")
}

// aridityThreshold computes Pthresh = 2*Tann + c, where c depends on how the
// annual precipitation splits across the two half-years: 28 when at least 70%
// falls in summer, 0 when at least 70% falls in winter, 14 otherwise.
func aridityThreshold(s Stats) float64 {
	c := 14.0
	switch {
	case s.Psummer >= 0.70*s.Pann:
		c = 28
	case s.Pwinter >= 0.70*s.Pann:
		c = 0
	}
	return 2*s.Tann + c
}

func classifyPolar(s Stats) Label {
	if s.Tmax > frostTmax {
		return ET
	}
	return EF
}

func classifyDry(s Stats) Label {
	code := "BS"
	if s.Pann < 5*aridityThreshold(s) {
		code = "BW"
	}
	if s.Tann >= hotAridTann {
		code += "h"
	} else {
		code += "k"
	}
	return Label(code)
}

func classifyTropical(s Stats) Label {
	switch {
	case s.Pmin >= 60:
		return Af
	case s.Pmin >= 100-s.Pann/25:
		return Am
	default:
		return Aw
	}
}

// seasonLetter resolves the precipitation-seasonality letter for the C and D
// groups. Dry-summer and dry-winter are mutually exclusive and checked in
// that order.
func seasonLetter(s Stats) string {
	switch {
	case s.PminSummer < 40 && s.PminSummer < s.PmaxWinter/3:
		return "s"
	case s.PminWinter < s.PmaxSummer/10:
		return "w"
	default:
		return "f"
	}
}

func temperateHeatLetter(s Stats) string {
	switch {
	case s.Tmax >= hotSummerTmax:
		return "a"
	case s.WarmMonths >= warmMonthCount:
		return "b"
	default:
		return "c"
	}
}

// continentalHeatLetter matches temperateHeatLetter except that an extreme
// coldest month forces the d suffix over b/c.
func continentalHeatLetter(s Stats) string {
	if s.Tmin <= severeTmin {
		return "d"
	}
	return temperateHeatLetter(s)
}
