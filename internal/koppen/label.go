// Package koppen implements the Köppen-Geiger climate taxonomy: a deterministic
// rule engine that maps a per-cell monthly climate record to one of 30 subtype
// labels (Af..EF).
package koppen

// Label is a Köppen-Geiger climate subtype code.
type Label string

// The full Köppen-Geiger subtype set.
const (
	Af  Label = "Af"
	Am  Label = "Am"
	Aw  Label = "Aw"
	BWh Label = "BWh"
	BWk Label = "BWk"
	BSh Label = "BSh"
	BSk Label = "BSk"
	Csa Label = "Csa"
	Csb Label = "Csb"
	Csc Label = "Csc"
	Cwa Label = "Cwa"
	Cwb Label = "Cwb"
	Cwc Label = "Cwc"
	Cfa Label = "Cfa"
	Cfb Label = "Cfb"
	Cfc Label = "Cfc"
	Dsa Label = "Dsa"
	Dsb Label = "Dsb"
	Dsc Label = "Dsc"
	Dsd Label = "Dsd"
	Dwa Label = "Dwa"
	Dwb Label = "Dwb"
	Dwc Label = "Dwc"
	Dwd Label = "Dwd"
	Dfa Label = "Dfa"
	Dfb Label = "Dfb"
	Dfc Label = "Dfc"
	Dfd Label = "Dfd"
	ET  Label = "ET"
	EF  Label = "EF"
)

// Labels lists every subtype in canonical order. The position of a label in
// this slice plus one is its integer code; code 0 is reserved for NODATA.
var Labels = []Label{
	Af, Am, Aw,
	BWh, BWk, BSh, BSk,
	Csa, Csb, Csc, Cwa, Cwb, Cwc, Cfa, Cfb, Cfc,
	Dsa, Dsb, Dsc, Dsd, Dwa, Dwb, Dwc, Dwd, Dfa, Dfb, Dfc, Dfd,
	ET, EF,
}

var labelCodes = func() map[Label]int {
	m := make(map[Label]int, len(Labels))
	for i, l := range Labels {
		m[l] = i + 1
	}
	return m
}()

// Code returns the integer code (1..30) for a label, or 0 for an unknown label.
func (l Label) Code() int {
	return labelCodes[l]
}

// Valid reports whether l is one of the 30 subtype codes.
func (l Label) Valid() bool {
	return labelCodes[l] != 0
}

// FromCode returns the label for an integer code (1..30).
func FromCode(code int) (Label, bool) {
	if code < 1 || code > len(Labels) {
		return "", false
	}
	return Labels[code-1], true
}

// Colors maps each subtype code (1..30) to the conventional map hex color.
// Index 0 is the NODATA color. Consumed by external renderers and the report
// writer; the classifier itself never uses it.
var Colors = []string{
	"#FFFFFF",
	"#0000FE", "#0077FF", "#46A9FA",
	"#FE0000", "#FE9695", "#F5A301", "#FFDB63",
	"#ffff00", "#c6c700", "#969600",
	"#96ff96", "#63c764", "#329633",
	"#c6ff4e", "#66ff33", "#33c701",
	"#ff00fe", "#c600c7", "#963295", "#966495",
	"#abb1ff", "#5a77db", "#4c51b5", "#320087",
	"#00ffff", "#38c7ff", "#007e7d", "#00455e",
	"#b2b2b2", "#686868",
}

// Color returns the conventional hex color for a label, or the NODATA color
// for an unknown label.
func (l Label) Color() string {
	return Colors[l.Code()]
}
