package koppen

import (
	"math"

	"github.com/rotisserie/eris"
)

// MonthsPerYear is the fixed length of the monthly series in a Record.
const MonthsPerYear = 12

// ErrInsufficientData marks a climate record with fewer than 12 valid monthly
// values for either variable. Cells producing it are excluded from training
// and prediction rather than guessed at.
var ErrInsufficientData = eris.New("koppen: insufficient data: record requires 12 valid monthly values per variable")

// Record is a per-cell climate record: twelve monthly mean temperatures
// (degrees Celsius), twelve monthly precipitation totals (millimeters), and
// the hemisphere the cell lies in. Records are ephemeral, computed on demand
// from a raster cell.
type Record struct {
	Temp     [MonthsPerYear]float64
	Prec     [MonthsPerYear]float64
	Southern bool
}

// NewRecord validates and assembles a climate record. Both series must hold
// exactly 12 finite values; NaN and Inf mark missing months and yield
// ErrInsufficientData. Hemisphere is derived from the latitude sign.
func NewRecord(temp, prec []float64, lat float64) (Record, error) {
	var r Record
	if len(temp) != MonthsPerYear || len(prec) != MonthsPerYear {
		return r, eris.Wrapf(ErrInsufficientData, "got %d temperature and %d precipitation months", len(temp), len(prec))
	}
	for i := 0; i < MonthsPerYear; i++ {
		if !isFinite(temp[i]) || !isFinite(prec[i]) {
			return r, eris.Wrapf(ErrInsufficientData, "month %d is missing", i+1)
		}
		r.Temp[i] = temp[i]
		r.Prec[i] = prec[i]
	}
	r.Southern = lat < 0
	return r, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Stats holds the annual and seasonal aggregates the rule engine evaluates.
// The feature extractor reuses the same aggregates so labels and features are
// always derived from identical formulas.
type Stats struct {
	Tann float64 // annual mean temperature
	Pann float64 // annual precipitation total
	Tmax float64 // warmest monthly mean
	Tmin float64 // coldest monthly mean
	Pmin float64 // driest month precipitation

	Psummer    float64 // precipitation total over the six high-sun months
	Pwinter    float64 // precipitation total over the six low-sun months
	PminSummer float64
	PmaxSummer float64
	PminWinter float64
	PmaxWinter float64

	WarmMonths int // months with mean temperature >= 10 C
}

// summerMonths reports whether month index m (0-based, January = 0) is a
// high-sun month: Apr-Sep in the northern hemisphere, Oct-Mar in the southern.
func summerMonths(m int, southern bool) bool {
	northSummer := m >= 3 && m <= 8
	if southern {
		return !northSummer
	}
	return northSummer
}

// Summarize computes the aggregates for a record.
func Summarize(r Record) Stats {
	s := Stats{
		Tmax:       math.Inf(-1),
		Tmin:       math.Inf(1),
		Pmin:       math.Inf(1),
		PminSummer: math.Inf(1),
		PmaxSummer: math.Inf(-1),
		PminWinter: math.Inf(1),
		PmaxWinter: math.Inf(-1),
	}

	for m := 0; m < MonthsPerYear; m++ {
		t, p := r.Temp[m], r.Prec[m]

		s.Tann += t
		s.Pann += p
		s.Tmax = math.Max(s.Tmax, t)
		s.Tmin = math.Min(s.Tmin, t)
		s.Pmin = math.Min(s.Pmin, p)
		if t >= 10 {
			s.WarmMonths++
		}

		if summerMonths(m, r.Southern) {
			s.Psummer += p
			s.PminSummer = math.Min(s.PminSummer, p)
			s.PmaxSummer = math.Max(s.PmaxSummer, p)
		} else {
			s.Pwinter += p
			s.PminWinter = math.Min(s.PminWinter, p)
			s.PmaxWinter = math.Max(s.PmaxWinter, p)
		}
	}
	s.Tann /= MonthsPerYear

	return s
}
