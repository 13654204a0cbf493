package raster

import "math"

// DemoNoData is the sentinel used by the synthetic demo grid.
const DemoNoData = -9999.0

// Demo builds a synthetic climate grid spanning pole to pole, useful for
// exercising the pipeline without the external raster loader: temperature
// falls off with latitude and gains a seasonal cycle away from the equator,
// precipitation falls off toward the poles with a seasonal cycle of its own.
// A band of NODATA cells runs down the first column so missing-data handling
// stays visible in demos.
func Demo(width, height int) (*Grid, error) {
	tr := Transform{
		OriginX:     -180,
		OriginY:     90,
		PixelWidth:  360.0 / float64(width),
		PixelHeight: -180.0 / float64(height),
	}
	g, err := NewGrid(width, height, tr, DemoNoData)
	if err != nil {
		return nil, err
	}

	cells := width * height
	tavg := make([][]float64, 12)
	prec := make([][]float64, 12)
	for m := 0; m < 12; m++ {
		tavg[m] = make([]float64, cells)
		prec[m] = make([]float64, cells)
	}
	elev := make([]float64, cells)

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			i := row*width + col
			lat, lon := g.CoordinateOf(row, col)

			if col == 0 {
				for m := 0; m < 12; m++ {
					tavg[m][i] = DemoNoData
					prec[m][i] = DemoNoData
				}
				elev[i] = DemoNoData
				continue
			}

			absLat := math.Abs(lat)
			meanTemp := 28 - 0.65*absLat
			// Seasonal swing grows away from the equator and flips
			// phase across it.
			swing := 0.35 * absLat
			if lat < 0 {
				swing = -swing
			}

			meanPrec := math.Max(0, 180-1.6*absLat)

			for m := 0; m < 12; m++ {
				phase := 2 * math.Pi * (float64(m) - 6) / 12
				tavg[m][i] = meanTemp + swing*math.Cos(phase)
				prec[m][i] = math.Max(0, meanPrec*(1+0.4*math.Sin(phase+lon/90)))
			}
			elev[i] = 200 + 150*math.Sin(lon/30)*math.Cos(lat/20)
		}
	}

	for m := 0; m < 12; m++ {
		if err := g.AddLayer(TavgLayer(m+1), tavg[m]); err != nil {
			return nil, err
		}
	}
	for m := 0; m < 12; m++ {
		if err := g.AddLayer(PrecLayer(m+1), prec[m]); err != nil {
			return nil, err
		}
	}
	if err := g.AddLayer(ElevationLayer, elev); err != nil {
		return nil, err
	}

	return g, nil
}
