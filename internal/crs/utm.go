package crs

import "math"

// WGS84 ellipsoid and UTM grid constants.
const (
	semiMajor  = 6378137.0
	flattening = 1 / 298.257223563

	utmScale         = 0.9996
	utmFalseEasting  = 500000.0
	utmFalseNorthing = 10000000.0
	degToRad         = math.Pi / 180
	radToDeg         = 180 / math.Pi
)

// Third flattening and the Krüger series coefficients derived from it.
// Three terms keep the error well under the pipeline's numeric tolerance
// across a UTM zone.
var (
	n3 = flattening / (2 - flattening)

	// rectifying radius
	kruegerA = semiMajor / (1 + n3) * (1 + n3*n3/4 + n3*n3*n3*n3/64)

	alpha = [3]float64{
		n3/2 - 2*n3*n3/3 + 5*n3*n3*n3/16,
		13*n3*n3/48 - 3*n3*n3*n3/5,
		61 * n3 * n3 * n3 / 240,
	}
	beta = [3]float64{
		n3/2 - 2*n3*n3/3 + 37*n3*n3*n3/96,
		n3*n3/48 + n3*n3*n3/15,
		17 * n3 * n3 * n3 / 480,
	}
	delta = [3]float64{
		2*n3 - 2*n3*n3/3 - 2*n3*n3*n3,
		7*n3*n3/3 - 8*n3*n3*n3/5,
		56 * n3 * n3 * n3 / 15,
	}
)

// utm is a universal transverse mercator zone on the WGS84 ellipsoid,
// implemented with the Krüger series expansion.
type utm struct {
	zone  int
	north bool
}

func (u utm) EPSG() int {
	if u.north {
		return 32600 + u.zone
	}
	return 32700 + u.zone
}

// centralMeridian returns the zone's central meridian in radians.
func (u utm) centralMeridian() float64 {
	return float64(u.zone*6-183) * degToRad
}

func (u utm) FromWGS84(lon, lat float64) (x, y float64) {
	phi := lat * degToRad
	lam := lon*degToRad - u.centralMeridian()

	k := 2 * math.Sqrt(n3) / (1 + n3)
	sinPhi := math.Sin(phi)
	t := math.Sinh(math.Atanh(sinPhi) - k*math.Atanh(k*sinPhi))

	xiP := math.Atan2(t, math.Cos(lam))
	etaP := math.Atanh(math.Sin(lam) / math.Sqrt(1+t*t))

	xi, eta := xiP, etaP
	for j := 0; j < 3; j++ {
		w := 2 * float64(j+1)
		xi += alpha[j] * math.Sin(w*xiP) * math.Cosh(w*etaP)
		eta += alpha[j] * math.Cos(w*xiP) * math.Sinh(w*etaP)
	}

	x = utmFalseEasting + utmScale*kruegerA*eta
	y = utmScale * kruegerA * xi
	if !u.north {
		y += utmFalseNorthing
	}
	return x, y
}

func (u utm) ToWGS84(x, y float64) (lon, lat float64) {
	if !u.north {
		y -= utmFalseNorthing
	}
	xi := y / (utmScale * kruegerA)
	eta := (x - utmFalseEasting) / (utmScale * kruegerA)

	xiP, etaP := xi, eta
	for j := 0; j < 3; j++ {
		w := 2 * float64(j+1)
		xiP -= beta[j] * math.Sin(w*xi) * math.Cosh(w*eta)
		etaP -= beta[j] * math.Cos(w*xi) * math.Sinh(w*eta)
	}

	chi := math.Asin(math.Sin(xiP) / math.Cosh(etaP))
	phi := chi
	for j := 0; j < 3; j++ {
		w := 2 * float64(j+1)
		phi += delta[j] * math.Sin(w*chi)
	}

	lam := math.Atan2(math.Sinh(etaP), math.Cos(xiP))
	lon = (lam + u.centralMeridian()) * radToDeg
	lat = phi * radToDeg
	return lon, lat
}
