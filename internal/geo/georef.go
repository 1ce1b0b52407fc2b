package geo

import "github.com/wroge/wgs84"

// Georeference places the local millimetre world on the globe. The world
// origin is given in EPSG:3857 metres.
type Georeference struct {
	OriginX float64
	OriginY float64

	toWGS84 func(a, b, c float64) (float64, float64, float64)
}

// NewGeoreference creates a georeference for the given web-mercator origin.
func NewGeoreference(originX, originY float64) *Georeference {
	epsg := wgs84.EPSG()
	return &Georeference{
		OriginX: originX,
		OriginY: originY,
		toWGS84: epsg.Transform(3857, 4326),
	}
}

// ToWGS84 converts a world position in millimetres to longitude and latitude.
func (g *Georeference) ToWGS84(xmm, ymm float64) (lon, lat float64) {
	lon, lat, _ = g.toWGS84(g.OriginX+xmm/1000, g.OriginY+ymm/1000, 0)
	return lon, lat
}
