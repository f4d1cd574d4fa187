package domain

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64
	Lng float64
}

// Valid reports whether the coordinates are in range.
func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}
