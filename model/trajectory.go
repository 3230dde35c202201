package model

import "fmt"

// Colour is an opaque display tag identifying the walker that produced a
// point. Consumers may render it as straight (non-premultiplied) RGBA.
type Colour struct {
	R, G, B, A uint8
}

// Hex formats the colour as #rrggbbaa.
func (c Colour) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// TrajectoryPoint is one sampled walker position.
type TrajectoryPoint struct {
	Latitude  float64 // degrees
	Longitude float64 // degrees
	Time      float64 // seconds since run start
	Colour    Colour
}

// WalkerPath is the complete sampled trajectory of one walker of a sweep.
type WalkerPath struct {
	Index    int
	Velocity float64 // m/s
	Colour   Colour
	Points   []TrajectoryPoint
}
