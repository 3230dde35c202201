package core

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/signalsfoundry/marco-simulator/model"
)

// Endpoints of the sweep palette: the slowest walker is drawn in the first
// colour, the fastest approaches the last.
const (
	firstWalkerHue       = 200.0
	lastWalkerHue        = 20.0
	firstWalkerLightness = 0.45
	lastWalkerLightness  = 0.65
	walkerSaturation     = 0.9

	minWalkerAlpha = 0.15
)

// WalkerColour returns the display colour of walker i in a sweep of count
// walkers. Hue and lightness are interpolated across the sweep; alpha shrinks
// as 1/count (never below minWalkerAlpha) so overlapping paths blend.
func WalkerColour(i, count int) model.Colour {
	f := model.SweepFraction(i, count)
	hue := firstWalkerHue + (lastWalkerHue-firstWalkerHue)*f
	lightness := firstWalkerLightness + (lastWalkerLightness-firstWalkerLightness)*f

	r, g, b := colorful.Hsl(hue, walkerSaturation, lightness).Clamped().RGB255()

	alpha := 1.0
	if count > 1 {
		alpha = 1 / float64(count)
	}
	if alpha < minWalkerAlpha {
		alpha = minWalkerAlpha
	}
	return model.Colour{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}
}
