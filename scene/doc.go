// Package scene holds the concrete layers drawn by the compositor: a parallax
// starfield, drifting snow, a rotating tree and the lights spiralling around it.
// Each layer owns its state and random source and only touches the frame through
// the raster.Plotter it is handed.
package scene
