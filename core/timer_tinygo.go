//go:build tinygo

package core

// delayYield is empty on hardware: the tick arrives as a real interrupt.
func delayYield() {}
