package fade

// Crossfade tracks a timed blend from one value source to another.
// Time is advanced explicitly by the frame driver; there is no internal clock.
type Crossfade struct {
	Duration float64
	Elapsed  float64
	Easing   EasingType
}

// NewCrossfade creates a crossfade lasting duration seconds.
func NewCrossfade(duration float64, easing EasingType) *Crossfade {
	if easing == "" {
		easing = DefaultEasing
	}
	return &Crossfade{Duration: duration, Easing: easing}
}

// Advance moves the crossfade forward by dt seconds and reports whether it finished.
func (c *Crossfade) Advance(dt float64) bool {
	c.Elapsed += dt
	return c.Done()
}

// Done reports whether the full duration has elapsed.
func (c *Crossfade) Done() bool {
	return c.Duration <= 0 || c.Elapsed >= c.Duration
}

// Progress returns the linear progress in [0,1].
func (c *Crossfade) Progress() float64 {
	if c.Done() {
		return 1
	}
	if c.Elapsed <= 0 {
		return 0
	}
	return c.Elapsed / c.Duration
}

// Blend returns the eased mix of from and to at the current progress.
func (c *Crossfade) Blend(from, to float64) float64 {
	return Interpolate(from, to, c.Progress(), c.Easing)
}
