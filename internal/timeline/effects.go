package timeline

import "fmt"

// Flip selects a mirror transform for a clip.
type Flip string

const (
	FlipNone       Flip = ""
	FlipHorizontal Flip = "horizontal"
	FlipVertical   Flip = "vertical"
)

// Crop selects a pixel region of the source frame.
type Crop struct {
	Width  int
	Height int
	X      int
	Y      int
}

// Scale is a user-requested resize, separate from the mandatory output
// normalization applied at compile time.
type Scale struct {
	Width  int
	Height int
}

// Effects holds the per-clip transform parameters. Optional transforms
// (crop, scale) are modelled as pointers so absence is a first-class
// state rather than an inferred default.
type Effects struct {
	Brightness     float64 // -1 to 1
	Contrast       float64 // 0 to 2
	Saturation     float64 // 0 to 2
	Blur           float64 // 0 to 10
	Sharpen        float64 // 0 to 5
	Volume         float64 // 0 to 2
	RotateDegrees  float64
	Flip           Flip
	Crop           *Crop
	Scale          *Scale
	FadeInSeconds  float64
	FadeOutSeconds float64
}

// DefaultEffects returns the neutral effect set applied to new clips
func DefaultEffects() Effects {
	return Effects{
		Brightness: 0,
		Contrast:   1,
		Saturation: 1,
		Volume:     1,
	}
}

// HasColorAdjustment reports whether brightness, contrast or saturation
// differs from its neutral value.
func (e Effects) HasColorAdjustment() bool {
	return e.Brightness != 0 || e.Contrast != 1 || e.Saturation != 1
}

// Validate checks every parameter against its allowed range
func (e Effects) Validate() error {
	if e.Brightness < -1 || e.Brightness > 1 {
		return fmt.Errorf("brightness %.2f out of range [-1, 1]", e.Brightness)
	}
	if e.Contrast < 0 || e.Contrast > 2 {
		return fmt.Errorf("contrast %.2f out of range [0, 2]", e.Contrast)
	}
	if e.Saturation < 0 || e.Saturation > 2 {
		return fmt.Errorf("saturation %.2f out of range [0, 2]", e.Saturation)
	}
	if e.Blur < 0 || e.Blur > 10 {
		return fmt.Errorf("blur %.2f out of range [0, 10]", e.Blur)
	}
	if e.Sharpen < 0 || e.Sharpen > 5 {
		return fmt.Errorf("sharpen %.2f out of range [0, 5]", e.Sharpen)
	}
	if e.Volume < 0 || e.Volume > 2 {
		return fmt.Errorf("volume %.2f out of range [0, 2]", e.Volume)
	}
	switch e.Flip {
	case FlipNone, FlipHorizontal, FlipVertical:
	default:
		return fmt.Errorf("unknown flip mode %q", e.Flip)
	}
	if e.Crop != nil && (e.Crop.Width <= 0 || e.Crop.Height <= 0) {
		return fmt.Errorf("crop region %dx%d must be positive", e.Crop.Width, e.Crop.Height)
	}
	if e.Scale != nil && (e.Scale.Width <= 0 || e.Scale.Height <= 0) {
		return fmt.Errorf("scale target %dx%d must be positive", e.Scale.Width, e.Scale.Height)
	}
	if e.FadeInSeconds < 0 {
		return fmt.Errorf("fade-in %.2fs cannot be negative", e.FadeInSeconds)
	}
	if e.FadeOutSeconds < 0 {
		return fmt.Errorf("fade-out %.2fs cannot be negative", e.FadeOutSeconds)
	}
	return nil
}

// clone deep-copies the effect set including optional sub-records
func (e Effects) clone() Effects {
	out := e
	if e.Crop != nil {
		crop := *e.Crop
		out.Crop = &crop
	}
	if e.Scale != nil {
		scale := *e.Scale
		out.Scale = &scale
	}
	return out
}
