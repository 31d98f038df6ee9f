package renderer

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/nevk-scene/internal/engine/scene"
)

// minAlpha keeps fully transmissive materials visible.
const minAlpha = 0.05

// Alpha derives the blend alpha of a transparent material from its
// transmission filter: a filter passing all light is nearly invisible.
func Alpha(m scene.Material) float32 {
	tf := m.Transparency
	transmitted := (tf[0] + tf[1] + tf[2]) / 3
	return math32.Max(minAlpha, math32.Min(1, 1-transmitted))
}
