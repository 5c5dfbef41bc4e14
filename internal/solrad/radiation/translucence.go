package radiation

import (
	"github.com/hblyp/pcsrt-go/internal/solrad/shadow"
	"github.com/hblyp/pcsrt-go/internal/solrad/sunpos"
	"github.com/hblyp/pcsrt-go/internal/solrad/voxel"
)

// Propagate walks a shadow bucket top-down. The first present voxel in the
// bucket receives the sun directly (Compute with inShadow=false) using its
// own normal. Every voxel below it is genuinely shadowed: its own
// contribution is computed with inShadow=true (diffuse only, no self
// beam), and whatever beam leaked down from the voxel above — that
// voxel's own beam value, attenuated by that voxel's Translucence (1.0 =
// fully transparent, passes all of it; 0 = opaque; nil Translucence behaves
// as opaque) — is added on top. Every voxel still receives its own diffuse
// contribution regardless of shadowing; only the directly lit voxel is
// credited sun hours.
func Propagate(g *voxel.Grid, bucket shadow.Bucket, epoch sunpos.Epoch, elevationM, linke, solarConstant float64) {
	first := true
	var carryBeam float64

	for _, key := range bucket.Members {
		v := g.Get(key)
		if v == nil {
			continue
		}

		var r Result
		if first {
			r = Compute(v.Normal, epoch, elevationM, linke, solarConstant, false)
		} else {
			r = Compute(v.Normal, epoch, elevationM, linke, solarConstant, true)
			r.BeamComponent = carryBeam
			r.GlobalIrradiance = r.BeamComponent + r.DiffuseComponent
		}

		v.AddIrradiation(r.BeamComponent, r.DiffuseComponent, epoch.StepCoef, first)

		transmittance := 0.0
		if v.Translucence != nil {
			transmittance = *v.Translucence
		}
		carryBeam = r.BeamComponent * transmittance
		first = false
	}
}
