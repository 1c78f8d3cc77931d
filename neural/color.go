package neural

import (
	"fmt"
	"math"
)

// ColorField evaluates the color network on the host. The fragment shader
// is the live renderer; this mirror exists for the probe tool and the
// golden-vector tests that pin the two implementations together.
type ColorField struct {
	store     *Store
	eval      *Evaluator
	phaseRate float32
	in        []float32
}

// NewColorField creates a host-side color sampler over the given store.
func NewColorField(store *Store, phaseRate float32) (*ColorField, error) {
	if store.Config() != ColorNet {
		return nil, fmt.Errorf("neural: color field requires the color configuration, got %+v", store.Config())
	}
	return &ColorField{
		store:     store,
		eval:      NewEvaluator(ColorNet),
		phaseRate: phaseRate,
		in:        make([]float32, 0, ColorInputSize),
	}, nil
}

// ColorAt returns the surface color for a point, its normal, and the view
// direction, each channel bounded to [0, 1] by the logistic activation.
func (f *ColorField) ColorAt(pos, normal, viewDir [3]float32, t float32) [3]float32 {
	phase := float32(math.Sin(float64(t * f.phaseRate)))

	in := f.in[:0]
	in = EncodeInto(in, pos[0], PosBands)
	in = EncodeInto(in, pos[1], PosBands)
	in = EncodeInto(in, pos[2], PosBands)
	in = append(in, normal[0], normal[1], normal[2])
	in = append(in, viewDir[0], viewDir[1], viewDir[2])
	in = append(in, phase)
	f.in = in

	raw := f.eval.Forward(f.store.Current(), in, ActTanh)

	var rgb [3]float32
	BoundColor(&rgb, raw)
	return rgb
}
