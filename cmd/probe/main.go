// Command probe evaluates the neural field on a regular grid and writes the
// samples to CSV. Useful for eyeballing the field offline and for
// cross-checking the host evaluator against a captured GPU frame.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/reverie/config"
	"github.com/pthm-cable/reverie/neural"
)

// Sample is one grid evaluation row.
type Sample struct {
	X       float32 `csv:"x"`
	Z       float32 `csv:"z"`
	Height  float32 `csv:"height"`
	NormalX float32 `csv:"nx"`
	NormalY float32 `csv:"ny"`
	NormalZ float32 `csv:"nz"`
	R       float32 `csv:"r"`
	G       float32 `csv:"g"`
	B       float32 `csv:"b"`
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	out := flag.String("out", "field.csv", "Output CSV path")
	res := flag.Int("res", 64, "Samples per axis")
	at := flag.Float64("time", 0, "Evaluation time in seconds")
	seed := flag.Int64("seed", 0, "Weight init seed (0 = config default)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("loading config: %v", err)
	}
	cfg := config.Cfg()

	s := *seed
	if s == 0 {
		s = cfg.Field.Seed
	}
	rng := rand.New(rand.NewSource(s))

	terrainStore, err := neural.NewStore(neural.TerrainNet,
		float32(cfg.Field.InitScale), float32(cfg.Field.BiasInit), rng)
	if err != nil {
		log.Fatalf("creating terrain store: %v", err)
	}
	colorStore, err := neural.NewStore(neural.ColorNet,
		float32(cfg.Field.InitScale), float32(cfg.Field.BiasInit), rng)
	if err != nil {
		log.Fatalf("creating color store: %v", err)
	}

	field, err := neural.NewTerrainField(terrainStore,
		cfg.Derived.NormalEps, float32(cfg.Field.TimePhaseHz))
	if err != nil {
		log.Fatalf("creating terrain sampler: %v", err)
	}
	colors, err := neural.NewColorField(colorStore, float32(cfg.Field.TimePhaseHz))
	if err != nil {
		log.Fatalf("creating color sampler: %v", err)
	}

	ext := cfg.Derived.WorldExtent
	t := float32(*at)
	viewDir := [3]float32{0, -1, 0}

	samples := make([]Sample, 0, (*res)*(*res))
	for iz := 0; iz < *res; iz++ {
		for ix := 0; ix < *res; ix++ {
			x := -ext + 2*ext*float32(ix)/float32(*res-1)
			z := -ext + 2*ext*float32(iz)/float32(*res-1)

			h, n := field.Sample(x, z, t)
			rgb := colors.ColorAt([3]float32{x, h, z}, n, viewDir, t)

			samples = append(samples, Sample{
				X: x, Z: z, Height: h,
				NormalX: n[0], NormalY: n[1], NormalZ: n[2],
				R: rgb[0], G: rgb[1], B: rgb[2],
			})
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("creating %s: %v", *out, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(samples, f); err != nil {
		log.Fatalf("writing %s: %v", *out, err)
	}

	fmt.Printf("wrote %d samples to %s\n", len(samples), *out)
}
