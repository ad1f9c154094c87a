//-----------------------------------------------------------------------------
/*

Evolve a single spherical bubble under a uniform pressure drop and
print its time, volume and step-size history to stdout.

*/
//-----------------------------------------------------------------------------

package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/thomtron/bem-bubbles/bem/mesh"
	"github.com/thomtron/bem-bubbles/bem/sim"
)

//-----------------------------------------------------------------------------

func main() {
	radius := flag.Float64("radius", 1.0, "initial bubble radius")
	subdiv := flag.Int("subdiv", 2, "icosphere subdivision level")
	steps := flag.Int("steps", 20, "number of evolution steps")
	pInf := flag.Float64("pinf", 1.0, "ambient pressure at infinity")
	threads := flag.Int("threads", 0, "assembly worker count (0 = NumCPU)")
	flag.Parse()

	m := mesh.Icosphere(*radius, *subdiv)

	s := sim.NewSimulation(m)
	s.SetV0(mesh.Volume(m))
	s.SetNumThreads(*threads)
	s.Params.PInf = *pInf

	fmt.Printf("step\ttime\tvolume\tdt\n")
	for i := 0; i < *steps; i++ {
		dt, err := s.EvolveSystemRK4()
		if err != nil {
			log.Fatalf("error: %s", err)
		}
		fmt.Printf("%d\t%.6g\t%.6g\t%.6g\n", i, s.GetTime(), s.GetVolume(), dt)
	}
}

//-----------------------------------------------------------------------------
