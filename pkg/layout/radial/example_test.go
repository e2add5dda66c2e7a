package radial_test

import (
	"fmt"

	"github.com/matzehuels/msttree/pkg/layout/radial"
	"github.com/matzehuels/msttree/pkg/tree/build"
)

func ExampleCompute() {
	one, two := 1.0, 2.0
	t, err := build.FromGraph(build.Graph{
		Nodes: []string{"ST1", "ST2", "ST3"},
		Links: []build.LinkSpec{
			{Source: 0, Target: 1, Distance: &one},
			{Source: 0, Target: 2, Distance: &two},
		},
	})
	if err != nil {
		panic(err)
	}

	res, err := radial.Compute(t, radial.DefaultOptions())
	if err != nil {
		panic(err)
	}
	fmt.Println("Positions:", len(res.Positions))
	fmt.Println("Root:", res.Positions["ST1"])
	fmt.Println("Converged:", res.Converged)
	// Output:
	// Positions: 3
	// Root: [0 0]
	// Converged: true
}
