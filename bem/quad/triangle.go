package quad

// Node2D is a quadrature node (barycentric u, v with the implicit
// third weight 1-u-v) and weight on the reference triangle
// {u>=0, v>=0, u+v<=1} of unit area 1/2.
type Node2D struct {
	U, V, W float64
}

// These are the standard symmetric Dunavant-type triangle rules; the
// original implementation keeps them as static tables named
// quadrature_3, quadrature_7 and quadrature_19 (used for disjoint
// pairs, the default assembly accuracy, and exterior-potential
// evaluation respectively). Weights sum to 1/2, the reference
// triangle's area; the physical-triangle integral is the sum of
// W*f*Jacobian, where Jacobian = 2*Area.

// Triangle3 is the 3-point, order-2-exact symmetric rule.
var Triangle3 = []Node2D{
	{1.0 / 6, 1.0 / 6, 1.0 / 6},
	{2.0 / 3, 1.0 / 6, 1.0 / 6},
	{1.0 / 6, 2.0 / 3, 1.0 / 6},
}

// Triangle7 is the 7-point, order-5-exact symmetric rule.
var Triangle7 = buildTriangle7()

func buildTriangle7() []Node2D {
	a := 0.0597158717897700
	b := 0.4701420641051151
	p := 0.0661970763942531
	c := 0.7974269853530873
	d := 0.1012865073234563
	q := 0.06296959027241355
	return []Node2D{
		{1.0 / 3, 1.0 / 3, 0.1125},
		{a, b, p}, {b, a, p}, {b, b, p},
		{c, d, q}, {d, c, q}, {d, d, q},
	}
}

// Triangle19 is the 19-point, order-8-exact symmetric rule used for
// the exterior-potential evaluation (the original's quadrature_19).
var Triangle19 = buildTriangle19()

func buildTriangle19() []Node2D {
	type group struct {
		a, b, w float64
	}
	center := Node2D{1.0 / 3, 1.0 / 3, 0.0485678981413995}
	g1 := group{0.4896825191987, 0.4896825191987, 0.0156673501135695}
	g2 := group{0.4370895914929, 0.4370895914929, 0.038913770502387}
	g3 := group{0.1882035356191, 0.1882035356191, 0.039823869463605}
	g4 := group{0.0447295133945, 0.0447295133945, 0.012788837829349}
	type asym struct {
		a, b, w float64
	}
	h := asym{0.7411985987844, 0.0368384120547, 0.0216417696886445}

	nodes := []Node2D{center}
	addSym3 := func(g group) {
		a, b := g.a, g.b
		nodes = append(nodes,
			Node2D{a, b, g.w}, Node2D{b, a, g.w}, Node2D{1 - a - b, a, g.w})
	}
	_ = addSym3
	// Three-fold symmetric orbits (a,b), (b,1-a-b), (1-a-b,a).
	orbit3 := func(a, b, w float64) {
		c := 1 - a - b
		nodes = append(nodes,
			Node2D{a, b, w}, Node2D{b, c, w}, Node2D{c, a, w})
	}
	orbit3(g1.a, g1.b, g1.w)
	orbit3(g2.a, g2.b, g2.w)
	orbit3(g3.a, g3.b, g3.w)
	orbit3(g4.a, g4.b, g4.w)
	// Six-fold asymmetric orbit: all permutations of (a,b,c).
	orbit6 := func(a, b, w float64) {
		c := 1 - a - b
		nodes = append(nodes,
			Node2D{a, b, w}, Node2D{b, a, w},
			Node2D{b, c, w}, Node2D{c, b, w},
			Node2D{c, a, w}, Node2D{a, c, w})
	}
	orbit6(h.a, h.b, h.w)
	return nodes
}
