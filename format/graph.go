package format

import (
	"github.com/dhamidi/dexdis/dalvik"
	"github.com/zboralski/lattice"
	"github.com/zboralski/lattice/render"
)

const objectType = "Ljava/lang/Object;"

// HierarchyGraph builds the inheritance graph of classes. Every class becomes
// a node; each class has an edge to its superclass and one to every
// interface it implements. Supertypes defined outside classes appear only as
// edge targets. Edges to java.lang.Object are left out unless withObject is
// set.
func HierarchyGraph(classes []*dalvik.Class, withObject bool) *lattice.Graph {
	g := &lattice.Graph{}
	for _, c := range classes {
		name := c.Name()
		g.Nodes = append(g.Nodes, name)

		if super := c.SuperType(); super != "" && (withObject || super != objectType) {
			g.Edges = append(g.Edges, lattice.Edge{
				Caller: name,
				Callee: sourceName(super),
			})
		}
		for _, iface := range c.Interfaces() {
			g.Edges = append(g.Edges, lattice.Edge{
				Caller: name,
				Callee: sourceName(iface),
			})
		}
	}
	g.Dedup()
	return g
}

// DOT renders the hierarchy graph of classes in Graphviz format.
func DOT(classes []*dalvik.Class, title string, withObject bool) string {
	return render.DOT(HierarchyGraph(classes, withObject), title)
}
