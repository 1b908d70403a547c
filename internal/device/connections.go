package device

import kqterrors "github.com/kunquat/kqsynth/internal/errors"

// Connections is a directed acyclic graph over Devices with a distinguished
// master node (empty-string name), per spec.md §4.5.
type Connections struct {
	level Level
	nodes map[string]*Node
	devices map[string]*Device // name -> device, for lookup/creation
}

// NewConnections creates an empty graph pre-seeded with the master node.
func NewConnections(level Level) *Connections {
	c := &Connections{level: level, nodes: make(map[string]*Node), devices: make(map[string]*Device)}
	c.nodes[""] = newNode("", nil)
	return c
}

// Master returns the pre-created master node.
func (c *Connections) Master() *Node { return c.nodes[""] }

func (c *Connections) getOrCreateNode(name string) *Node {
	if n, ok := c.nodes[name]; ok {
		return n
	}
	n := newNode(name, c.devices[name])
	c.nodes[name] = n
	return n
}

// BindDevice attaches a concrete Device to a node name so later lookups can
// resolve ports. Build creates its own Connections and does not check that
// the ports named by its edges exist on any bound Device.
func (c *Connections) BindDevice(name string, d *Device) {
	c.devices[name] = d
	if n, ok := c.nodes[name]; ok {
		n.Device = d
	}
}

// Edge is a raw (src, dst) connection-path pair as found in project data.
type Edge struct {
	Src, Dst string
}

// Build constructs the graph from a list of edges, validating each path and
// rejecting cycles. On any error the graph is left unusable and the error is
// returned (spec.md §4.5: "the graph is destroyed and the caller is
// notified").
func Build(level Level, edges []Edge) (*Connections, error) {
	c := NewConnections(level)
	for _, e := range edges {
		srcInfo, err := ValidateConnectionPath(e.Src, level, DirSource)
		if err != nil {
			return nil, err
		}
		dstInfo, err := ValidateConnectionPath(e.Dst, level, DirDest)
		if err != nil {
			return nil, err
		}
		srcNode := c.getOrCreateNode(deviceName(srcInfo))
		dstNode := c.getOrCreateNode(deviceName(dstInfo))
		dstNode.connect(dstInfo.Port, srcNode, srcInfo.Port)
	}
	if err := c.checkAcyclic(); err != nil {
		return nil, err
	}
	return c, nil
}

// deviceName is the graph-node identity for a parsed path: the device the
// port belongs to, with the trailing in_XX/out_XX port segment stripped.
func deviceName(info PathInfo) string {
	switch {
	case info.ProcessorDir != "" && info.AudioUnit != "":
		return info.AudioUnit + "/" + info.ProcessorDir + "/C"
	case info.ProcessorDir != "":
		return info.ProcessorDir + "/C"
	default:
		return info.AudioUnit
	}
}

type color int

const (
	colorNew color = iota
	colorVisiting
	colorDone
)

// checkAcyclic runs a DFS coloring pass over a side table (design note §9:
// nodes stay pure data; traversal state lives outside them).
func (c *Connections) checkAcyclic() error {
	colors := make(map[string]color, len(c.nodes))
	for name := range c.nodes {
		colors[name] = colorNew
	}
	var visit func(n *Node) error
	visit = func(n *Node) error {
		switch colors[n.Name] {
		case colorDone:
			return nil
		case colorVisiting:
			return kqterrors.Newf("connections graph contains a cycle at %q", n.Name).
				Component("device").Category(kqterrors.CategoryCycle).Context("node", n.Name).Build()
		}
		colors[n.Name] = colorVisiting
		for _, port := range n.InPortsUsed() {
			for _, src := range n.Sources(port) {
				if err := visit(src.Node); err != nil {
					return err
				}
			}
		}
		colors[n.Name] = colorDone
		return nil
	}
	for _, n := range c.nodes {
		if err := visit(n); err != nil {
			return err
		}
	}
	return nil
}

// PostOrder returns nodes reachable from the master, leaves first, suitable
// for the mix traversal in spec.md §4.5.
func (c *Connections) PostOrder() []*Node {
	colors := make(map[string]color, len(c.nodes))
	var order []*Node
	var visit func(n *Node)
	visit = func(n *Node) {
		if colors[n.Name] == colorDone {
			return
		}
		colors[n.Name] = colorVisiting
		for _, port := range n.InPortsUsed() {
			for _, src := range n.Sources(port) {
				visit(src.Node)
			}
		}
		colors[n.Name] = colorDone
		order = append(order, n)
	}
	visit(c.Master())
	return order
}
