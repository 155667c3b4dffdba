package router

import (
	"strings"

	"github.com/vango-dev/mall/pkg/route"
	"github.com/vango-dev/mall/pkg/routepath"
)

// node is a node in the route tree.
type node struct {
	// segment is the static segment this node matches
	segment string

	// isParam marks a ":name" node
	isParam   bool
	paramName string

	// route is set on nodes that terminate a declared path
	route *route.Route

	// children are static children
	children []*node

	// paramChild is the single parameter child
	paramChild *node
}

func newNode(segment string) *node {
	return &node{segment: segment}
}

// findChild returns the static child for segment. Static segments match
// without regard to case.
func (n *node) findChild(segment string) *node {
	for _, child := range n.children {
		if strings.EqualFold(child.segment, segment) {
			return child
		}
	}
	return nil
}

func (n *node) addChild(segment string) *node {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := newNode(segment)
	n.children = append(n.children, child)
	return child
}

func (n *node) addParamChild(name string) *node {
	if n.paramChild == nil {
		n.paramChild = &node{isParam: true, paramName: name}
	}
	return n.paramChild
}

// insert binds r to its path in the tree.
func (n *node) insert(r *route.Route) {
	current := n
	for _, seg := range routepath.Segments(r.Path) {
		if strings.HasPrefix(seg, ":") {
			current = current.addParamChild(seg[1:])
		} else {
			current = current.addChild(seg)
		}
	}
	current.route = r
}

// match walks the tree for segments. Static children win over the
// parameter child; a failed parameter branch is backtracked.
func (n *node) match(segments []string, params map[string]string) (*route.Route, bool) {
	if len(segments) == 0 {
		if n.route != nil {
			return n.route, true
		}
		return nil, false
	}

	segment, rest := segments[0], segments[1:]

	if child := n.findChild(segment); child != nil {
		if r, ok := child.match(rest, params); ok {
			return r, true
		}
	}

	if n.paramChild != nil {
		value, err := routepath.DecodeSegment(segment)
		if err != nil {
			return nil, false
		}
		params[n.paramChild.paramName] = value
		if r, ok := n.paramChild.match(rest, params); ok {
			return r, true
		}
		delete(params, n.paramChild.paramName)
	}

	return nil, false
}
