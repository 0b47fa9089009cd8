// tree_builder.go
// ---------------
// The TreeBuilder turns the provider's flat, paged hierarchy listings into a
// rooted NodeTree. Parent/child edges come only from the parent-reference
// field on each record of a single listing pass, so cycles cannot form. An
// entity whose declared parent is absent from the listing is kept as an
// orphan root and logged, never dropped silently and never a hard failure.
//
// Every ConstructTree call fetches fresh data. Caching here would let stale
// hierarchies corrupt targeting decisions downstream.
package adbridge

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultTreePageSize = 500

// Node is one entity in an assembled hierarchy. Orphaned marks a node whose
// declared parent was missing from the listing; it is attached as an extra
// root.
type Node struct {
	Targetable
	Children []*Node
	Orphaned bool
}

// NodeTree is the forest assembled for one target type. Roots preserves the
// provider's listing order.
type NodeTree struct {
	Type  TargetType
	Roots []*Node
}

// Walk visits every node depth-first in listing order.
func (t *NodeTree) Walk(fn func(*Node)) {
	var visit func(n *Node)
	visit = func(n *Node) {
		fn(n)
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, r := range t.Roots {
		visit(r)
	}
}

// Len returns the number of nodes in the tree.
func (t *NodeTree) Len() int {
	n := 0
	t.Walk(func(*Node) { n++ })
	return n
}

// TreeBuilder assembles NodeTrees against one provider session. Constructed
// once per gateway and shares its lifetime.
type TreeBuilder struct {
	providerID ProviderID
	provider   Provider
	timeout    time.Duration
	pageSize   int
	logger     logrus.FieldLogger
}

func NewTreeBuilder(id ProviderID, provider Provider, timeout time.Duration, logger logrus.FieldLogger) *TreeBuilder {
	return &TreeBuilder{
		providerID: id,
		provider:   provider,
		timeout:    timeout,
		pageSize:   defaultTreePageSize,
		logger:     logger,
	}
}

// ConstructTree fetches the complete flat listing for typ and links it into a
// NodeTree. Read-only with respect to provider state.
func (tb *TreeBuilder) ConstructTree(ctx context.Context, typ TargetType) (*NodeTree, error) {
	var entities []Targetable
	for offset := 0; ; offset += tb.pageSize {
		off := offset
		page, err := guardedCall(ctx, tb.timeout, "GetTargetables", func(ctx context.Context) ([]Targetable, error) {
			return tb.provider.GetTargetables(ctx, typ, tb.pageSize, off)
		})
		if err != nil {
			return nil, err
		}
		entities = append(entities, page...)
		if len(page) < tb.pageSize {
			break
		}
	}

	index := make(map[int64]*Node, len(entities))
	for i := range entities {
		index[entities[i].ID] = &Node{Targetable: entities[i]}
	}

	tree := &NodeTree{Type: typ}
	for i := range entities {
		node := index[entities[i].ID]
		if node.ParentID == 0 {
			tree.Roots = append(tree.Roots, node)
			continue
		}
		parent, ok := index[node.ParentID]
		if !ok {
			node.Orphaned = true
			tree.Roots = append(tree.Roots, node)
			tb.logger.WithFields(logrus.Fields{
				"provider":    tb.providerID,
				"target_type": typ,
				"id":          node.ID,
				"parent_id":   node.ParentID,
			}).Warn("entity references a parent absent from the listing; keeping it as a root")
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return tree, nil
}
