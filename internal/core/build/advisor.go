package build

// Advisor decides, per node, whether a build pass may reuse the node's
// cached result instead of recompiling it.
type Advisor interface {
	Reuse(n *Node) bool
}

// DefaultAdvisor reuses a node only when it and each of its direct
// dependencies are TypeChecked. Transitive changes are covered because
// MarkFresh pushes Fresh through to every dependent.
type DefaultAdvisor struct{}

// Reuse implements Advisor.
func (DefaultAdvisor) Reuse(n *Node) bool {
	if n.State != TypeChecked {
		return false
	}
	for _, dep := range n.Deps {
		if dep.State != TypeChecked {
			return false
		}
	}
	return true
}

// ForcedAdvisor never reuses a cached result, so every node is recompiled
// on every pass.
type ForcedAdvisor struct{}

// Reuse implements Advisor.
func (ForcedAdvisor) Reuse(*Node) bool {
	return false
}
