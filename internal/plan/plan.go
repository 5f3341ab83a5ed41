// Package plan models a logical query plan as a sum type over operator
// kinds. It replaces the inheritance-based visitor hierarchy of the
// original planner with a single enum and a switch-dispatch discriminator
// function, per the router's plan-visitor-polymorphism design note: no
// dynamic class hierarchy is needed to walk a tree this shallow.
package plan

// Kind enumerates the logical operator kinds the hasher recognizes.
type Kind int

const (
	KindTableScan Kind = iota
	KindAggregate
	KindFilter
	KindProject
	KindJoin
	KindSort
	KindUnion
	KindIntersect
	KindMinus
	KindExchange
	KindCorrelate
	KindMatch
	KindValues
	KindModify
	KindOther
)

// DistributionKind labels how a LogicalExchange redistributes rows.
type DistributionKind string

const (
	DistributionSingleton  DistributionKind = "SINGLETON"
	DistributionHash       DistributionKind = "HASH"
	DistributionRoundRobin DistributionKind = "ROUND_ROBIN"
	DistributionBroadcast  DistributionKind = "BROADCAST"
	DistributionRandom     DistributionKind = "RANDOM"
)

// AggCall describes one aggregate function invocation within a
// LogicalAggregate, e.g. "COUNT(*)" or "SUM(amount)".
type AggCall struct {
	Function string
	Operand  string
}

// JoinSide identifies a join input by its qualified table name. Nested
// joins are expected to have already been reduced to their driving table
// by the planner before reaching the hasher.
type JoinSide struct {
	QualifiedName string
}

// Literal is a single literal constant the Parameterizer strategy extracts
// into a positional parameter.
type Literal struct {
	Value string
}

// Node is one operator in a logical plan tree. Only the fields relevant to
// its Kind are populated; this is deliberately a flat struct rather than an
// interface hierarchy, modeling a closed sum type.
type Node struct {
	Kind Kind

	// KindTableScan, KindMatch
	QualifiedName string

	// KindAggregate
	AggCalls []AggCall

	// KindProject
	ProjectArity int

	// KindJoin
	JoinLHS JoinSide
	JoinRHS JoinSide

	// KindExchange
	Distribution DistributionKind

	// KindOther: the operator-kind name used in the fallback discriminator
	OperatorKind string

	// Literals embedded directly under this node, in positional order.
	// Populated regardless of Kind; the Parameterizer strategy extracts
	// these while the StructuralShuttle strategy ignores them.
	Literals []Literal

	Children []*Node
}

// IsModification reports whether this plan root represents a write
// (insert/update/delete/merge) rather than a query. Modification plans
// bypass the routing table entirely per the router's contract.
func (n *Node) IsModification() bool {
	return n != nil && n.Kind == KindModify
}

// Walk visits every node in the tree in pre-order (operator before its
// children), calling visit for each. The order is fixed for a given tree.
// The structural-shuttle hasher collects its discriminator set through
// Walk and sorts it, so its QC does not depend on this order.
func Walk(root *Node, visit func(*Node)) {
	if root == nil {
		return
	}
	visit(root)
	for _, child := range root.Children {
		Walk(child, visit)
	}
}
