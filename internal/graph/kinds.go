// Package graph is the typed intermediate representation compiled from a plan.
//
// A Builder accumulates nodes and edges; Build yields an immutable Graph that
// rule evaluators query. Graph has no mutators. All query results come back
// in insertion order.
package graph

// NodeKind tags a node. The set is closed.
type NodeKind uint8

const (
	NodeComponent NodeKind = iota + 1
	NodeAPIEndpoint
	NodeDatabaseTable
	NodeMigration
)

func (k NodeKind) String() string {
	switch k {
	case NodeComponent:
		return "component"
	case NodeAPIEndpoint:
		return "api_endpoint"
	case NodeDatabaseTable:
		return "database_table"
	case NodeMigration:
		return "migration"
	default:
		return "unknown"
	}
}

// EdgeKind tags an edge. EdgeContains links a component to its resources;
// the rest mirror plan relationship kinds.
type EdgeKind uint8

const (
	EdgeContains EdgeKind = iota + 1
	EdgeCalls
	EdgeCreates
	EdgeReads
	EdgeUpdates
	EdgeDeletes
	EdgeDependsOn
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeContains:
		return "contains"
	case EdgeCalls:
		return "calls"
	case EdgeCreates:
		return "creates"
	case EdgeReads:
		return "reads"
	case EdgeUpdates:
		return "updates"
	case EdgeDeletes:
		return "deletes"
	case EdgeDependsOn:
		return "depends_on"
	default:
		return "unknown"
	}
}

// ComponentKind is the role of a component node.
type ComponentKind uint8

const (
	ComponentFrontend ComponentKind = iota + 1
	ComponentBackend
	ComponentDatabase
)

func (k ComponentKind) String() string {
	switch k {
	case ComponentFrontend:
		return "frontend"
	case ComponentBackend:
		return "backend"
	case ComponentDatabase:
		return "database"
	default:
		return "unknown"
	}
}
