package graph

// Properties is the kind-specific payload of a node. Exactly one of
// ComponentProps, EndpointProps, TableProps or MigrationProps.
type Properties interface {
	nodeKind() NodeKind
}

// ComponentProps describes a component node.
type ComponentProps struct {
	Path string
	Kind ComponentKind
}

// EndpointProps describes an api_endpoint resource.
//
// Schema, RequestSchema and ResponseSchema are nil when the resource does not
// declare them. A declared schema may itself be empty.
type EndpointProps struct {
	Method         string
	Path           string
	Schema         *Schema
	RequestSchema  *Schema
	ResponseSchema *Schema
	Extra          map[string]any
}

// Schema is a declared schema document, kept opaque.
type Schema struct {
	Value any
}

// DeclaresSchema reports whether any schema slot is present.
func (p EndpointProps) DeclaresSchema() bool {
	return p.Schema != nil || p.RequestSchema != nil || p.ResponseSchema != nil
}

// TableProps describes a database_table resource.
type TableProps struct {
	Extra map[string]any
}

// MigrationProps describes a migration resource.
type MigrationProps struct {
	Extra map[string]any
}

func (ComponentProps) nodeKind() NodeKind { return NodeComponent }
func (EndpointProps) nodeKind() NodeKind  { return NodeAPIEndpoint }
func (TableProps) nodeKind() NodeKind     { return NodeDatabaseTable }
func (MigrationProps) nodeKind() NodeKind { return NodeMigration }

// Node is a vertex of the graph. Its kind follows from Props.
type Node struct {
	ID    string
	Name  string
	Props Properties
}

// Kind returns the node kind, or 0 if Props is unset.
func (n Node) Kind() NodeKind {
	if n.Props == nil {
		return 0
	}
	return n.Props.nodeKind()
}

// Component returns the component payload when n is a component.
func (n Node) Component() (ComponentProps, bool) {
	p, ok := n.Props.(ComponentProps)
	return p, ok
}

// Endpoint returns the endpoint payload when n is an api_endpoint.
func (n Node) Endpoint() (EndpointProps, bool) {
	p, ok := n.Props.(EndpointProps)
	return p, ok
}

// IsComponentOf reports whether n is a component of the given kind.
func (n Node) IsComponentOf(kind ComponentKind) bool {
	p, ok := n.Component()
	return ok && p.Kind == kind
}

// Call is the typed view of a "calls" edge's metadata. Empty fields were
// absent in the plan.
type Call struct {
	Path   string
	Method string
}

// Edge is a directed, kinded link. Parallel edges between the same pair are
// allowed.
type Edge struct {
	Source string
	Target string
	Kind   EdgeKind
	// Call is set on EdgeCalls edges only.
	Call *Call
	Meta map[string]any
}
