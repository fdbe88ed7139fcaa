// Package compiler turns a plan into a graph, rejecting unknown vocabulary,
// dangling references and ambiguous routes before any rule runs.
package compiler

import (
	"errors"
	"maps"
	"strings"

	"github.com/archlint/core/internal/graph"
	"github.com/archlint/core/internal/models"
)

var componentKinds = map[string]graph.ComponentKind{
	models.ComponentTypeFrontend: graph.ComponentFrontend,
	models.ComponentTypeBackend:  graph.ComponentBackend,
	models.ComponentTypeDatabase: graph.ComponentDatabase,
}

const allowedComponentTypes = "frontend, backend, database"

const (
	resourceAPIEndpoint   = "api_endpoint"
	resourceDatabaseTable = "database_table"
	resourceMigration     = "migration"
)

// resourceAliases is deliberately tiny and applies to resource types only.
var resourceAliases = map[string]string{
	"api":   resourceAPIEndpoint,
	"table": resourceDatabaseTable,
}

const allowedResourceTypes = "api_endpoint, database_table, migration"

var edgeKinds = map[string]graph.EdgeKind{
	models.RelationshipCalls:     graph.EdgeCalls,
	models.RelationshipCreates:   graph.EdgeCreates,
	models.RelationshipReads:     graph.EdgeReads,
	models.RelationshipUpdates:   graph.EdgeUpdates,
	models.RelationshipDeletes:   graph.EdgeDeletes,
	models.RelationshipDependsOn: graph.EdgeDependsOn,
}

const allowedRelationshipTypes = "calls, creates, reads, updates, deletes, depends_on"

// Compile builds the graph for plan. On failure it returns a *Error and no
// graph.
func Compile(plan *models.Plan) (*graph.Graph, error) {
	if plan == nil {
		return nil, errors.New("compile: nil plan")
	}
	b := graph.NewBuilder()

	for _, c := range plan.Components {
		kind, ok := componentKinds[c.Type]
		if !ok {
			return nil, failf(CodeUnknownComponentType,
				"unknown component type %q on component %s (allowed: %s)", c.Type, c.ID, allowedComponentTypes)
		}
		node := graph.Node{ID: c.ID, Name: c.Name, Props: graph.ComponentProps{Path: c.Path, Kind: kind}}
		if err := addNode(b, node); err != nil {
			return nil, err
		}

		for _, r := range c.Resources {
			props, err := resourceProps(r)
			if err != nil {
				return nil, err
			}
			if err := addNode(b, graph.Node{ID: r.ID, Name: r.Name, Props: props}); err != nil {
				return nil, err
			}
			if err := b.AddEdge(graph.Edge{Source: c.ID, Target: r.ID, Kind: graph.EdgeContains}); err != nil {
				return nil, err
			}
		}
	}

	for _, rel := range plan.Relationships {
		kind, ok := edgeKinds[rel.Type]
		if !ok {
			return nil, failf(CodeUnknownRelationshipType,
				"unknown relationship type %q (allowed: %s)", rel.Type, allowedRelationshipTypes)
		}
		edge := graph.Edge{Source: rel.Source, Target: rel.Target, Kind: kind, Meta: maps.Clone(rel.Metadata)}
		if kind == graph.EdgeCalls {
			edge.Call = &graph.Call{Path: stringField(rel.Metadata, "path"), Method: stringField(rel.Metadata, "method")}
		}
		if err := b.AddEdge(edge); err != nil {
			var gerr *graph.Error
			if errors.As(err, &gerr) {
				return nil, failf(CodeDependencyExists,
					"relationship %s -> %s (%s) references missing node %q", rel.Source, rel.Target, rel.Type, gerr.ID)
			}
			return nil, err
		}
	}

	g := b.Build()
	if err := rejectAmbiguity(g); err != nil {
		return nil, err
	}
	return g, nil
}

func addNode(b *graph.Builder, n graph.Node) error {
	err := b.AddNode(n)
	if errors.Is(err, graph.ErrDuplicateNode) {
		return failf(CodeDuplicateNodeID, "node id %q is declared more than once", n.ID)
	}
	return err
}

func resourceProps(r models.Resource) (graph.Properties, error) {
	kind := r.Type
	if alias, ok := resourceAliases[kind]; ok {
		kind = alias
	}
	switch kind {
	case resourceAPIEndpoint:
		return endpointProps(r.Properties), nil
	case resourceDatabaseTable:
		return graph.TableProps{Extra: maps.Clone(r.Properties)}, nil
	case resourceMigration:
		return graph.MigrationProps{Extra: maps.Clone(r.Properties)}, nil
	default:
		return nil, failf(CodeUnknownResourceType,
			"unknown resource type %q on resource %s (allowed: %s)", r.Type, r.ID, allowedResourceTypes)
	}
}

// endpointProps lifts the well-known keys out of an endpoint's property bag.
// Non-string method or path values are left in Extra untouched.
func endpointProps(raw map[string]any) graph.EndpointProps {
	extra := maps.Clone(raw)
	if extra == nil {
		extra = map[string]any{}
	}
	p := graph.EndpointProps{}
	if s, ok := extra["method"].(string); ok {
		p.Method = s
		delete(extra, "method")
	}
	if s, ok := extra["path"].(string); ok {
		p.Path = s
		delete(extra, "path")
	}
	p.Schema = takeSchema(extra, "schema")
	p.RequestSchema = takeSchema(extra, "request_schema")
	p.ResponseSchema = takeSchema(extra, "response_schema")
	p.Extra = extra
	return p
}

func takeSchema(m map[string]any, key string) *graph.Schema {
	v, ok := m[key]
	if !ok {
		return nil
	}
	delete(m, key)
	return &graph.Schema{Value: v}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

type route struct {
	method string
	path   string
}

func rejectAmbiguity(g *graph.Graph) error {
	seen := make(map[route]string)
	for _, n := range g.NodesOfKind(graph.NodeAPIEndpoint) {
		p, _ := n.Endpoint()
		if p.Method == "" || p.Path == "" {
			continue
		}
		key := route{method: strings.ToUpper(p.Method), path: p.Path}
		if first, dup := seen[key]; dup {
			return failf(CodeUniqueEndpoint,
				"%s %s declared in multiple resources: %s and %s", key.method, key.path, first, n.ID)
		}
		seen[key] = n.ID
	}

	for _, e := range g.Edges() {
		if e.Kind != graph.EdgeCalls || e.Call == nil || e.Call.Path == "" {
			continue
		}
		target, ok := g.Node(e.Target)
		if !ok || target.Kind() != graph.NodeComponent {
			continue
		}
		candidates := g.MatchEndpoints(target.ID, *e.Call)
		if len(candidates) > 1 {
			ids := make([]string, len(candidates))
			for i, c := range candidates {
				ids[i] = c.ID
			}
			return failf(CodeNoAmbiguousRoute,
				"call to %s on %s is ambiguous, matches: [%s]", e.Call.Path, target.Name, strings.Join(ids, ", "))
		}
	}
	return nil
}
