// Package models defines the plan, report and graph-view types shared across archlint.
// It includes their JSON/YAML encodings and schema validation tags.
package models

// Graph is the serializable view of a compiled plan.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Stats *Stats `json:"stats,omitempty"`
}

type Node struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
}

type Edge struct {
	Source   string         `json:"source"`
	Target   string         `json:"target"`
	Type     string         `json:"type"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type Stats struct {
	TotalNodes  int            `json:"total_nodes"`
	TotalEdges  int            `json:"total_edges"`
	NodesByKind map[string]int `json:"nodes_by_kind,omitempty"`
	EdgesByKind map[string]int `json:"edges_by_kind,omitempty"`
}
