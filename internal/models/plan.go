// Package models defines the plan, report and graph-view types shared across archlint.
// It includes their JSON/YAML encodings and schema validation tags.
package models

// Plan is a declarative architecture description submitted for validation.
type Plan struct {
	SchemaVersion string            `json:"schema_version" yaml:"schema_version" validate:"required"`
	ProjectName   string            `json:"project_name" yaml:"project_name" validate:"required"`
	Components    []Component       `json:"components" yaml:"components" validate:"required,dive"`
	Relationships []Relationship    `json:"relationships" yaml:"relationships" validate:"required,dive"`
	EnvVars       map[string]string `json:"env_vars" yaml:"env_vars"`
}

// Component types accepted by the schema. The compiler accepts a narrower set.
const (
	ComponentTypeFrontend = "frontend"
	ComponentTypeBackend  = "backend"
	ComponentTypeDatabase = "database"
	ComponentTypeWorker   = "worker"
	ComponentTypeCLI      = "cli"
)

type Component struct {
	ID           string     `json:"id" yaml:"id" validate:"required"`
	Name         string     `json:"name" yaml:"name" validate:"required"`
	Type         string     `json:"type" yaml:"type" validate:"required,oneof=frontend backend database worker cli"`
	Path         string     `json:"path" yaml:"path" validate:"required"`
	Resources    []Resource `json:"resources" yaml:"resources" validate:"dive"`
	Dependencies []string   `json:"dependencies" yaml:"dependencies"`
}

type Resource struct {
	ID          string     `json:"id" yaml:"id" validate:"required"`
	Type        string     `json:"type" yaml:"type" validate:"required"`
	Name        string     `json:"name" yaml:"name" validate:"required"`
	Description *string    `json:"description" yaml:"description"`
	Properties  Attributes `json:"properties" yaml:"properties"`
}

// Relationship types accepted by both the schema and the compiler.
const (
	RelationshipCalls     = "calls"
	RelationshipCreates   = "creates"
	RelationshipReads     = "reads"
	RelationshipUpdates   = "updates"
	RelationshipDeletes   = "deletes"
	RelationshipDependsOn = "depends_on"
)

type Relationship struct {
	Source   string     `json:"source" yaml:"source" validate:"required"`
	Target   string     `json:"target" yaml:"target" validate:"required"`
	Type     string     `json:"type" yaml:"type" validate:"required,oneof=calls creates reads updates deletes depends_on"`
	Metadata Attributes `json:"metadata" yaml:"metadata"`
}

// Normalized returns a copy in which absent lists and maps are empty rather
// than nil, so that an omitted field and an explicitly empty one hash alike.
func (p Plan) Normalized() Plan {
	out := p
	out.Components = make([]Component, len(p.Components))
	for i, c := range p.Components {
		if c.Dependencies == nil {
			c.Dependencies = []string{}
		}
		resources := make([]Resource, len(c.Resources))
		for j, r := range c.Resources {
			if r.Properties == nil {
				r.Properties = map[string]any{}
			}
			resources[j] = r
		}
		c.Resources = resources
		out.Components[i] = c
	}
	out.Relationships = make([]Relationship, len(p.Relationships))
	for i, r := range p.Relationships {
		if r.Metadata == nil {
			r.Metadata = map[string]any{}
		}
		out.Relationships[i] = r
	}
	if out.EnvVars == nil {
		out.EnvVars = map[string]string{}
	}
	return out
}
