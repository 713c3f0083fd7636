package output

// DeclInfo describes a registered declaration.
type DeclInfo struct {
	Name        string   `json:"name" yaml:"name"`
	Kind        string   `json:"kind" yaml:"kind"`
	Generic     bool     `json:"generic,omitempty" yaml:"generic,omitempty"`
	Parents     []string `json:"parents,omitempty" yaml:"parents,omitempty"`
	ParentsFrom string   `json:"parents_from,omitempty" yaml:"parents_from,omitempty"`
	Fields      int      `json:"fields" yaml:"fields"`
	Behaviors   int      `json:"behaviors" yaml:"behaviors"`
	File        string   `json:"file" yaml:"file"`
	Line        int      `json:"line" yaml:"line"`
}

// ListOutput is the structured output of the list command.
type ListOutput struct {
	Dir          string     `json:"dir" yaml:"dir"`
	Package      string     `json:"package" yaml:"package"`
	Declarations []DeclInfo `json:"declarations" yaml:"declarations"`
	Targets      int        `json:"targets" yaml:"targets"`
}

// GraphNode is a declaration in the inheritance graph.
type GraphNode struct {
	Name     string   `json:"name" yaml:"name"`
	Level    int      `json:"level" yaml:"level"`
	Parents  []string `json:"parents,omitempty" yaml:"parents,omitempty"`
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`
}

// MissingParent is a parent reference to an undeclared name.
type MissingParent struct {
	Child  string `json:"child" yaml:"child"`
	Parent string `json:"parent" yaml:"parent"`
}

// GraphOutput is the structured output of the graph command.
type GraphOutput struct {
	Dir     string          `json:"dir" yaml:"dir"`
	Nodes   []GraphNode     `json:"nodes" yaml:"nodes"`
	Edges   int             `json:"edges" yaml:"edges"`
	Missing []MissingParent `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// FieldInfo describes a composed field.
type FieldInfo struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Type     string `json:"type" yaml:"type"`
	Tag      string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Embedded bool   `json:"embedded,omitempty" yaml:"embedded,omitempty"`
	Origin   string `json:"origin" yaml:"origin"`
}

// BehaviorInfo describes a composed behavior unit.
type BehaviorInfo struct {
	Name   string `json:"name" yaml:"name"`
	Kind   string `json:"kind" yaml:"kind"`
	Origin string `json:"origin" yaml:"origin"`
}

// ComposeOutput is the structured output of the compose command.
type ComposeOutput struct {
	Name      string         `json:"name" yaml:"name"`
	Parents   []string       `json:"parents" yaml:"parents"`
	Fields    []FieldInfo    `json:"fields" yaml:"fields"`
	Behaviors []BehaviorInfo `json:"behaviors" yaml:"behaviors"`
	Contract  string         `json:"contract,omitempty" yaml:"contract,omitempty"`
	Source    string         `json:"source" yaml:"source"`
}

// GenerateInfo describes the outcome for one package.
type GenerateInfo struct {
	Dir        string   `json:"dir" yaml:"dir"`
	Output     string   `json:"output" yaml:"output"`
	Targets    []string `json:"targets" yaml:"targets"`
	Written    bool     `json:"written" yaml:"written"`
	Skipped    bool     `json:"skipped" yaml:"skipped"`
	Removed    bool     `json:"removed" yaml:"removed"`
	Stale      bool     `json:"stale" yaml:"stale"`
	Diff       string   `json:"diff,omitempty" yaml:"diff,omitempty"`
	DurationMS int64    `json:"duration_ms" yaml:"duration_ms"`
}

// GenerateOutput is the structured output of the gen and check commands.
type GenerateOutput struct {
	Packages []GenerateInfo `json:"packages" yaml:"packages"`
	Written  int            `json:"written" yaml:"written"`
	Stale    int            `json:"stale" yaml:"stale"`
	Errors   []string       `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// RunInfo describes a recorded generation run.
type RunInfo struct {
	ID          string `json:"id" yaml:"id"`
	Command     string `json:"command" yaml:"command"`
	Status      string `json:"status" yaml:"status"`
	StartedAt   string `json:"started_at" yaml:"started_at"`
	CompletedAt string `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Packages    int    `json:"packages" yaml:"packages"`
	Written     int    `json:"written" yaml:"written"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// OutputInfo describes a recorded generated file.
type OutputInfo struct {
	Dir         string   `json:"dir" yaml:"dir"`
	Path        string   `json:"path" yaml:"path"`
	Targets     []string `json:"targets" yaml:"targets"`
	GeneratedAt string   `json:"generated_at" yaml:"generated_at"`
}

// StatusOutput is the structured output of the status command.
type StatusOutput struct {
	StatePath string       `json:"state_path" yaml:"state_path"`
	Outputs   []OutputInfo `json:"outputs" yaml:"outputs"`
	Runs      []RunInfo    `json:"runs" yaml:"runs"`
}
