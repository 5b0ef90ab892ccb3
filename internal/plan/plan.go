// Package plan wraps the steps collected for a schema diff into a migration
// plan that can be printed for humans, as JSON or as plain SQL.
package plan

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/schemadiff/schemadiff/internal/color"
	"github.com/schemadiff/schemadiff/internal/diff"
	"github.com/schemadiff/schemadiff/internal/fingerprint"
	"github.com/schemadiff/schemadiff/internal/platform"
	"github.com/schemadiff/schemadiff/internal/sqlcollector"
	"github.com/schemadiff/schemadiff/internal/version"
)

// Plan represents the migration plan between two schema states on one platform
type Plan struct {
	// The underlying diff data
	Diff *diff.SchemaDiff `json:"-"`

	// Platform the DDL was generated for
	Platform string `json:"platform"`

	// Steps in execution order
	Steps []sqlcollector.Step `json:"steps"`

	// Fingerprints of the current and desired schema
	From *fingerprint.SchemaFingerprint `json:"from"`
	To   *fingerprint.SchemaFingerprint `json:"to"`

	// Plan metadata
	CreatedAt time.Time `json:"created_at"`
}

// ObjectChange represents a single change to a database object
type ObjectChange struct {
	Address string `json:"address"`
	Type    string `json:"type"`
	Action  string `json:"action"` // create, alter, rename, drop
}

// PlanJSON represents the structured JSON output format
type PlanJSON struct {
	Version           string                         `json:"version"`
	SchemadiffVersion string                         `json:"schemadiff_version"`
	CreatedAt         time.Time                      `json:"created_at"`
	Platform          string                         `json:"platform"`
	From              *fingerprint.SchemaFingerprint `json:"from"`
	To                *fingerprint.SchemaFingerprint `json:"to"`
	Summary           PlanSummary                    `json:"summary"`
	ObjectChanges     []ObjectChange                 `json:"object_changes"`
	Steps             []sqlcollector.Step            `json:"steps"`
}

// PlanSummary provides counts of changes by type
type PlanSummary struct {
	Add     int                    `json:"add"`
	Change  int                    `json:"change"`
	Destroy int                    `json:"destroy"`
	Total   int                    `json:"total"`
	ByType  map[string]TypeSummary `json:"by_type"`
}

// TypeSummary provides counts for a specific object type
type TypeSummary struct {
	Add     int `json:"add"`
	Change  int `json:"change"`
	Destroy int `json:"destroy"`
}

// objectOrder is the order object types are listed in the human output
var objectOrder = []string{
	sqlcollector.ObjectSchema,
	sqlcollector.ObjectSequence,
	sqlcollector.ObjectTable,
	sqlcollector.ObjectColumn,
	sqlcollector.ObjectPrimaryKey,
	sqlcollector.ObjectIndex,
	sqlcollector.ObjectForeignKey,
	sqlcollector.ObjectCheck,
	sqlcollector.ObjectView,
}

var displayNames = map[string]string{
	sqlcollector.ObjectSchema:     "Schemas",
	sqlcollector.ObjectSequence:   "Sequences",
	sqlcollector.ObjectTable:      "Tables",
	sqlcollector.ObjectColumn:     "Columns",
	sqlcollector.ObjectPrimaryKey: "Primary keys",
	sqlcollector.ObjectIndex:      "Indexes",
	sqlcollector.ObjectForeignKey: "Foreign keys",
	sqlcollector.ObjectCheck:      "Checks",
	sqlcollector.ObjectView:       "Views",
}

// ========== PUBLIC METHODS ==========

// NewPlan collects the DDL of schemaDiff for the platform
func NewPlan(p platform.Platform, schemaDiff *diff.SchemaDiff) (*Plan, error) {
	collector := sqlcollector.NewAlterSchemaSQLCollector(p)
	if err := collector.Collect(schemaDiff); err != nil {
		return nil, fmt.Errorf("failed to generate %s migration: %w", p.Name(), err)
	}

	from, err := fingerprint.ComputeFingerprint(schemaDiff.Old)
	if err != nil {
		return nil, err
	}
	to, err := fingerprint.ComputeFingerprint(schemaDiff.New)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Diff:      schemaDiff,
		Platform:  p.Name(),
		Steps:     collector.Steps(),
		From:      from,
		To:        to,
		CreatedAt: time.Now(),
	}, nil
}

// HasChanges reports whether the plan has anything to execute
func (p *Plan) HasChanges() bool {
	return len(p.Steps) > 0
}

// Queries returns the SQL of every step without terminators
func (p *Plan) Queries() []string {
	queries := make([]string, len(p.Steps))
	for i, step := range p.Steps {
		queries[i] = step.SQL
	}
	return queries
}

// HumanColored returns a human-readable summary of the plan with color support
func (p *Plan) HumanColored(enableColor bool) string {
	return p.human(color.New(enableColor))
}

func (p *Plan) human(c *color.Color) string {
	var summary strings.Builder

	planJSON := p.convertToStructuredJSON()
	if planJSON.Summary.Total == 0 {
		summary.WriteString("No changes detected.\n")
		return summary.String()
	}

	fmt.Fprintf(&summary, "%s %s\n\n", c.Bold("Platform:"), p.Platform)
	summary.WriteString(c.FormatPlanHeader(planJSON.Summary.Add, planJSON.Summary.Change, planJSON.Summary.Destroy) + "\n\n")

	summary.WriteString(c.Bold("Summary by type:") + "\n")
	for _, objType := range objectOrder {
		if typeSummary, exists := planJSON.Summary.ByType[objType]; exists {
			summary.WriteString(c.FormatSummaryLine(displayNames[objType], typeSummary.Add, typeSummary.Change, typeSummary.Destroy) + "\n")
		}
	}
	summary.WriteString("\n")

	for _, objType := range objectOrder {
		if _, exists := planJSON.Summary.ByType[objType]; exists {
			p.writeDetailedChanges(&summary, objType, planJSON.ObjectChanges, c)
		}
	}

	summary.WriteString(c.Bold("DDL to be executed:") + "\n")
	summary.WriteString(strings.Repeat("-", 50) + "\n\n")
	summary.WriteString(p.ToSQL())

	return summary.String()
}

// ToJSON returns the plan as structured JSON
func (p *Plan) ToJSON() (string, error) {
	data, err := json.MarshalIndent(p.convertToStructuredJSON(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan to JSON: %w", err)
	}
	return string(data), nil
}

// ToSQL returns only the SQL statements, each terminated by a semicolon and
// separated by a blank line
func (p *Plan) ToSQL() string {
	return FormatSQL(p.Queries())
}

// FormatSQL terminates every statement with a semicolon and separates them
// by a blank line
func FormatSQL(statements []string) string {
	if len(statements) == 0 {
		return ""
	}
	terminated := make([]string, len(statements))
	for i, stmt := range statements {
		terminated[i] = stmt + ";"
	}
	return strings.Join(terminated, "\n\n") + "\n"
}

// ToJSONList returns several plans as a JSON array
func ToJSONList(plans []*Plan) (string, error) {
	list := make([]*PlanJSON, len(plans))
	for i, p := range plans {
		list[i] = p.convertToStructuredJSON()
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal plans to JSON: %w", err)
	}
	return string(data), nil
}

// FromJSON reads a plan written by ToJSON. The diff is not restored.
func FromJSON(data []byte) (*Plan, error) {
	var planJSON PlanJSON
	if err := json.Unmarshal(data, &planJSON); err != nil {
		return nil, fmt.Errorf("failed to parse plan JSON: %w", err)
	}
	if planJSON.Version != version.PlanFormat() {
		return nil, fmt.Errorf("unsupported plan format version %q (expected %s)", planJSON.Version, version.PlanFormat())
	}
	return &Plan{
		Platform:  planJSON.Platform,
		Steps:     planJSON.Steps,
		From:      planJSON.From,
		To:        planJSON.To,
		CreatedAt: planJSON.CreatedAt,
	}, nil
}

// Verify checks that p was generated for the same platform and schema
// states as current
func (p *Plan) Verify(current *Plan) error {
	if p.Platform != current.Platform {
		return fmt.Errorf("plan was generated for %s, not %s", p.Platform, current.Platform)
	}
	if p.From == nil || p.To == nil {
		return fmt.Errorf("plan has no schema fingerprints")
	}
	if err := fingerprint.Compare(p.From, current.From); err != nil {
		return fmt.Errorf("current schema changed since the plan was generated: %w", err)
	}
	if err := fingerprint.Compare(p.To, current.To); err != nil {
		return fmt.Errorf("desired schema changed since the plan was generated: %w", err)
	}
	return nil
}

// ========== PRIVATE METHODS ==========

func (p *Plan) writeDetailedChanges(summary *strings.Builder, objType string, objectChanges []ObjectChange, c *color.Color) {
	fmt.Fprintf(summary, "%s:\n", c.Bold(displayNames[objType]))
	for _, change := range objectChanges {
		if change.Type == objType {
			summary.WriteString(c.FormatPlanLine(change.Action, change.Type, change.Address) + "\n")
		}
	}
	summary.WriteString("\n")
}

// convertToStructuredJSON lists every changed object once, in the order of
// its first step
func (p *Plan) convertToStructuredJSON() *PlanJSON {
	planJSON := &PlanJSON{
		Version:           version.PlanFormat(),
		SchemadiffVersion: version.Version(),
		CreatedAt:         p.CreatedAt.Truncate(time.Second),
		Platform:          p.Platform,
		From:              p.From,
		To:                p.To,
		Summary: PlanSummary{
			ByType: make(map[string]TypeSummary),
		},
		ObjectChanges: []ObjectChange{},
		Steps:         p.Steps,
	}
	if planJSON.Steps == nil {
		planJSON.Steps = []sqlcollector.Step{}
	}

	seen := make(map[ObjectChange]bool)
	for _, step := range p.Steps {
		change := ObjectChange{Address: step.ObjectPath, Type: step.ObjectType, Action: step.Operation}
		if seen[change] {
			continue
		}
		seen[change] = true
		planJSON.ObjectChanges = append(planJSON.ObjectChanges, change)
	}

	p.calculateSummary(planJSON)
	return planJSON
}

func (p *Plan) calculateSummary(planJSON *PlanJSON) {
	for _, change := range planJSON.ObjectChanges {
		stats := planJSON.Summary.ByType[change.Type]
		switch change.Action {
		case sqlcollector.OperationCreate:
			stats.Add++
			planJSON.Summary.Add++
		case sqlcollector.OperationDrop:
			stats.Destroy++
			planJSON.Summary.Destroy++
		default:
			stats.Change++
			planJSON.Summary.Change++
		}
		planJSON.Summary.ByType[change.Type] = stats
	}
	planJSON.Summary.Total = planJSON.Summary.Add + planJSON.Summary.Change + planJSON.Summary.Destroy
}
