package color

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color represents a colorizer that can be enabled or disabled
type Color struct {
	enabled bool

	add     *color.Color
	change  *color.Color
	destroy *color.Color
	bold    *color.Color
	cyan    *color.Color
}

// New creates a new Color instance. Color stays off when stdout is not a
// terminal or NO_COLOR is set.
func New(enabled bool) *Color {
	return newColor(enabled && shouldEnableColor())
}

func newColor(enabled bool) *Color {
	c := &Color{
		enabled: enabled,
		add:     color.New(color.FgGreen),
		change:  color.New(color.FgYellow),
		destroy: color.New(color.FgRed),
		bold:    color.New(color.Bold),
		cyan:    color.New(color.FgCyan),
	}
	for _, attr := range []*color.Color{c.add, c.change, c.destroy, c.bold, c.cyan} {
		if enabled {
			attr.EnableColor()
		} else {
			attr.DisableColor()
		}
	}
	return c
}

// shouldEnableColor determines if color should be enabled based on environment
func shouldEnableColor() bool {
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Enabled reports whether output is colored
func (c *Color) Enabled() bool { return c.enabled }

// Add colors a string to indicate additions (green, like Terraform)
func (c *Color) Add(text string) string { return c.add.Sprint(text) }

// Change colors a string to indicate modifications (yellow, like Terraform)
func (c *Color) Change(text string) string { return c.change.Sprint(text) }

// Destroy colors a string to indicate deletions (red, like Terraform)
func (c *Color) Destroy(text string) string { return c.destroy.Sprint(text) }

// Bold makes text bold
func (c *Color) Bold(text string) string { return c.bold.Sprint(text) }

// Cyan colors text cyan (for headers and labels)
func (c *Color) Cyan(text string) string { return c.cyan.Sprint(text) }

// PlanSymbol returns the appropriate symbol for plan actions
func (c *Color) PlanSymbol(operation string) string {
	switch operation {
	case "add", "create":
		return c.Add("+")
	case "change", "alter", "rename":
		return c.Change("~")
	case "destroy", "drop":
		return c.Destroy("-")
	default:
		return " "
	}
}

// FormatPlanLine formats a line in Terraform plan style
func (c *Color) FormatPlanLine(operation, objectType, path string) string {
	return fmt.Sprintf("  %s %s %s", c.PlanSymbol(operation), objectType, path)
}

// FormatSummaryLine formats summary counts with colors
func (c *Color) FormatSummaryLine(objectType string, added, changed, dropped int) string {
	return fmt.Sprintf("  %s: %s", objectType, c.counts(added, changed, dropped))
}

// FormatPlanHeader formats the main plan header
func (c *Color) FormatPlanHeader(added, changed, dropped int) string {
	return fmt.Sprintf("Plan: %s.", c.counts(added, changed, dropped))
}

// counts always shows all three categories, even if zero
func (c *Color) counts(added, changed, dropped int) string {
	return strings.Join([]string{
		c.Add(fmt.Sprintf("%d to add", added)),
		c.Change(fmt.Sprintf("%d to change", changed)),
		c.Destroy(fmt.Sprintf("%d to drop", dropped)),
	}, ", ")
}
