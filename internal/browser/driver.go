package browser

import (
	"context"
	"fmt"
	"strings"
)

// Element is an interactive element on the current page.
type Element struct {
	// Selector is a CSS selector that uniquely addresses the element.
	Selector string `json:"selector"`
	Tag      string `json:"tag"`
	Type     string `json:"type,omitempty"`
	Text     string `json:"text,omitempty"`
	Href     string `json:"href,omitempty"`
}

// Observation is what the agent sees of the page before choosing an action.
type Observation struct {
	URL      string    `json:"url"`
	Title    string    `json:"title"`
	Text     string    `json:"text"`
	Elements []Element `json:"elements"`
}

// Driver controls a single browser tab.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, text string) error
	Scroll(ctx context.Context, direction string) error
	// Extract returns the visible text of the element matched by selector,
	// or of the whole page when selector is empty.
	Extract(ctx context.Context, selector string) (string, error)
	Observe(ctx context.Context) (*Observation, error)
	// Close releases the browser. It is safe to call more than once.
	Close() error
}

// DriverFactory starts a browser for one agent run.
type DriverFactory func(ctx context.Context) (Driver, error)

// render formats the observation for the model prompt.
func (o *Observation) render(maxText, maxElements int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", orNone(o.URL))
	fmt.Fprintf(&b, "Title: %s\n", orNone(o.Title))

	b.WriteString("Interactive elements:\n")
	if len(o.Elements) == 0 {
		b.WriteString("(none)\n")
	}
	for i, el := range o.Elements {
		if i == maxElements {
			fmt.Fprintf(&b, "... %d more\n", len(o.Elements)-maxElements)
			break
		}
		fmt.Fprintf(&b, "- %s <%s", el.Selector, el.Tag)
		if el.Type != "" {
			fmt.Fprintf(&b, " type=%s", el.Type)
		}
		b.WriteString(">")
		if el.Text != "" {
			fmt.Fprintf(&b, " %q", el.Text)
		}
		if el.Href != "" {
			fmt.Fprintf(&b, " -> %s", el.Href)
		}
		b.WriteString("\n")
	}

	b.WriteString("Visible text:\n")
	b.WriteString(orNone(truncate(o.Text, maxText)))
	b.WriteString("\n")
	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
