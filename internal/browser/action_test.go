package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    Action
		wantErr string
	}{
		{
			name: "navigate",
			out:  `{"action": "navigate", "url": "https://example.com"}`,
			want: Action{Action: ActionNavigate, URL: "https://example.com"},
		},
		{
			name: "case and whitespace",
			out:  `{"action": " Done ", "summary": "ok"}`,
			want: Action{Action: ActionDone, Summary: "ok"},
		},
		{
			name: "scroll without direction",
			out:  `{"action": "scroll"}`,
			want: Action{Action: ActionScroll},
		},
		{name: "no json", out: "let me think", wantErr: "no JSON action"},
		{name: "broken json", out: `{"action": }`, wantErr: "invalid action JSON"},
		{name: "missing action", out: `{"url": "x"}`, wantErr: "action is missing"},
		{name: "navigate without url", out: `{"action": "navigate"}`, wantErr: "navigate requires url"},
		{name: "click without selector", out: `{"action": "click"}`, wantErr: "click requires selector"},
		{name: "type without selector", out: `{"action": "type", "text": "x"}`, wantErr: "type requires selector"},
		{name: "bad scroll", out: `{"action": "scroll", "direction": "left"}`, wantErr: "scroll direction"},
		{name: "unknown", out: `{"action": "hover"}`, wantErr: `unknown action "hover"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAction(tt.out)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAction_String(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{Action{Action: ActionNavigate, URL: "https://a.example"}, "navigate to https://a.example"},
		{Action{Action: ActionClick, Selector: "#go"}, "click #go"},
		{Action{Action: ActionType, Selector: "#q", Text: "gophers"}, `type "gophers" into #q`},
		{Action{Action: ActionScroll}, "scroll down"},
		{Action{Action: ActionScroll, Direction: "up"}, "scroll up"},
		{Action{Action: ActionExtract}, "extract page text"},
		{Action{Action: ActionExtract, Selector: "main"}, "extract text of main"},
		{Action{Action: ActionDone}, "done"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.action.String())
	}
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://example.com", normalizeURL("example.com"))
	assert.Equal(t, "http://localhost:8080", normalizeURL(" http://localhost:8080 "))
	assert.Equal(t, "about:blank", normalizeURL("about:blank"))
	assert.Equal(t, "", normalizeURL(""))
}

func TestObservation_Render(t *testing.T) {
	obs := &Observation{
		URL:   "https://example.com",
		Title: "Example Domain",
		Text:  "This domain is for use in examples.",
		Elements: []Element{
			{Selector: "#a", Tag: "a", Text: "More", Href: "https://iana.org"},
			{Selector: "#b", Tag: "input", Type: "text"},
			{Selector: "#c", Tag: "button"},
		},
	}

	got := obs.render(10, 2)
	assert.Contains(t, got, "URL: https://example.com\n")
	assert.Contains(t, got, `- #a <a> "More" -> https://iana.org`)
	assert.Contains(t, got, "- #b <input type=text>")
	assert.Contains(t, got, "... 1 more")
	assert.NotContains(t, got, "#c")
	assert.Contains(t, got, "This domai...")

	empty := (&Observation{}).render(10, 2)
	assert.Contains(t, empty, "URL: (none)")
	assert.Contains(t, empty, "Interactive elements:\n(none)")
}
