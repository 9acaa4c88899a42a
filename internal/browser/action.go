package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/teemow/assistant/internal/llm"
)

// Action names the model may choose from.
const (
	ActionNavigate = "navigate"
	ActionClick    = "click"
	ActionType     = "type"
	ActionScroll   = "scroll"
	ActionExtract  = "extract"
	ActionDone     = "done"

	// actionInvalid labels steps where the model output could not be used.
	actionInvalid = "invalid"
)

// Action is one step chosen by the model.
type Action struct {
	Action    string `json:"action"`
	URL       string `json:"url,omitempty"`
	Selector  string `json:"selector,omitempty"`
	Text      string `json:"text,omitempty"`
	Direction string `json:"direction,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

var errNoAction = errors.New("no JSON action found in model output")

// parseAction decodes and validates the action in a model reply.
func parseAction(out string) (Action, error) {
	raw, ok := llm.ExtractJSON(out)
	if !ok {
		return Action{}, errNoAction
	}
	var a Action
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return Action{}, fmt.Errorf("invalid action JSON: %w", err)
	}
	a.Action = strings.ToLower(strings.TrimSpace(a.Action))
	return a, a.validate()
}

func (a Action) validate() error {
	switch a.Action {
	case ActionNavigate:
		if a.URL == "" {
			return errors.New("navigate requires url")
		}
	case ActionClick:
		if a.Selector == "" {
			return errors.New("click requires selector")
		}
	case ActionType:
		if a.Selector == "" {
			return errors.New("type requires selector")
		}
	case ActionScroll:
		switch a.Direction {
		case "", "down", "up":
		default:
			return fmt.Errorf("scroll direction must be up or down, got %q", a.Direction)
		}
	case ActionExtract, ActionDone:
	case "":
		return errors.New("action is missing")
	default:
		return fmt.Errorf("unknown action %q", a.Action)
	}
	return nil
}

// String renders the action the way it is listed in history and summaries.
func (a Action) String() string {
	switch a.Action {
	case ActionNavigate:
		return "navigate to " + a.URL
	case ActionClick:
		return "click " + a.Selector
	case ActionType:
		return fmt.Sprintf("type %q into %s", a.Text, a.Selector)
	case ActionScroll:
		dir := a.Direction
		if dir == "" {
			dir = "down"
		}
		return "scroll " + dir
	case ActionExtract:
		if a.Selector == "" {
			return "extract page text"
		}
		return "extract text of " + a.Selector
	case ActionDone:
		return "done"
	default:
		return a.Action
	}
}

// normalizeURL adds a scheme to bare host names like "example.com".
func normalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" || strings.Contains(u, "://") || strings.HasPrefix(u, "about:") {
		return u
	}
	return "https://" + u
}
