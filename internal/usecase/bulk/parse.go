package bulk

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/textdex/internal/domain"
	dombatch "github.com/kailas-cloud/textdex/internal/domain/batch"
	"github.com/kailas-cloud/textdex/internal/domain/value"
)

// Item is one parsed bulk operation.
type Item struct {
	Action dombatch.Action
	Target dombatch.Target
	Source json.RawMessage
}

type meta struct {
	Index string `json:"_index"`
	Type  string `json:"_type"`
	ID    string `json:"_id"`
}

type line struct {
	no   int
	text []byte
}

// Parse splits an NDJSON bulk body into items. Every action line except
// delete is followed by a source line. Blank lines are ignored; errors name
// the physical line.
func Parse(body []byte) ([]Item, error) {
	var lines []line
	for i, text := range bytes.Split(body, []byte("\n")) {
		text = bytes.TrimSpace(text)
		if len(text) > 0 {
			lines = append(lines, line{no: i + 1, text: text})
		}
	}

	var items []Item
	for i := 0; i < len(lines); i++ {
		item, err := parseAction(lines[i].text, lines[i].no)
		if err != nil {
			return nil, err
		}
		if item.Action != dombatch.ActionDelete {
			if i+1 >= len(lines) {
				return nil, domain.NewParseError(fmt.Sprintf("line %d", lines[i].no), "%s action without a source line", item.Action)
			}
			i++
			item.Source = json.RawMessage(lines[i].text)
		}
		items = append(items, item)
	}
	return items, nil
}

func parseAction(line []byte, lineNo int) (Item, error) {
	path := fmt.Sprintf("line %d", lineNo)

	members, err := value.ObjectFields(line)
	if err != nil {
		return Item{}, domain.NewParseError(path, "malformed action: %v", err)
	}
	if len(members) != 1 {
		return Item{}, domain.NewParseError(path, "action line must have exactly one key, got %d", len(members))
	}

	action := dombatch.Action(members[0].Name)
	if !action.IsValid() {
		return Item{}, domain.NewParseError(path, "unknown bulk action %q", action)
	}

	var m meta
	dec := json.NewDecoder(bytes.NewReader(members[0].Raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return Item{}, domain.NewParseError(path, "malformed %s metadata: %v", action, err)
	}
	if m.Index == "" || m.Type == "" {
		return Item{}, domain.NewParseError(path, "%s requires _index and _type", action)
	}
	if action == dombatch.ActionDelete && m.ID == "" {
		return Item{}, domain.NewParseError(path, "delete requires _id")
	}

	return Item{Action: action, Target: dombatch.Target{Index: m.Index, Type: m.Type, ID: m.ID}}, nil
}
