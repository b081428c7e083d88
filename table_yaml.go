package moore

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type tableDocument struct {
	Entry  string          `yaml:"entry,omitempty"`
	States []stateDocument `yaml:"states"`
}

type stateDocument struct {
	ID     StateID    `yaml:"id"`
	Output hexCode    `yaml:"output"`
	Dwell  dwellTicks `yaml:"dwell"`
	Next   []StateID  `yaml:"next,flow"`
}

type hexCode uint8

func (h hexCode) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("0x%02X", uint8(h))}, nil
}

func (h *hexCode) UnmarshalYAML(node *yaml.Node) error {
	v, err := strconv.ParseUint(node.Value, 0, 8)
	if err != nil {
		return fmt.Errorf("line %d: output %q is not an 8-bit value", node.Line, node.Value)
	}
	*h = hexCode(v)
	return nil
}

// dwellTicks accepts "short", "long" or a tick count
type dwellTicks Ticks

func (d *dwellTicks) UnmarshalYAML(node *yaml.Node) error {
	switch strings.ToLower(node.Value) {
	case "short":
		*d = dwellTicks(ShortWait)
		return nil
	case "long":
		*d = dwellTicks(LongWait)
		return nil
	}
	v, err := strconv.ParseUint(node.Value, 0, 32)
	if err != nil {
		return fmt.Errorf("line %d: dwell %q is neither short, long nor a tick count", node.Line, node.Value)
	}
	*d = dwellTicks(v)
	return nil
}

// LoadTable reads a YAML table and returns it with its entry state.
// The entry defaults to DefaultEntryState when the document omits it.
func LoadTable(r io.Reader) (*Table, StateID, error) {
	t, entry, err := LoadTableDocument(r)
	if err != nil {
		return nil, 0, err
	}
	if entry == nil {
		return t, DefaultEntryState, nil
	}
	return t, *entry, nil
}

// LoadTableDocument is LoadTable that reports a missing entry as nil, so
// callers can apply their own default
func LoadTableDocument(r io.Reader) (*Table, *StateID, error) {
	var doc tableDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, NewConfigurationError("Table", fmt.Sprintf("decode: %v", err))
	}

	var entry *StateID
	if doc.Entry != "" {
		id, err := ParseStateID(doc.Entry)
		if err != nil {
			return nil, nil, NewConfigurationError("Table", fmt.Sprintf("entry state %q is not defined", doc.Entry))
		}
		entry = &id
	}

	rows := make([]State, 0, len(doc.States))
	for _, s := range doc.States {
		if len(s.Next) != NumReadings {
			return nil, nil, NewConfigurationError("Table",
				fmt.Sprintf("state '%s' lists %d transitions, want %d", s.ID, len(s.Next), NumReadings))
		}
		row := State{ID: s.ID, Output: OutputCode(s.Output), Dwell: Ticks(s.Dwell)}
		copy(row.Next[:], s.Next)
		rows = append(rows, row)
	}

	t, err := NewTable(rows)
	if err != nil {
		return nil, nil, err
	}
	return t, entry, nil
}

// LoadTableFile is LoadTable on a file path
func LoadTableFile(path string) (*Table, StateID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	return LoadTable(f)
}

// LoadTableDocumentFile is LoadTableDocument on a file path
func LoadTableDocumentFile(path string) (*Table, *StateID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	return LoadTableDocument(f)
}

// MarshalTable writes t as YAML. LoadTable reads the result back unchanged.
func MarshalTable(t *Table, entry StateID) ([]byte, error) {
	doc := tableDocument{Entry: entry.String()}
	for _, row := range t.States() {
		next := make([]StateID, NumReadings)
		copy(next, row.Next[:])
		doc.States = append(doc.States, stateDocument{
			ID:     row.ID,
			Output: hexCode(row.Output),
			Dwell:  dwellTicks(row.Dwell),
			Next:   next,
		})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
