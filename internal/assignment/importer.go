package assignment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// idNamespace scopes name-based assignment ids.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://studydesk.dev/prio/assignment"))

// StableID derives an id from the fields that identify an assignment, so
// importing the same record twice yields the same id.
func StableID(a Assignment) string {
	key := strings.Join([]string{
		strings.TrimSpace(a.Title),
		strings.TrimSpace(a.Subject),
		strings.TrimSpace(a.ClassCode),
		strings.TrimSpace(a.Deadline),
	}, "|")
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// importFile is the document shape accepted by Decode: either a bare list
// of assignments or a mapping with an "assignments" key. JSON documents
// parse the same way since JSON is valid YAML.
type importFile struct {
	Assignments []Assignment `yaml:"assignments"`
}

// Decode reads assignments from a YAML or JSON document. Records without an
// id get StableID; records without a title are rejected.
func Decode(r io.Reader) ([]Assignment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading assignments: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("invalid assignment document: %w", err)
	}

	var list []Assignment
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("invalid assignment list: %w", err)
		}
	case yaml.MappingNode:
		var f importFile
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("invalid assignment document: %w", err)
		}
		list = f.Assignments
	default:
		return nil, errors.New("invalid assignment document: expected a list or an 'assignments' mapping")
	}

	for i := range list {
		list[i].Title = strings.TrimSpace(list[i].Title)
		if list[i].Title == "" {
			return nil, fmt.Errorf("assignment #%d has no title", i+1)
		}
		if strings.TrimSpace(list[i].ID) == "" {
			list[i].ID = StableID(list[i])
		}
	}
	return list, nil
}

// ParseFile decodes assignments from a file on disk.
func ParseFile(path string) ([]Assignment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes assignments as a YAML document that Decode accepts.
func Encode(w io.Writer, list []Assignment) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(importFile{Assignments: list}); err != nil {
		return err
	}
	return enc.Close()
}
