// internal/form/definition.go
//
// Formdesk - forms subsystem: YAML definition loader.
//
// Context
//   Operators can keep canonical forms under version control as YAML and load
//   them with `formctl import`.  A definition file mirrors the builder payload:
//
//       name: Signup
//       id: 1712345678901
//       fields:
//         - type: email
//           title: Work email
//           placeholder: you@example.com
//         - type: password
//           title: Password
//
// Workflow
//   •  LoadDefinition parses one file and runs the same draft validation the
//      HTTP create route applies.
//   •  LoadDefinitions walks a directory for “*.yaml” / “*.yml” files and
//      fails fast on the first bad one so issues surface loudly.
//
// Notes
//   •  Field ids default to their 1-based position when omitted.
//   •  Builder lifecycle flags are not part of the YAML schema; loaded fields
//      are always confirmed.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yanizio/formdesk/internal/field"
)

// Definition is the YAML schema of one form.
type Definition struct {
	Name   string      `yaml:"name"`
	ID     ID          `yaml:"id"`
	Fields []field.Def `yaml:"fields"`
}

// Draft converts d into the payload Service.Create expects.
func (d Definition) Draft() Draft {
	fields := make([]field.Def, len(d.Fields))
	for i, f := range d.Fields {
		if f.ID == 0 {
			f.ID = int64(i + 1)
		}
		f.Confirmed = true
		fields[i] = f
	}
	return Draft{Name: strings.TrimSpace(d.Name), ID: d.ID, Fields: fields}
}

// LoadDefinition parses and validates one YAML file.  It never touches the
// store.
func LoadDefinition(path string) (*Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", path, err)
	}

	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", path, err)
	}

	d := def.Draft()
	if err := validateDraft(&d, true, DefaultMaxFields); err != nil {
		msgs, _ := Messages(err)
		return nil, fmt.Errorf("form definition %s: %s", path, strings.Join(msgs, " "))
	}
	def.Name, def.Fields = d.Name, d.Fields
	return &def, nil
}

// LoadDefinitions loads every YAML file under dir, sorted by path.  Two files
// declaring the same id is an error.
func LoadDefinitions(dir string) ([]*Definition, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(d.Name()); ext == ".yaml" || ext == ".yml" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("form directory %s does not exist", dir)
		}
		return nil, err
	}
	sort.Strings(paths)

	seen := make(map[ID]string, len(paths))
	defs := make([]*Definition, 0, len(paths))
	for _, p := range paths {
		def, err := LoadDefinition(p)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[def.ID]; dup {
			return nil, fmt.Errorf("form %s: id %s already declared in %s", p, def.ID, prev)
		}
		seen[def.ID] = p
		defs = append(defs, def)
	}
	return defs, nil
}
