package config

import (
	"gopkg.in/yaml.v3"

	"go.trai.ch/zerr"
)

// BuildFile represents the structure of a cc.yaml build description.
type BuildFile struct {
	Version string `yaml:"version"`
	// Packages lists subdirectories whose own cc.yaml files are loaded and
	// merged, with unit names prefixed by the package path.
	Packages []string           `yaml:"packages"`
	Units    map[string]UnitDTO `yaml:"units"`
}

// UnitDTO represents one build unit declaration in the configuration.
type UnitDTO struct {
	Kind            string     `yaml:"kind"`
	C               bool       `yaml:"c"`
	Srcs            []string   `yaml:"srcs"`
	Hdrs            []string   `yaml:"hdrs"`
	PrivateHdrs     []string   `yaml:"private_hdrs"`
	Interface       string     `yaml:"interface"`
	Deps            []string   `yaml:"deps"`
	CompilerFlags   []string   `yaml:"compiler_flags"`
	LinkerFlags     []string   `yaml:"linker_flags"`
	PkgConfigLibs   []string   `yaml:"pkg_config_libs"`
	PkgConfigCflags []string   `yaml:"pkg_config_cflags"`
	Includes        []string   `yaml:"includes"`
	Defines         DefineList `yaml:"defines"`
	Alwayslink      bool       `yaml:"alwayslink"`
	Static          bool       `yaml:"static"`
	TestOnly        bool       `yaml:"test_only"`
	Visibility      []string   `yaml:"visibility"`
}

// DefineList accepts either a plain list of tokens or a name-to-value
// mapping, normalizing both to NAME or NAME=VALUE tokens in document order.
type DefineList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *DefineList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*d = list
		return nil
	case yaml.MappingNode:
		// Content alternates key, value; document order is preserved.
		out := make([]string, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			name := node.Content[i].Value
			value := node.Content[i+1].Value
			if value == "" {
				out = append(out, name)
			} else {
				out = append(out, name+"="+value)
			}
		}
		*d = out
		return nil
	}
	return zerr.With(zerr.New("defines must be a list or a mapping"), "line", node.Line)
}
