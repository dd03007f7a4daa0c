// Package config provides the yaml build-description loader.
package config

import (
	"os"
	"path"
	"path/filepath"
	"slices"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
	"github.com/SkeneZr/cc-rules/internal/core/ports"
)

// DefaultFilename is the build description file looked up in each package.
const DefaultFilename = "cc.yaml"

// Loader implements ports.ConfigLoader using yaml files. The root file may
// reference package subdirectories, whose files are loaded concurrently and
// merged under path-prefixed unit names.
type Loader struct {
	logger   ports.Logger
	Filename string
}

// NewLoader creates a Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger, Filename: DefaultFilename}
}

// Load reads the build description rooted in cwd and returns the declared
// units as a graph.
func (l *Loader) Load(cwd string) (*domain.Graph, error) {
	root, err := readBuildFile(filepath.Join(cwd, l.Filename))
	if err != nil {
		return nil, err
	}

	type pkgResult struct {
		prefix string
		file   *BuildFile
	}

	results := make([]pkgResult, len(root.Packages))
	var g errgroup.Group
	for i, pkg := range root.Packages {
		g.Go(func() error {
			file, err := readBuildFile(filepath.Join(cwd, pkg, l.Filename))
			if err != nil {
				return err
			}
			results[i] = pkgResult{prefix: pkg, file: file}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	graph := domain.NewGraph()
	if err := addUnits(graph, "", root); err != nil {
		return nil, err
	}
	for _, res := range results {
		if err := addUnits(graph, res.prefix, res.file); err != nil {
			return nil, err
		}
	}
	return graph, nil
}

// readBuildFile parses one cc.yaml.
func readBuildFile(filePath string) (*BuildFile, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read build description")
	}

	var file BuildFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse build description")
	}
	return &file, nil
}

// addUnits maps one file's declarations onto the graph. Unit names are
// inserted in sorted order so the graph is deterministic regardless of yaml
// map iteration.
func addUnits(graph *domain.Graph, prefix string, file *BuildFile) error {
	names := make([]string, 0, len(file.Units))
	for name := range file.Units {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		dto := file.Units[name]
		unit, err := toUnit(path.Join(prefix, name), prefix, dto)
		if err != nil {
			return err
		}
		if err := graph.AddUnit(unit); err != nil {
			return err
		}
	}
	return nil
}

// toUnit converts a DTO into a domain unit. Source and header paths inside a
// package stay package-relative to the workspace root.
func toUnit(name, prefix string, dto UnitDTO) (*domain.Unit, error) {
	kind, err := domain.ParseKind(dto.Kind)
	if err != nil {
		return nil, zerr.With(err, "unit", name)
	}

	iface := dto.Interface
	if iface != "" && prefix != "" {
		iface = path.Join(prefix, iface)
	}

	return &domain.Unit{
		Name:            domain.NewInternedString(name),
		Kind:            kind,
		C:               dto.C,
		Srcs:            prefixPaths(prefix, dto.Srcs),
		Hdrs:            prefixPaths(prefix, dto.Hdrs),
		PrivateHdrs:     prefixPaths(prefix, dto.PrivateHdrs),
		Interface:       iface,
		Deps:            internUnique(dto.Deps),
		CompilerFlags:   dto.CompilerFlags,
		LinkerFlags:     dto.LinkerFlags,
		PkgConfigLibs:   dto.PkgConfigLibs,
		PkgConfigCflags: dto.PkgConfigCflags,
		Includes:        dto.Includes,
		Defines:         dto.Defines,
		Alwayslink:      dto.Alwayslink,
		Static:          dto.Static,
		TestOnly:        dto.TestOnly,
		Visibility:      dto.Visibility,
	}, nil
}

// prefixPaths joins package-relative paths onto the package prefix.
func prefixPaths(prefix string, paths []string) []string {
	if prefix == "" || len(paths) == 0 {
		return paths
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = path.Join(prefix, p)
	}
	return out
}

// internUnique interns dependency names, dropping duplicates while keeping
// declaration order. Duplicate edges would double-count in the scheduler's
// in-degree tracking.
func internUnique(deps []string) []domain.InternedString {
	if len(deps) == 0 {
		return nil
	}
	out := make([]domain.InternedString, 0, len(deps))
	seen := make(map[string]struct{}, len(deps))
	for _, d := range deps {
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, domain.NewInternedString(d))
	}
	return out
}
