package domain

import "go.trai.ch/zerr"

var (
	// ErrUnitAlreadyExists is returned when declaring a build unit whose name is taken.
	ErrUnitAlreadyExists = zerr.New("build unit already exists")

	// ErrStepAlreadyExists is returned when two steps resolve to the same identifier.
	ErrStepAlreadyExists = zerr.New("build step already exists")

	// ErrMissingDependency is returned when a unit references a dependency that was never declared.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when the step graph contains a cycle.
	// Module interface artifacts are ordinary steps, so mutually importing
	// modules surface as this error before any command runs.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrUnitNotFound is returned when a requested unit is not in the graph.
	ErrUnitNotFound = zerr.New("build unit not found")

	// ErrUnknownKind is returned when a unit declares an unrecognized kind.
	ErrUnknownKind = zerr.New("unknown build unit kind")

	// ErrUnknownProfile is returned when an unrecognized profile name is requested.
	ErrUnknownProfile = zerr.New("unknown build profile")

	// ErrNoSources is returned when a unit that must compile something declares no sources.
	ErrNoSources = zerr.New("unit declares no sources")

	// ErrMissingInterface is returned when a module unit declares no interface file.
	ErrMissingInterface = zerr.New("module unit declares no interface file")

	// ErrIncompleteCommands is returned when a step is executed before every
	// profile has a synthesized command.
	ErrIncompleteCommands = zerr.New("command set is incomplete")

	// ErrNoTargetsSpecified is returned when a build is requested without targets.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrBuildExecutionFailed wraps step failures reported by the scheduler.
	ErrBuildExecutionFailed = zerr.New("build execution failed")
)
