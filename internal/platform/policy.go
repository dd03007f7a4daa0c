// Package platform isolates platform-specific linking behavior behind a
// single policy surface. All platform branching in command synthesis routes
// through here; the policy is selected once at startup and injected.
package platform

// Policy exposes the linking quirks of one platform.
type Policy interface {
	// Name identifies the policy, e.g. "gnu" or "apple".
	Name() string

	// WholeArchive returns the marker pair wrapping archives that must be
	// linked in full even when no symbol is referenced.
	WholeArchive() (begin, end string)

	// SupportsGroupLinking reports whether the linker accepts
	// start/end-group markers around the object and archive list.
	SupportsGroupLinking() bool

	// BuildIDSuppression returns the flag that pins the linker's build id
	// for deterministic output, or "" when the platform has none.
	BuildIDSuppression() string
}

// ForOS selects the policy for an operating system as named by runtime.GOOS.
func ForOS(goos string) Policy {
	if goos == "darwin" {
		return Apple()
	}
	return GNU()
}

// GNU returns the default policy used with GNU binutils style linkers.
func GNU() Policy { return gnuPolicy{} }

// Apple returns the policy for Apple's linker.
func Apple() Policy { return applePolicy{} }

type gnuPolicy struct{}

func (gnuPolicy) Name() string { return "gnu" }

func (gnuPolicy) WholeArchive() (string, string) {
	return "--whole-archive", "--no-whole-archive"
}

func (gnuPolicy) SupportsGroupLinking() bool { return true }

func (gnuPolicy) BuildIDSuppression() string { return "--build-id=none" }

type applePolicy struct{}

func (applePolicy) Name() string { return "apple" }

func (applePolicy) WholeArchive() (string, string) {
	return "-all_load", "-noall_load"
}

// Apple's linker resolves archives without grouping, so the markers are omitted.
func (applePolicy) SupportsGroupLinking() bool { return false }

func (applePolicy) BuildIDSuppression() string { return "" }
