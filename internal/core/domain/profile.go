package domain

import "go.trai.ch/zerr"

// Profile identifies a build variant with its own default compiler flags.
type Profile string

const (
	// ProfileDbg builds with debug symbols and assertions enabled.
	ProfileDbg Profile = "dbg"
	// ProfileOpt builds with optimization and NDEBUG.
	ProfileOpt Profile = "opt"
	// ProfileCover builds with debug flags plus coverage instrumentation.
	ProfileCover Profile = "cover"
)

// Profiles returns all supported profiles in a stable order.
func Profiles() []Profile {
	return []Profile{ProfileDbg, ProfileOpt, ProfileCover}
}

// ParseProfile validates a profile name.
func ParseProfile(s string) (Profile, error) {
	switch Profile(s) {
	case ProfileDbg, ProfileOpt, ProfileCover:
		return Profile(s), nil
	}
	return "", zerr.With(ErrUnknownProfile, "profile", s)
}

// CommandSet holds one invocation string per profile for a single step.
// The set must be complete (every profile present) before any rewrite runs,
// and a rewrite replaces all profiles in one pass so they stay consistent.
type CommandSet struct {
	commands map[Profile]string
}

// Set stores the command for a profile.
func (c *CommandSet) Set(p Profile, cmd string) {
	if c.commands == nil {
		c.commands = make(map[Profile]string, len(Profiles()))
	}
	c.commands[p] = cmd
}

// Get returns the command for a profile, or "" if none was synthesized.
func (c *CommandSet) Get(p Profile) string {
	return c.commands[p]
}

// Complete reports whether every supported profile has a command.
func (c *CommandSet) Complete() bool {
	for _, p := range Profiles() {
		if c.commands[p] == "" {
			return false
		}
	}
	return true
}

// Equal reports whether both sets contain byte-identical commands.
func (c *CommandSet) Equal(o *CommandSet) bool {
	for _, p := range Profiles() {
		if c.Get(p) != o.Get(p) {
			return false
		}
	}
	return true
}
