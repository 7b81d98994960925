package types

import "strings"

// Chatter archetypes. The judge emits free-form strings; NormalizeArchetype
// validates them against this set at the boundary so arbitrary labels never
// reach the profile aggregation.
const (
	ArchetypeYesBabeRobot = "yes_babe_robot"
	ArchetypeInterviewBot = "interview_bot"
	ArchetypeDoormat      = "doormat"
	ArchetypeCommander    = "commander"
	ArchetypeTease        = "tease"
	ArchetypeChameleon    = "chameleon"
	ArchetypeUnrecognized = "unrecognized"
)

var knownArchetypes = map[string]struct{}{
	ArchetypeYesBabeRobot: {},
	ArchetypeInterviewBot: {},
	ArchetypeDoormat:      {},
	ArchetypeCommander:    {},
	ArchetypeTease:        {},
	ArchetypeChameleon:    {},
}

// ArchetypeLabels maps archetype keys to human-readable names for
// notifications and reports.
var ArchetypeLabels = map[string]string{
	ArchetypeYesBabeRobot: "Yes Babe Robot",
	ArchetypeInterviewBot: "The Interview Bot",
	ArchetypeDoormat:      "The Doormat",
	ArchetypeCommander:    "The Commander",
	ArchetypeTease:        "The Tease",
	ArchetypeChameleon:    "The Chameleon (Gold Standard)",
}

// NormalizeArchetype maps a raw judge label onto the known set. Empty
// input stays empty (no archetype detected); anything unknown falls into
// the unrecognized bucket.
func NormalizeArchetype(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || s == "null" || s == "none" {
		return ""
	}
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	if _, ok := knownArchetypes[s]; ok {
		return s
	}
	return ArchetypeUnrecognized
}
