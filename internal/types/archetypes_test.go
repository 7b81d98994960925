package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeArchetype(t *testing.T) {
	cases := map[string]string{
		"tease":          ArchetypeTease,
		"  Tease  ":      ArchetypeTease,
		"Yes Babe Robot": ArchetypeYesBabeRobot,
		"yes-babe-robot": ArchetypeYesBabeRobot,
		"interview_bot":  ArchetypeInterviewBot,
		"CHAMELEON":      ArchetypeChameleon,
		"":               "",
		"null":           "",
		"none":           "",
		"something else": ArchetypeUnrecognized,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeArchetype(in), "input %q", in)
	}
}
