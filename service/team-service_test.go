package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeamNameGeneratorUniqueNames(t *testing.T) {
	generator := newTeamNameGenerator(1)
	used := make(map[string]bool)
	for i := 0; i < 50; i++ {
		name := generator.next(used)
		assert.NotEmpty(t, name)
		assert.False(t, used[name], "name %q generated twice", name)
		used[name] = true
	}
}

func TestTeamNameGeneratorDeterministic(t *testing.T) {
	a := newTeamNameGenerator(3)
	b := newTeamNameGenerator(3)
	used := make(map[string]bool)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.next(used), b.next(used))
	}
}

func TestTeamNameGeneratorSkipsUsedNames(t *testing.T) {
	reference := newTeamNameGenerator(5)
	first := reference.next(map[string]bool{})

	generator := newTeamNameGenerator(5)
	name := generator.next(map[string]bool{first: true})
	assert.NotEqual(t, first, name)
	assert.NotEmpty(t, name)
}

func TestTeamNameGeneratorExhaustion(t *testing.T) {
	total := len(teamNameAdjectives) * len(teamNameNouns)
	generator := newTeamNameGenerator(7)
	used := make(map[string]bool)
	for i := 0; i < total; i++ {
		name := generator.next(used)
		assert.NotEmpty(t, name)
		used[name] = true
	}
	assert.Equal(t, "", generator.next(used))
}
