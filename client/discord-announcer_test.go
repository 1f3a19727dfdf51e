package client

import (
	"context"
	"testing"

	"battlescore/repository"

	"github.com/stretchr/testify/assert"
)

func TestUnfollowedListsNewTournaments(t *testing.T) {
	announcer := &DiscordAnnouncer{cancels: map[int]context.CancelFunc{1: func() {}}}
	tournaments := []*repository.Tournament{{Id: 1}, {Id: 2}, {Id: 3}}

	assert.Equal(t, []int{2, 3}, announcer.unfollowed(tournaments))
}

func TestUnfollowedEmptyWhenAllFollowed(t *testing.T) {
	announcer := &DiscordAnnouncer{cancels: map[int]context.CancelFunc{1: func() {}, 2: func() {}}}
	tournaments := []*repository.Tournament{{Id: 1}, {Id: 2}}

	assert.Empty(t, announcer.unfollowed(tournaments))
}
