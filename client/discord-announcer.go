package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"battlescore/config"
	"battlescore/repository"
	"battlescore/service"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"
)

const (
	announcerConsumerId   = "discord-announcer"
	announcerRescanPeriod = 30 * time.Second
)

// DiscordAnnouncer posts tournament milestones to a Discord channel. Events
// are read from the per-tournament Kafka topics so announcements survive a
// restart.
type DiscordAnnouncer struct {
	session              *discordgo.Session
	channelId            string
	tournamentRepository *repository.TournamentRepository
	mu                   sync.Mutex
	cancels              map[int]context.CancelFunc
}

func NewDiscordAnnouncer(db *gorm.DB) (*DiscordAnnouncer, error) {
	cfg := config.Env()
	if cfg.DiscordBotToken == "" || cfg.DiscordChannelID == "" {
		return nil, fmt.Errorf("discord announcer is not configured")
	}
	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	if err := session.Open(); err != nil {
		return nil, err
	}
	return &DiscordAnnouncer{
		session:              session,
		channelId:            cfg.DiscordChannelID,
		tournamentRepository: repository.NewTournamentRepository(db),
		cancels:              make(map[int]context.CancelFunc),
	}, nil
}

// Start begins consuming events for every ongoing tournament and keeps
// rescanning so tournaments started after boot get followed too.
func (a *DiscordAnnouncer) Start(ctx context.Context) error {
	if err := a.followOngoing(ctx); err != nil {
		return err
	}
	go func() {
		ticker := time.NewTicker(announcerRescanPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := a.followOngoing(ctx); err != nil {
					slog.Error("announcer failed to rescan tournaments", "error", err)
				}
			}
		}
	}()
	return nil
}

func (a *DiscordAnnouncer) followOngoing(ctx context.Context) error {
	tournaments, err := a.tournamentRepository.GetOngoingTournaments()
	if err != nil {
		return err
	}
	for _, tournamentId := range a.unfollowed(tournaments) {
		a.Follow(ctx, tournamentId)
	}
	return nil
}

// unfollowed filters the tournaments down to those without a running
// consumer.
func (a *DiscordAnnouncer) unfollowed(tournaments []*repository.Tournament) []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]int, 0, len(tournaments))
	for _, tournament := range tournaments {
		if _, ok := a.cancels[tournament.Id]; !ok {
			ids = append(ids, tournament.Id)
		}
	}
	return ids
}

// Follow consumes the tournament's topic until the context is done.
func (a *DiscordAnnouncer) Follow(ctx context.Context, tournamentId int) {
	a.mu.Lock()
	if _, ok := a.cancels[tournamentId]; ok {
		a.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancels[tournamentId] = cancel
	a.mu.Unlock()

	go func() {
		defer func() {
			a.mu.Lock()
			delete(a.cancels, tournamentId)
			a.mu.Unlock()
		}()
		reader, err := config.GetReader(tournamentId, announcerConsumerId)
		if err != nil {
			slog.Error("failed to create kafka reader for announcer", "tournamentId", tournamentId, "error", err)
			return
		}
		defer reader.Close()
		for {
			message, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() == nil {
					slog.Error("announcer failed to read event", "tournamentId", tournamentId, "error", err)
				}
				return
			}
			var event service.TournamentEvent
			if err := json.Unmarshal(message.Value, &event); err != nil {
				slog.Error("announcer received malformed event", "tournamentId", tournamentId, "error", err)
				continue
			}
			a.announce(&event)
		}
	}()
}

func (a *DiscordAnnouncer) announce(event *service.TournamentEvent) {
	var text string
	switch event.Type {
	case service.EventTournamentStarted:
		text = fmt.Sprintf("Tournament %d has started, good luck to all teams!", event.TournamentId)
	case service.EventMatchUpdated:
		match := struct {
			Id     int                    `json:"id"`
			Status repository.MatchStatus `json:"status"`
		}{}
		payload, err := json.Marshal(event.Payload)
		if err != nil || json.Unmarshal(payload, &match) != nil {
			return
		}
		if match.Status == repository.MatchDone {
			text = fmt.Sprintf("A match of tournament %d just finished. Check the standings!", event.TournamentId)
		}
	case service.EventStandingsUpdated:
		// standings follow match results, announcing both would be noise
		return
	}
	if text == "" {
		return
	}
	if _, err := a.session.ChannelMessageSend(a.channelId, text); err != nil {
		slog.Error("failed to send discord announcement", "error", err)
	}
}

// Close stops all consumers and the Discord session.
func (a *DiscordAnnouncer) Close() error {
	a.mu.Lock()
	for _, cancel := range a.cancels {
		cancel()
	}
	a.mu.Unlock()
	return a.session.Close()
}
