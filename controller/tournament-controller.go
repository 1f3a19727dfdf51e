package controller

import (
	"strconv"
	"time"

	"battlescore/app_error"
	"battlescore/config"
	"battlescore/repository"
	"battlescore/scoring"
	"battlescore/service"
	"battlescore/utils"

	"github.com/gin-contrib/cache"
	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TournamentController struct {
	tournamentService  *service.TournamentService
	participantService *service.ParticipantService
	standingService    *service.StandingService
	userService        *service.UserService
}

func NewTournamentController(db *gorm.DB) *TournamentController {
	return &TournamentController{
		tournamentService:  service.NewTournamentService(db),
		participantService: service.NewParticipantService(db),
		standingService:    service.NewStandingService(db),
		userService:        service.NewUserService(db),
	}
}

func setupTournamentController(db *gorm.DB, cacheStore persistence.CacheStore) []RouteInfo {
	e := NewTournamentController(db)
	cacheDuration := config.Env().APIStaticCacheDuration
	routes := []RouteInfo{
		{Method: "GET", Path: "/dashboard", HandlerFunc: e.getDashboardHandler(), Authenticated: true},
		{Method: "PUT", Path: "/tournaments", HandlerFunc: e.createTournamentHandler(), Authenticated: true},
		{Method: "GET", Path: "/tournaments/:tournament_id", HandlerFunc: e.getTournamentHandler()},
		{Method: "PATCH", Path: "/tournaments/:tournament_id", HandlerFunc: e.updateTournamentHandler(), Authenticated: true},
		{Method: "DELETE", Path: "/tournaments/:tournament_id", HandlerFunc: e.deleteTournamentHandler(), Authenticated: true},
		{Method: "POST", Path: "/tournaments/:tournament_id/start", HandlerFunc: e.startTournamentHandler(), Authenticated: true},
		{Method: "POST", Path: "/tournaments/:tournament_id/auto-match", HandlerFunc: e.setAutoMatchHandler(), Authenticated: true},
		{Method: "POST", Path: "/tournaments/:tournament_id/nb-team-matches", HandlerFunc: e.setNbTeamMatchesHandler(), Authenticated: true},
		{Method: "GET", Path: "/tournaments/:tournament_id/ranking", HandlerFunc: cache.CachePage(cacheStore, cacheDuration, e.getRankingHandler())},
		{Method: "GET", Path: "/tournaments/:tournament_id/standings", HandlerFunc: cache.CachePage(cacheStore, cacheDuration, e.getStandingsHandler())},
	}
	return routes
}

type Tournament struct {
	Id                int                         `json:"id" binding:"required"`
	Name              string                      `json:"name" binding:"required"`
	Sport             repository.TournamentSport  `json:"sport" binding:"required"`
	Status            repository.TournamentStatus `json:"status" binding:"required"`
	Description       string                      `json:"description"`
	Location          string                      `json:"location"`
	NbTeams           int                         `json:"nb_teams"`
	NbPlayersPerTeam  int                         `json:"nb_players_per_team"`
	NbTeamMatches     *int                        `json:"nb_team_matches"`
	AutoMatchCreation bool                        `json:"auto_match_creation"`
	StartsAt          *time.Time                  `json:"starts_at"`
	DateStart         *time.Time                  `json:"date_start"`
	AdminId           int                         `json:"admin_id" binding:"required"`
	Teams             []*Team                     `json:"teams,omitempty"`
	Participants      []*Participant              `json:"participants,omitempty"`
}

func toTournamentResponse(tournament *repository.Tournament) *Tournament {
	return &Tournament{
		Id:                tournament.Id,
		Name:              tournament.Name,
		Sport:             tournament.Sport,
		Status:            tournament.Status,
		Description:       tournament.Description,
		Location:          tournament.Location,
		NbTeams:           tournament.NbTeams,
		NbPlayersPerTeam:  tournament.NbPlayersPerTeam,
		NbTeamMatches:     tournament.NbTeamMatches,
		AutoMatchCreation: tournament.AutoMatchCreation,
		StartsAt:          tournament.StartsAt,
		DateStart:         tournament.DateStart,
		AdminId:           tournament.AdminId,
		Teams:             utils.Map(tournament.Teams, toTeamResponse),
		Participants:      utils.Map(tournament.Participants, toParticipantResponse),
	}
}

type TeamScore struct {
	Team   *Team `json:"team" binding:"required"`
	Points int   `json:"points" binding:"required"`
	Rank   int   `json:"rank" binding:"required"`
}

func toTeamScoreResponse(row *scoring.TeamScore) *TeamScore {
	return &TeamScore{Team: toTeamResponse(row.Team), Points: row.Points, Rank: row.Rank}
}

type Standing struct {
	TeamId int   `json:"team_id" binding:"required"`
	Team   *Team `json:"team,omitempty"`
	Rank   int   `json:"rank" binding:"required"`
	Points int   `json:"points" binding:"required"`
}

func toStandingResponse(standing *repository.Standing) *Standing {
	response := &Standing{
		TeamId: standing.TeamId,
		Rank:   standing.Rank,
		Points: standing.Points,
	}
	if standing.Team != nil {
		response.Team = toTeamResponse(standing.Team)
	}
	return response
}

// getTournament loads the tournament from the path parameter, writing the
// error response when it cannot be found.
func getTournament(c *gin.Context, tournamentService *service.TournamentService, preloads ...string) *repository.Tournament {
	tournamentId, err := strconv.Atoi(c.Param("tournament_id"))
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return nil
	}
	tournament, err := tournamentService.GetTournamentById(tournamentId, preloads...)
	if err != nil {
		app_error.Respond(c, err)
		return nil
	}
	return tournament
}

// requireTournamentAdmin checks that the authenticated user administrates
// the tournament, either as its owner or as an ADMIN participant.
func requireTournamentAdmin(c *gin.Context, participantService *service.ParticipantService, tournament *repository.Tournament) bool {
	userId := userIdFromContext(c)
	if tournament.AdminId == userId {
		return true
	}
	participant, err := participantService.GetParticipantForUser(tournament.Id, userId)
	if err == nil && participant.Role == repository.RoleAdmin {
		return true
	}
	c.JSON(403, gin.H{"error": "Unauthorized"})
	return false
}

// @id GetDashboard
// @Description Fetches the tournaments the user administrates or plays in
// @Tags tournament
// @Produce json
// @Success 200 {array} Tournament
// @Security CookieAuth
// @Router /dashboard [get]
func (e *TournamentController) getDashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournaments, err := e.tournamentService.GetDashboard(userIdFromContext(c))
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, utils.Map(tournaments, toTournamentResponse))
	}
}

// @id CreateTournament
// @Description Creates a tournament with its initial teams
// @Tags tournament
// @Accept json
// @Produce json
// @Param body body service.TournamentCreate true "Tournament"
// @Success 201 {object} Tournament
// @Security CookieAuth
// @Router /tournaments [put]
func (e *TournamentController) createTournamentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := e.userService.GetUserById(userIdFromContext(c))
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		var create service.TournamentCreate
		if err := c.BindJSON(&create); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		tournament, err := e.tournamentService.CreateTournament(user, &create)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, toTournamentResponse(tournament))
	}
}

// @id GetTournament
// @Description Fetches a tournament with its teams and participants
// @Tags tournament
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Success 200 {object} Tournament
// @Router /tournaments/{tournament_id} [get]
func (e *TournamentController) getTournamentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament := getTournament(c, e.tournamentService, "Teams", "Participants", "Participants.User")
		if tournament == nil {
			return
		}
		c.JSON(200, toTournamentResponse(tournament))
	}
}

// @id UpdateTournament
// @Description Updates tournament settings
// @Tags tournament
// @Accept json
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Param body body service.TournamentUpdate true "Settings"
// @Success 200 {object} Tournament
// @Security CookieAuth
// @Router /tournaments/{tournament_id} [patch]
func (e *TournamentController) updateTournamentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament := getTournament(c, e.tournamentService)
		if tournament == nil {
			return
		}
		if !requireTournamentAdmin(c, e.participantService, tournament) {
			return
		}
		var update service.TournamentUpdate
		if err := c.BindJSON(&update); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		tournament, err := e.tournamentService.UpdateTournament(tournament, &update)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toTournamentResponse(tournament))
	}
}

// @id DeleteTournament
// @Description Deletes a tournament and everything attached to it
// @Tags tournament
// @Param tournament_id path int true "Tournament Id"
// @Success 204
// @Security CookieAuth
// @Router /tournaments/{tournament_id} [delete]
func (e *TournamentController) deleteTournamentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament := getTournament(c, e.tournamentService)
		if tournament == nil {
			return
		}
		if !requireTournamentAdmin(c, e.participantService, tournament) {
			return
		}
		if err := e.tournamentService.DeleteTournament(tournament.Id); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.Status(204)
	}
}

// @id StartTournament
// @Description Starts the tournament and schedules the first matches
// @Tags tournament
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Success 200 {object} Tournament
// @Security CookieAuth
// @Router /tournaments/{tournament_id}/start [post]
func (e *TournamentController) startTournamentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament := getTournament(c, e.tournamentService)
		if tournament == nil {
			return
		}
		if !requireTournamentAdmin(c, e.participantService, tournament) {
			return
		}
		tournament, err := e.tournamentService.StartTournament(c.Request.Context(), tournament)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toTournamentResponse(tournament))
	}
}

type AutoMatchRequest struct {
	Enabled bool `json:"enabled"`
}

// @id SetAutoMatch
// @Description Toggles automatic match creation
// @Tags tournament
// @Accept json
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Param body body AutoMatchRequest true "Toggle"
// @Success 200 {object} Tournament
// @Security CookieAuth
// @Router /tournaments/{tournament_id}/auto-match [post]
func (e *TournamentController) setAutoMatchHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament := getTournament(c, e.tournamentService)
		if tournament == nil {
			return
		}
		if !requireTournamentAdmin(c, e.participantService, tournament) {
			return
		}
		var request AutoMatchRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		tournament, err := e.tournamentService.SetAutoMatchCreation(c.Request.Context(), tournament, request.Enabled)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toTournamentResponse(tournament))
	}
}

type NbTeamMatchesRequest struct {
	NbTeamMatches *int `json:"nb_team_matches"`
}

// @id SetNbTeamMatches
// @Description Sets or clears the number of matches each team plays
// @Tags tournament
// @Accept json
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Param body body NbTeamMatchesRequest true "Limit"
// @Success 200 {object} Tournament
// @Security CookieAuth
// @Router /tournaments/{tournament_id}/nb-team-matches [post]
func (e *TournamentController) setNbTeamMatchesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament := getTournament(c, e.tournamentService)
		if tournament == nil {
			return
		}
		if !requireTournamentAdmin(c, e.participantService, tournament) {
			return
		}
		var request NbTeamMatchesRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		tournament, err := e.tournamentService.SetNbTeamMatches(tournament, request.NbTeamMatches)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toTournamentResponse(tournament))
	}
}

// @id GetRanking
// @Description Computes the live ranking of the tournament
// @Tags tournament
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Success 200 {array} TeamScore
// @Router /tournaments/{tournament_id}/ranking [get]
func (e *TournamentController) getRankingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentId, err := strconv.Atoi(c.Param("tournament_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		ranking, err := e.standingService.ComputeRanking(tournamentId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, utils.Map(ranking, toTeamScoreResponse))
	}
}

// @id GetStandings
// @Description Fetches the persisted standings snapshot
// @Tags tournament
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Success 200 {array} Standing
// @Router /tournaments/{tournament_id}/standings [get]
func (e *TournamentController) getStandingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentId, err := strconv.Atoi(c.Param("tournament_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		standings, err := e.standingService.GetStandingsForTournament(tournamentId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, utils.Map(standings, toStandingResponse))
	}
}
