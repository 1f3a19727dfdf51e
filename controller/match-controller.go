package controller

import (
	"strconv"
	"time"

	"battlescore/app_error"
	"battlescore/repository"
	"battlescore/service"
	"battlescore/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MatchController struct {
	matchService       *service.MatchService
	scoreService       *service.ScoreService
	tournamentService  *service.TournamentService
	participantService *service.ParticipantService
}

func NewMatchController(db *gorm.DB) *MatchController {
	return &MatchController{
		matchService:       service.NewMatchService(db),
		scoreService:       service.NewScoreService(db),
		tournamentService:  service.NewTournamentService(db),
		participantService: service.NewParticipantService(db),
	}
}

func setupMatchController(db *gorm.DB) []RouteInfo {
	e := NewMatchController(db)
	baseUrl := "/tournaments/:tournament_id/matches"
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: e.getMatchesHandler()},
		{Method: "PUT", Path: "", HandlerFunc: e.createMatchHandler(), Authenticated: true},
		{Method: "GET", Path: "/:match_id", HandlerFunc: e.getMatchHandler()},
		{Method: "PATCH", Path: "/:match_id", HandlerFunc: e.updateMatchHandler(), Authenticated: true},
		{Method: "DELETE", Path: "/:match_id", HandlerFunc: e.deleteMatchHandler(), Authenticated: true},
		{Method: "PUT", Path: "/:match_id/scores", HandlerFunc: e.setScoresHandler(), Authenticated: true},
	}
	for i, route := range routes {
		routes[i].Path = baseUrl + route.Path
	}
	return routes
}

type Match struct {
	Id        int                    `json:"id" binding:"required"`
	Ordering  int                    `json:"ordering" binding:"required"`
	Status    repository.MatchStatus `json:"status" binding:"required"`
	DateStart *time.Time             `json:"date_start"`
	DateEnd   *time.Time             `json:"date_end"`
	Location  string                 `json:"location"`
	Details   string                 `json:"details"`
	Teams     []*Team                `json:"teams,omitempty"`
	Scores    []*Score               `json:"scores,omitempty"`
}

type Score struct {
	TeamId int `json:"team_id" binding:"required"`
	Value  int `json:"value" binding:"required"`
}

// MatchList splits the schedule the way the tournament page displays it.
type MatchList struct {
	Ongoing []*Match `json:"ongoing"`
	Coming  []*Match `json:"coming"`
	Done    []*Match `json:"done"`
}

func toMatchResponse(match *repository.Match) *Match {
	return &Match{
		Id:        match.Id,
		Ordering:  match.Ordering,
		Status:    match.Status,
		DateStart: match.DateStart,
		DateEnd:   match.DateEnd,
		Location:  match.Location,
		Details:   match.Details,
		Teams:     utils.Map(match.Teams, toTeamResponse),
		Scores: utils.Map(match.Scores, func(score *repository.Score) *Score {
			return &Score{TeamId: score.TeamId, Value: score.Value}
		}),
	}
}

// @id GetMatches
// @Description Fetches the matches of a tournament, split by status
// @Tags match
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Success 200 {object} MatchList
// @Router /tournaments/{tournament_id}/matches [get]
func (e *MatchController) getMatchesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentId, err := strconv.Atoi(c.Param("tournament_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		ongoing, coming, done, err := e.matchService.GetMatchesForTournament(tournamentId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, &MatchList{
			Ongoing: utils.Map(ongoing, toMatchResponse),
			Coming:  utils.Map(coming, toMatchResponse),
			Done:    utils.Map(done, toMatchResponse),
		})
	}
}

// @id CreateMatch
// @Description Creates a match between at least two teams
// @Tags match
// @Accept json
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Param body body service.MatchCreate true "Match"
// @Success 201 {object} Match
// @Security CookieAuth
// @Router /tournaments/{tournament_id}/matches [put]
func (e *MatchController) createMatchHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament := getTournament(c, e.tournamentService)
		if tournament == nil {
			return
		}
		if !requireTournamentAdmin(c, e.participantService, tournament) {
			return
		}
		var create service.MatchCreate
		if err := c.BindJSON(&create); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		match, err := e.matchService.CreateMatch(c.Request.Context(), tournament.Id, &create)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, toMatchResponse(match))
	}
}

// @id GetMatch
// @Description Fetches one match with its teams and scores
// @Tags match
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Param match_id path int true "Match Id"
// @Success 200 {object} Match
// @Router /tournaments/{tournament_id}/matches/{match_id} [get]
func (e *MatchController) getMatchHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentId, err := strconv.Atoi(c.Param("tournament_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		matchId, err := strconv.Atoi(c.Param("match_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		match, err := e.matchService.GetMatchById(tournamentId, matchId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toMatchResponse(match))
	}
}

// @id UpdateMatch
// @Description Updates a match. Moving it to DONE finalizes the standings
// @Tags match
// @Accept json
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Param match_id path int true "Match Id"
// @Param body body service.MatchUpdate true "Update"
// @Success 200 {object} Match
// @Security CookieAuth
// @Router /tournaments/{tournament_id}/matches/{match_id} [patch]
func (e *MatchController) updateMatchHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament := getTournament(c, e.tournamentService)
		if tournament == nil {
			return
		}
		if !requireTournamentAdmin(c, e.participantService, tournament) {
			return
		}
		matchId, err := strconv.Atoi(c.Param("match_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var update service.MatchUpdate
		if err := c.BindJSON(&update); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		match, err := e.matchService.UpdateMatch(c.Request.Context(), tournament.Id, matchId, &update)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toMatchResponse(match))
	}
}

// @id DeleteMatch
// @Description Deletes a match and renumbers the schedule
// @Tags match
// @Param tournament_id path int true "Tournament Id"
// @Param match_id path int true "Match Id"
// @Success 204
// @Security CookieAuth
// @Router /tournaments/{tournament_id}/matches/{match_id} [delete]
func (e *MatchController) deleteMatchHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament := getTournament(c, e.tournamentService)
		if tournament == nil {
			return
		}
		if !requireTournamentAdmin(c, e.participantService, tournament) {
			return
		}
		matchId, err := strconv.Atoi(c.Param("match_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.matchService.DeleteMatch(c.Request.Context(), tournament.Id, matchId); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.Status(204)
	}
}

type ScoresRequest struct {
	Scores []service.ScoreEntry `json:"scores" binding:"required"`
}

// @id SetScores
// @Description Batch upserts the scores of a match. A null value deletes the row
// @Tags match
// @Accept json
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Param match_id path int true "Match Id"
// @Param body body ScoresRequest true "Scores"
// @Success 200 {object} Match
// @Security CookieAuth
// @Router /tournaments/{tournament_id}/matches/{match_id}/scores [put]
func (e *MatchController) setScoresHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament := getTournament(c, e.tournamentService)
		if tournament == nil {
			return
		}
		matchId, err := strconv.Atoi(c.Param("match_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if !e.canScore(c, tournament, matchId) {
			return
		}
		var request ScoresRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		match, err := e.scoreService.SetScores(c.Request.Context(), tournament.Id, matchId, request.Scores)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toMatchResponse(match))
	}
}

// canScore allows tournament admins and players of a team in the match.
func (e *MatchController) canScore(c *gin.Context, tournament *repository.Tournament, matchId int) bool {
	userId := userIdFromContext(c)
	if tournament.AdminId == userId {
		return true
	}
	participant, err := e.participantService.GetParticipantForUser(tournament.Id, userId)
	if err == nil {
		if participant.Role == repository.RoleAdmin {
			return true
		}
		if participant.TeamId != nil {
			match, err := e.matchService.GetMatchById(tournament.Id, matchId)
			if err == nil && match.HasTeam(*participant.TeamId) {
				return true
			}
		}
	}
	c.JSON(403, gin.H{"error": "Unauthorized"})
	return false
}
