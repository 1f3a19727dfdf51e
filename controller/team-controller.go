package controller

import (
	"strconv"

	"battlescore/app_error"
	"battlescore/repository"
	"battlescore/service"
	"battlescore/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TeamController struct {
	teamService        *service.TeamService
	tournamentService  *service.TournamentService
	participantService *service.ParticipantService
	standingService    *service.StandingService
}

func NewTeamController(db *gorm.DB) *TeamController {
	return &TeamController{
		teamService:        service.NewTeamService(db),
		tournamentService:  service.NewTournamentService(db),
		participantService: service.NewParticipantService(db),
		standingService:    service.NewStandingService(db),
	}
}

func setupTeamController(db *gorm.DB) []RouteInfo {
	e := NewTeamController(db)
	baseUrl := "/tournaments/:tournament_id/teams"
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: e.getTeamsHandler()},
		{Method: "PUT", Path: "", HandlerFunc: e.createTeamsHandler(), Authenticated: true},
		{Method: "GET", Path: "/:team_id", HandlerFunc: e.getTeamHandler()},
		{Method: "PATCH", Path: "/:team_id", HandlerFunc: e.updateTeamHandler(), Authenticated: true},
		{Method: "DELETE", Path: "/:team_id", HandlerFunc: e.deleteTeamHandler(), Authenticated: true},
	}
	for i, route := range routes {
		routes[i].Path = baseUrl + route.Path
	}
	return routes
}

type Team struct {
	Id      int           `json:"id" binding:"required"`
	Name    string        `json:"name" binding:"required"`
	Number  int           `json:"number" binding:"required"`
	Members []*PublicUser `json:"members,omitempty"`
}

// TeamOverview is the team list row with the data the tournament pages need.
type TeamOverview struct {
	Team
	NbMatches int  `json:"nb_matches"`
	Rank      *int `json:"rank,omitempty"`
}

func toTeamResponse(team *repository.Team) *Team {
	response := &Team{
		Id:     team.Id,
		Name:   team.Name,
		Number: team.Number,
	}
	for _, member := range team.Members {
		if member.User != nil {
			response.Members = append(response.Members, toPublicUserResponse(member.User))
		}
	}
	return response
}

// @id GetTeams
// @Description Fetches the teams of a tournament with match counts and ranks
// @Tags team
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Success 200 {array} TeamOverview
// @Router /tournaments/{tournament_id}/teams [get]
func (e *TeamController) getTeamsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentId, err := strconv.Atoi(c.Param("tournament_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		tournament, err := e.tournamentService.GetTournamentForScoring(tournamentId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		matchCounts := make(map[int]int)
		for _, match := range tournament.Matches {
			for _, team := range match.Teams {
				matchCounts[team.Id]++
			}
		}
		ranks := make(map[int]int)
		standings, err := e.standingService.GetStandingsForTournament(tournamentId)
		if err == nil {
			for _, standing := range standings {
				ranks[standing.TeamId] = standing.Rank
			}
		}
		overviews := utils.Map(tournament.Teams, func(team *repository.Team) *TeamOverview {
			overview := &TeamOverview{
				Team:      *toTeamResponse(team),
				NbMatches: matchCounts[team.Id],
			}
			if rank, ok := ranks[team.Id]; ok {
				overview.Rank = &rank
			}
			return overview
		})
		c.JSON(200, overviews)
	}
}

type TeamsCreate struct {
	Count int `json:"count" binding:"required"`
}

// @id CreateTeams
// @Description Bulk creates teams with generated names
// @Tags team
// @Accept json
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Param body body TeamsCreate true "Count"
// @Success 201 {array} Team
// @Security CookieAuth
// @Router /tournaments/{tournament_id}/teams [put]
func (e *TeamController) createTeamsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament := getTournament(c, e.tournamentService)
		if tournament == nil {
			return
		}
		if !requireTournamentAdmin(c, e.participantService, tournament) {
			return
		}
		var create TeamsCreate
		if err := c.BindJSON(&create); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		teams, err := e.teamService.CreateTeams(tournament, create.Count)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, utils.Map(teams, toTeamResponse))
	}
}

// @id GetTeam
// @Description Fetches one team with its members
// @Tags team
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Param team_id path int true "Team Id"
// @Success 200 {object} Team
// @Router /tournaments/{tournament_id}/teams/{team_id} [get]
func (e *TeamController) getTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentId, err := strconv.Atoi(c.Param("tournament_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		teamId, err := strconv.Atoi(c.Param("team_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		team, err := e.teamService.GetTeamById(tournamentId, teamId, "Members", "Members.User")
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toTeamResponse(team))
	}
}

type TeamUpdate struct {
	Name string `json:"name" binding:"required"`
}

// @id UpdateTeam
// @Description Renames a team. Allowed to tournament admins and team members.
// @Tags team
// @Accept json
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Param team_id path int true "Team Id"
// @Param body body TeamUpdate true "Name"
// @Success 200 {object} Team
// @Security CookieAuth
// @Router /tournaments/{tournament_id}/teams/{team_id} [patch]
func (e *TeamController) updateTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament := getTournament(c, e.tournamentService)
		if tournament == nil {
			return
		}
		teamId, err := strconv.Atoi(c.Param("team_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if !e.canEditTeam(c, tournament, teamId) {
			return
		}
		var update TeamUpdate
		if err := c.BindJSON(&update); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		team, err := e.teamService.UpdateTeamName(tournament.Id, teamId, update.Name)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toTeamResponse(team))
	}
}

// @id DeleteTeam
// @Description Deletes a team and renumbers the remaining ones
// @Tags team
// @Param tournament_id path int true "Tournament Id"
// @Param team_id path int true "Team Id"
// @Success 204
// @Security CookieAuth
// @Router /tournaments/{tournament_id}/teams/{team_id} [delete]
func (e *TeamController) deleteTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament := getTournament(c, e.tournamentService)
		if tournament == nil {
			return
		}
		if !requireTournamentAdmin(c, e.participantService, tournament) {
			return
		}
		teamId, err := strconv.Atoi(c.Param("team_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.teamService.DeleteTeam(tournament.Id, teamId); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.Status(204)
	}
}

// canEditTeam allows tournament admins and members of the team itself.
func (e *TeamController) canEditTeam(c *gin.Context, tournament *repository.Tournament, teamId int) bool {
	userId := userIdFromContext(c)
	if tournament.AdminId == userId {
		return true
	}
	participant, err := e.participantService.GetParticipantForUser(tournament.Id, userId)
	if err == nil {
		if participant.Role == repository.RoleAdmin {
			return true
		}
		if participant.TeamId != nil && *participant.TeamId == teamId {
			return true
		}
	}
	c.JSON(403, gin.H{"error": "Unauthorized"})
	return false
}
