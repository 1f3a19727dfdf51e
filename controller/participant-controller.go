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

type ParticipantController struct {
	participantService *service.ParticipantService
	tournamentService  *service.TournamentService
}

func NewParticipantController(db *gorm.DB) *ParticipantController {
	return &ParticipantController{
		participantService: service.NewParticipantService(db),
		tournamentService:  service.NewTournamentService(db),
	}
}

func setupParticipantController(db *gorm.DB) []RouteInfo {
	e := NewParticipantController(db)
	baseUrl := "/tournaments/:tournament_id/participants"
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: e.getParticipantsHandler()},
		{Method: "PUT", Path: "", HandlerFunc: e.joinHandler(), Authenticated: true},
		{Method: "PATCH", Path: "/:participant_id", HandlerFunc: e.updateParticipantHandler(), Authenticated: true},
		{Method: "DELETE", Path: "/:participant_id", HandlerFunc: e.removeParticipantHandler(), Authenticated: true},
	}
	for i, route := range routes {
		routes[i].Path = baseUrl + route.Path
	}
	return routes
}

type Participant struct {
	Id     int                        `json:"id" binding:"required"`
	UserId int                        `json:"user_id" binding:"required"`
	User   *PublicUser                `json:"user,omitempty"`
	TeamId *int                       `json:"team_id"`
	Role   repository.ParticipantRole `json:"role" binding:"required"`
}

func toParticipantResponse(participant *repository.Participant) *Participant {
	return &Participant{
		Id:     participant.Id,
		UserId: participant.UserId,
		User:   toPublicUserResponse(participant.User),
		TeamId: participant.TeamId,
		Role:   participant.Role,
	}
}

// @id GetParticipants
// @Description Fetches the participants of a tournament
// @Tags participant
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Success 200 {array} Participant
// @Router /tournaments/{tournament_id}/participants [get]
func (e *ParticipantController) getParticipantsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentId, err := strconv.Atoi(c.Param("tournament_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		participants, err := e.participantService.GetParticipantsForTournament(tournamentId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, utils.Map(participants, toParticipantResponse))
	}
}

type JoinRequest struct {
	Role repository.ParticipantRole `json:"role"`
}

// @id JoinTournament
// @Description Adds the authenticated user to the tournament
// @Tags participant
// @Accept json
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Param body body JoinRequest true "Role"
// @Success 201 {object} Participant
// @Security CookieAuth
// @Router /tournaments/{tournament_id}/participants [put]
func (e *ParticipantController) joinHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament := getTournament(c, e.tournamentService)
		if tournament == nil {
			return
		}
		var request JoinRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		participant, err := e.participantService.Join(c.Request.Context(), tournament.Id, userIdFromContext(c), request.Role)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, toParticipantResponse(participant))
	}
}

// @id UpdateParticipant
// @Description Changes a participant's role or team assignment
// @Tags participant
// @Accept json
// @Produce json
// @Param tournament_id path int true "Tournament Id"
// @Param participant_id path int true "Participant Id"
// @Param body body service.ParticipantUpdate true "Update"
// @Success 200 {object} Participant
// @Security CookieAuth
// @Router /tournaments/{tournament_id}/participants/{participant_id} [patch]
func (e *ParticipantController) updateParticipantHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament := getTournament(c, e.tournamentService)
		if tournament == nil {
			return
		}
		if !requireTournamentAdmin(c, e.participantService, tournament) {
			return
		}
		participantId, err := strconv.Atoi(c.Param("participant_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var update service.ParticipantUpdate
		if err := c.BindJSON(&update); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		participant, err := e.participantService.UpdateParticipant(c.Request.Context(), tournament.Id, participantId, &update)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toParticipantResponse(participant))
	}
}

// @id RemoveParticipant
// @Description Removes a participant. Users can always remove themselves.
// @Tags participant
// @Param tournament_id path int true "Tournament Id"
// @Param participant_id path int true "Participant Id"
// @Success 204
// @Security CookieAuth
// @Router /tournaments/{tournament_id}/participants/{participant_id} [delete]
func (e *ParticipantController) removeParticipantHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament := getTournament(c, e.tournamentService)
		if tournament == nil {
			return
		}
		participantId, err := strconv.Atoi(c.Param("participant_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		userId := userIdFromContext(c)
		self, selfErr := e.participantService.GetParticipantForUser(tournament.Id, userId)
		isSelf := selfErr == nil && self.Id == participantId
		if !isSelf && !requireTournamentAdmin(c, e.participantService, tournament) {
			return
		}
		if err := e.participantService.RemoveParticipant(c.Request.Context(), tournament.Id, participantId); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.Status(204)
	}
}
