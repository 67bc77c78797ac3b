package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/room-service/internal/logger"
	logicv1 "github.com/duynhne/room-service/internal/logic/v1"
)

// outcomeStatus maps each domain outcome to its HTTP status. Outcomes not
// listed here (infrastructure failures) are 500.
var outcomeStatus = map[string]int{
	logicv1.OutcomeUserAlreadyExists:  http.StatusConflict,
	logicv1.OutcomeUserDoesNotExist:   http.StatusNotAcceptable,
	logicv1.OutcomeInvalidCredentials: http.StatusUnauthorized,
	logicv1.OutcomeNotLoggedIn:        http.StatusUnauthorized,
	logicv1.OutcomeNotOwner:           http.StatusUnauthorized,
	logicv1.OutcomeAlreadyMember:      http.StatusConflict,
	logicv1.OutcomeInvalidCode:        http.StatusNotFound,
	logicv1.OutcomeNotMember:          http.StatusBadRequest,
	logicv1.OutcomeOwnerCannotLeave:   http.StatusBadRequest,
	logicv1.OutcomeInvalidInput:       http.StatusBadRequest,
}

// StatusFor returns the HTTP status and outcome name for err.
func StatusFor(err error) (int, string) {
	outcome := logicv1.Outcome(err)
	if outcome == logicv1.OutcomeSuccess {
		return http.StatusOK, outcome
	}
	if status, ok := outcomeStatus[outcome]; ok {
		return status, outcome
	}
	return http.StatusInternalServerError, logicv1.OutcomeInternalServerError
}

// respondError writes the outcome for err. Domain outcomes are logged at warn,
// anything else at error with the detail kept out of the response body.
func respondError(c *gin.Context, err error, msg string) {
	status, outcome := StatusFor(err)
	log := logger.FromContext(c.Request.Context())

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("outcome", outcome).Msg(msg)
		c.AbortWithStatusJSON(status, gin.H{"status": outcome, "error": "Internal server error"})
		return
	}

	log.Warn().Err(err).Str("outcome", outcome).Msg(msg)
	c.AbortWithStatusJSON(status, gin.H{"status": outcome, "error": err.Error()})
}

func respondInvalidBody(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"status": logicv1.OutcomeInvalidInput,
		"error":  err.Error(),
	})
}
