package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feral-file/nft-registry/internal/api/apierrors"
	"github.com/feral-file/nft-registry/internal/domain"
	"github.com/feral-file/nft-registry/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondMissingCaller responds to a mutation submitted without a caller
func respondMissingCaller(c *gin.Context) {
	respondBadRequest(c, "Missing X-Caller-Principal header")
}

// respondDomainError maps a registry error to its HTTP status and error body
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrTokenNotFound),
		errors.Is(err, domain.ErrOwnerNotFound),
		errors.Is(err, domain.ErrOperatorNotFound),
		errors.Is(err, domain.ErrTxNotFound):
		c.JSON(http.StatusNotFound, apierrors.NewNotFoundError(err.Error()))

	case errors.Is(err, domain.ErrUnauthorizedOwner),
		errors.Is(err, domain.ErrUnauthorizedOperator),
		errors.Is(err, domain.ErrNotCustodian):
		c.JSON(http.StatusForbidden, apierrors.NewForbiddenError(err.Error()))

	case errors.Is(err, domain.ErrTokenAlreadyExists):
		c.JSON(http.StatusConflict, apierrors.NewConflictError(err.Error()))

	case errors.Is(err, domain.ErrSelfApprove),
		errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrTokenBurned):
		c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(err.Error()))

	default:
		logger.Error(err)
		c.JSON(http.StatusInternalServerError, apierrors.NewInternalError("Internal server error"))
	}
}
