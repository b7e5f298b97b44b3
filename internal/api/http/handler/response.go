package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type userResponse struct {
	User model.PublicUser `json:"user"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type loginResponse struct {
	tokenResponse
	User model.PublicUser `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func newTokenResponse(pair model.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}
}

func statusOf(kind model.ErrorKind) int {
	switch kind {
	case model.KindDuplicateEmail:
		return http.StatusConflict
	case model.KindInvalidInput:
		return http.StatusBadRequest
	case model.KindInvalidCredentials, model.KindInvalidRefresh, model.KindUnauthenticated:
		return http.StatusUnauthorized
	case model.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError writes the error body and logs server faults.
func respondWithError(c *gin.Context, lg *logger.Logger, msg string, err error) {
	kind := model.KindOf(err)
	status := statusOf(kind)

	args := []any{"path", c.Request.URL.Path, "kind", string(kind), "error", err.Error()}
	if status >= http.StatusInternalServerError {
		lg.Error(msg, args...)
	} else {
		lg.Info(msg, args...)
	}

	c.JSON(status, errorResponse{Error: model.MessageOf(err), Code: string(kind)})
}

var errMalformedBody = model.NewError(model.KindInvalidInput, "request body must be valid JSON", nil)

// bindJSON decodes the request body into dst. An empty body is accepted
// when optional is true.
func bindJSON(c *gin.Context, dst any, optional bool) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return model.NewError(model.KindInvalidInput, errMalformedBody.Message, err)
	}
	return nil
}
