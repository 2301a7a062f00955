package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"pinboard/auth"
	"pinboard/services"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

func writeJSON(response *restful.Response, status int, v any) {
	_ = response.WriteHeaderAndJson(status, v, restful.MIME_JSON)
}

func writeMessage(response *restful.Response, status int, message string) {
	writeJSON(response, status, MessageResponse{Message: message})
}

// handleServiceError translates service errors to HTTP responses. Unclassified
// errors are logged and answered with a generic 500.
func handleServiceError(logger *zap.Logger, request *restful.Request, response *restful.Response, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(response, http.StatusBadRequest, MessageResponse{Message: "Invalid input", Errors: ve.Fields})
	case errors.Is(err, services.ErrValidation):
		writeMessage(response, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		writeMessage(response, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		writeMessage(response, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		writeMessage(response, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		writeMessage(response, http.StatusConflict, err.Error())
	default:
		logger.Error("Unhandled service error",
			zap.String("method", request.Request.Method),
			zap.String("path", request.Request.URL.Path),
			zap.Error(err),
		)
		writeMessage(response, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}

// pathID parses a numeric path parameter, answering 400 when it is malformed.
func pathID(request *restful.Request, response *restful.Response, name string) (uint, bool) {
	id, err := strconv.ParseUint(request.PathParameter(name), 10, 64)
	if err != nil || id == 0 {
		writeMessage(response, http.StatusBadRequest, "Invalid "+name+" format")
		return 0, false
	}
	return uint(id), true
}

// getRequestingUserID extracts the user ID set by the AuthFilter.
func getRequestingUserID(request *restful.Request, response *restful.Response) (uint, bool) {
	userID, ok := auth.UserID(request)
	if !ok {
		writeMessage(response, http.StatusUnauthorized, "Unauthorized: Cannot identify requesting user")
		return 0, false
	}
	return userID, true
}

// readEntity decodes the JSON body, answering 400 when it cannot be read.
func readEntity(request *restful.Request, response *restful.Response, v any) bool {
	if err := request.ReadEntity(v); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
