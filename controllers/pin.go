package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"pinboard/auth"
	"pinboard/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

const (
	// multipartMemory is how much of a form is buffered in memory before spilling
	// to temporary files.
	multipartMemory = 8 << 20
	// formOverhead allows for the text fields and multipart framing around the image.
	formOverhead = 64 << 10
)

// PinController serves pins and their comments and likes.
type PinController struct {
	pinService     services.PinService
	commentService services.CommentService
	likeService    services.LikeService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewPinController(pins services.PinService, comments services.CommentService, likes services.LikeService, maxUploadBytes int64, logger *zap.Logger) *PinController {
	return &PinController{
		pinService:     pins,
		commentService: comments,
		likeService:    likes,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes adds the pin, comment and like routes to ws.
func (ctl *PinController) RegisterRoutes(ws *restful.WebService) {
	pinTags := []string{"pins"}
	pinID := ws.PathParameter("pin-id", "Identifier of the pin").DataType("integer")

	ws.Route(ws.POST("/pins").Filter(auth.AuthFilter()).To(ctl.createPinHandler).
		Doc("Create a pin from a multipart form").
		Consumes("multipart/form-data").
		Metadata(restfulspec.KeyOpenAPITags, pinTags).
		Param(ws.FormParameter("title", "Pin title").DataType("string").Required(true)).
		Param(ws.FormParameter("externallink", "Link the pin points to").DataType("string").Required(true)).
		Param(ws.FormParameter("image", "Image file").DataType("file").Required(true)).
		Returns(http.StatusCreated, "Pin created", PinResponse{}).
		Returns(http.StatusBadRequest, "Invalid input", MessageResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", MessageResponse{}))

	ws.Route(ws.GET("/pins").To(ctl.listPinsHandler).
		Doc("List all pins, newest first").
		Metadata(restfulspec.KeyOpenAPITags, pinTags).
		Writes([]PinResponse{}).
		Returns(http.StatusOK, "Pins listed", []PinResponse{}))

	ws.Route(ws.GET("/pins/{pin-id}").Filter(auth.AuthFilter()).To(ctl.getPinHandler).
		Doc("Get a pin with its comments").
		Param(pinID).
		Metadata(restfulspec.KeyOpenAPITags, pinTags).
		Writes(PinDetailResponse{}).
		Returns(http.StatusOK, "Pin found", PinDetailResponse{}).
		Returns(http.StatusNotFound, "Pin not found", MessageResponse{}))

	ws.Route(ws.PUT("/pins/{pin-id}").Filter(auth.AuthFilter()).To(ctl.updatePinHandler).
		Doc("Update the title or link of one's own pin").
		Consumes(restful.MIME_JSON).
		Param(pinID).
		Metadata(restfulspec.KeyOpenAPITags, pinTags).
		Reads(services.UpdatePinInput{}).
		Writes(PinResponse{}).
		Returns(http.StatusOK, "Pin updated", PinResponse{}).
		Returns(http.StatusBadRequest, "Invalid input", MessageResponse{}).
		Returns(http.StatusForbidden, "Not the author", MessageResponse{}).
		Returns(http.StatusNotFound, "Pin not found", MessageResponse{}))

	ws.Route(ws.DELETE("/pins/{pin-id}").Filter(auth.AuthFilter()).To(ctl.deletePinHandler).
		Doc("Delete one's own pin").
		Param(pinID).
		Metadata(restfulspec.KeyOpenAPITags, pinTags).
		Returns(http.StatusOK, "Pin deleted", MessageResponse{}).
		Returns(http.StatusForbidden, "Not the author", MessageResponse{}).
		Returns(http.StatusNotFound, "Pin not found", MessageResponse{}))

	ws.Route(ws.GET("/pins/{pin-id}/comments").To(ctl.listCommentsHandler).
		Doc("List the comments of a pin, oldest first").
		Param(pinID).
		Metadata(restfulspec.KeyOpenAPITags, []string{"comments"}).
		Writes([]CommentResponse{}).
		Returns(http.StatusOK, "Comments listed", []CommentResponse{}).
		Returns(http.StatusNotFound, "Pin not found", MessageResponse{}))

	ws.Route(ws.POST("/pins/{pin-id}/comments").Filter(auth.AuthFilter()).To(ctl.createCommentHandler).
		Doc("Comment on a pin").
		Consumes(restful.MIME_JSON).
		Param(pinID).
		Metadata(restfulspec.KeyOpenAPITags, []string{"comments"}).
		Reads(services.CreateCommentInput{}).
		Returns(http.StatusCreated, "Comment created", CommentResponse{}).
		Returns(http.StatusBadRequest, "Invalid input", MessageResponse{}).
		Returns(http.StatusNotFound, "Pin not found", MessageResponse{}))

	// No Consumes: the toggle takes no body, so requests without a Content-Type must match.
	ws.Route(ws.POST("/pins/{pin-id}/likes").Filter(auth.AuthFilter()).To(ctl.toggleLikeHandler).
		Doc("Like a pin, or unlike it when already liked").
		Param(pinID).
		Metadata(restfulspec.KeyOpenAPITags, []string{"likes"}).
		Writes(services.LikeResult{}).
		Returns(http.StatusOK, "Like toggled", services.LikeResult{}).
		Returns(http.StatusNotFound, "Pin not found", MessageResponse{}))
}

// createPinHandler (Handles POST /api/pins)
func (ctl *PinController) createPinHandler(request *restful.Request, response *restful.Response) {
	userID, ok := getRequestingUserID(request, response)
	if !ok {
		return
	}

	r := request.Request
	if ctl.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(response.ResponseWriter, r.Body, ctl.maxUploadBytes+formOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(response, http.StatusBadRequest, MessageResponse{
				Message: "Invalid input",
				Errors:  map[string]string{"image": fmt.Sprintf("must be at most %d bytes", ctl.maxUploadBytes)},
			})
			return
		}
		writeMessage(response, http.StatusBadRequest, "Invalid form data: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	input := &services.CreatePinInput{
		Title:        r.FormValue("title"),
		ExternalLink: r.FormValue("externallink"),
	}
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		input.Image = &services.ImageUpload{File: file, Size: header.Size, Filename: header.Filename}
	case errors.Is(err, http.ErrMissingFile):
		// reported by the service as a field error
	default:
		writeMessage(response, http.StatusBadRequest, "Invalid image upload: "+err.Error())
		return
	}

	pin, err := ctl.pinService.CreatePin(r.Context(), userID, input)
	if err != nil {
		handleServiceError(ctl.logger, request, response, err)
		return
	}
	writeJSON(response, http.StatusCreated, mapPin(pin))
}

// listPinsHandler (Handles GET /api/pins)
func (ctl *PinController) listPinsHandler(request *restful.Request, response *restful.Response) {
	pins, err := ctl.pinService.ListPins(request.Request.Context())
	if err != nil {
		handleServiceError(ctl.logger, request, response, err)
		return
	}
	writeJSON(response, http.StatusOK, mapPins(pins))
}

// getPinHandler (Handles GET /api/pins/{pin-id})
func (ctl *PinController) getPinHandler(request *restful.Request, response *restful.Response) {
	pinID, ok := pathID(request, response, "pin-id")
	if !ok {
		return
	}

	pin, err := ctl.pinService.GetPin(request.Request.Context(), pinID)
	if err != nil {
		handleServiceError(ctl.logger, request, response, err)
		return
	}
	writeJSON(response, http.StatusOK, mapPinDetail(pin))
}

// updatePinHandler (Handles PUT /api/pins/{pin-id})
func (ctl *PinController) updatePinHandler(request *restful.Request, response *restful.Response) {
	pinID, ok := pathID(request, response, "pin-id")
	if !ok {
		return
	}
	userID, ok := getRequestingUserID(request, response)
	if !ok {
		return
	}
	input := new(services.UpdatePinInput)
	if !readEntity(request, response, input) {
		return
	}

	pin, err := ctl.pinService.UpdatePin(request.Request.Context(), pinID, userID, input)
	if err != nil {
		handleServiceError(ctl.logger, request, response, err)
		return
	}
	writeJSON(response, http.StatusOK, mapPin(pin))
}

// deletePinHandler (Handles DELETE /api/pins/{pin-id})
func (ctl *PinController) deletePinHandler(request *restful.Request, response *restful.Response) {
	pinID, ok := pathID(request, response, "pin-id")
	if !ok {
		return
	}
	userID, ok := getRequestingUserID(request, response)
	if !ok {
		return
	}

	if err := ctl.pinService.DeletePin(request.Request.Context(), pinID, userID); err != nil {
		handleServiceError(ctl.logger, request, response, err)
		return
	}
	writeMessage(response, http.StatusOK, "Pin deleted successfully")
}

// listCommentsHandler (Handles GET /api/pins/{pin-id}/comments)
func (ctl *PinController) listCommentsHandler(request *restful.Request, response *restful.Response) {
	pinID, ok := pathID(request, response, "pin-id")
	if !ok {
		return
	}

	comments, err := ctl.commentService.ListComments(request.Request.Context(), pinID)
	if err != nil {
		handleServiceError(ctl.logger, request, response, err)
		return
	}
	writeJSON(response, http.StatusOK, mapComments(comments))
}

// createCommentHandler (Handles POST /api/pins/{pin-id}/comments)
func (ctl *PinController) createCommentHandler(request *restful.Request, response *restful.Response) {
	pinID, ok := pathID(request, response, "pin-id")
	if !ok {
		return
	}
	userID, ok := getRequestingUserID(request, response)
	if !ok {
		return
	}
	input := new(services.CreateCommentInput)
	if !readEntity(request, response, input) {
		return
	}

	comment, err := ctl.commentService.CreateComment(request.Request.Context(), pinID, userID, input)
	if err != nil {
		handleServiceError(ctl.logger, request, response, err)
		return
	}
	writeJSON(response, http.StatusCreated, mapComment(comment))
}

// toggleLikeHandler (Handles POST /api/pins/{pin-id}/likes)
func (ctl *PinController) toggleLikeHandler(request *restful.Request, response *restful.Response) {
	pinID, ok := pathID(request, response, "pin-id")
	if !ok {
		return
	}
	userID, ok := getRequestingUserID(request, response)
	if !ok {
		return
	}

	result, err := ctl.likeService.ToggleLike(request.Request.Context(), pinID, userID)
	if err != nil {
		handleServiceError(ctl.logger, request, response, err)
		return
	}
	writeJSON(response, http.StatusOK, result)
}
