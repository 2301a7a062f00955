package controllers

import (
	"net/http"

	"pinboard/auth"
	"pinboard/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// BoardController serves the caller's boards.
type BoardController struct {
	boardService services.BoardService
	logger       *zap.Logger
}

func NewBoardController(boardService services.BoardService, logger *zap.Logger) *BoardController {
	return &BoardController{boardService: boardService, logger: logger}
}

func (ctl *BoardController) RegisterRoutes(ws *restful.WebService) {
	tags := []string{"boards"}
	boardID := ws.PathParameter("board-id", "Identifier of the board").DataType("integer")

	ws.Route(ws.GET("/boards").Filter(auth.AuthFilter()).To(ctl.listBoardsHandler).
		Doc("List the caller's boards").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]BoardResponse{}).
		Returns(http.StatusOK, "Boards listed", []BoardResponse{}))

	ws.Route(ws.POST("/boards").Filter(auth.AuthFilter()).To(ctl.createBoardHandler).
		Doc("Create a board").
		Consumes(restful.MIME_JSON).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.CreateBoardInput{}).
		Returns(http.StatusCreated, "Board created", BoardResponse{}).
		Returns(http.StatusBadRequest, "Invalid input", MessageResponse{}))

	ws.Route(ws.GET("/boards/{board-id}").Filter(auth.AuthFilter()).To(ctl.getBoardHandler).
		Doc("Get a board with its pins").
		Param(boardID).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(BoardResponse{}).
		Returns(http.StatusOK, "Board found", BoardResponse{}).
		Returns(http.StatusNotFound, "Board not found", MessageResponse{}))

	ws.Route(ws.POST("/boards/{board-id}/pins").Filter(auth.AuthFilter()).To(ctl.addPinHandler).
		Doc("Add a pin to one's own board").
		Consumes(restful.MIME_JSON).
		Param(boardID).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.AddPinInput{}).
		Returns(http.StatusOK, "Pin added", BoardResponse{}).
		Returns(http.StatusForbidden, "Not the owner", MessageResponse{}).
		Returns(http.StatusNotFound, "Board or pin not found", MessageResponse{}))
}

// listBoardsHandler (Handles GET /api/boards)
func (ctl *BoardController) listBoardsHandler(request *restful.Request, response *restful.Response) {
	userID, ok := getRequestingUserID(request, response)
	if !ok {
		return
	}

	boards, err := ctl.boardService.ListBoards(request.Request.Context(), userID)
	if err != nil {
		handleServiceError(ctl.logger, request, response, err)
		return
	}
	writeJSON(response, http.StatusOK, mapBoards(boards))
}

// createBoardHandler (Handles POST /api/boards)
func (ctl *BoardController) createBoardHandler(request *restful.Request, response *restful.Response) {
	userID, ok := getRequestingUserID(request, response)
	if !ok {
		return
	}
	input := new(services.CreateBoardInput)
	if !readEntity(request, response, input) {
		return
	}

	board, err := ctl.boardService.CreateBoard(request.Request.Context(), userID, input)
	if err != nil {
		handleServiceError(ctl.logger, request, response, err)
		return
	}
	writeJSON(response, http.StatusCreated, mapBoard(board))
}

// getBoardHandler (Handles GET /api/boards/{board-id})
func (ctl *BoardController) getBoardHandler(request *restful.Request, response *restful.Response) {
	boardID, ok := pathID(request, response, "board-id")
	if !ok {
		return
	}

	board, err := ctl.boardService.GetBoard(request.Request.Context(), boardID)
	if err != nil {
		handleServiceError(ctl.logger, request, response, err)
		return
	}
	writeJSON(response, http.StatusOK, mapBoard(board))
}

// addPinHandler (Handles POST /api/boards/{board-id}/pins)
func (ctl *BoardController) addPinHandler(request *restful.Request, response *restful.Response) {
	boardID, ok := pathID(request, response, "board-id")
	if !ok {
		return
	}
	userID, ok := getRequestingUserID(request, response)
	if !ok {
		return
	}
	input := new(services.AddPinInput)
	if !readEntity(request, response, input) {
		return
	}

	board, err := ctl.boardService.AddPinToBoard(request.Request.Context(), boardID, userID, input)
	if err != nil {
		handleServiceError(ctl.logger, request, response, err)
		return
	}
	writeJSON(response, http.StatusOK, mapBoard(board))
}
