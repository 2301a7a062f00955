package controllers

import (
	"net/http"

	"pinboard/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// AuthController serves account creation and sign-in.
type AuthController struct {
	userService services.UserService
	logger      *zap.Logger
}

func NewAuthController(userService services.UserService, logger *zap.Logger) *AuthController {
	return &AuthController{userService: userService, logger: logger}
}

// RegisterRoutes adds the public authentication routes to ws.
func (ctl *AuthController) RegisterRoutes(ws *restful.WebService) {
	tags := []string{"auth"}

	ws.Route(ws.POST("/signup").To(ctl.signupHandler).
		Doc("Create an account").
		Consumes(restful.MIME_JSON).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.SignupInput{}).
		Returns(http.StatusCreated, "You signed up successfully!", SignupResponse{}).
		Returns(http.StatusBadRequest, "Invalid input", MessageResponse{}).
		Returns(http.StatusConflict, "An account with this email already exists", MessageResponse{}))

	ws.Route(ws.POST("/signin").To(ctl.signinHandler).
		Doc("Exchange credentials for a bearer token").
		Consumes(restful.MIME_JSON).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.SigninInput{}).
		Returns(http.StatusOK, "Signed in successfully!", SigninResponse{}).
		Returns(http.StatusBadRequest, "Invalid email or password", MessageResponse{}).
		Returns(http.StatusUnauthorized, "Invalid credentials", MessageResponse{}))
}

// signupHandler (Handles POST /api/signup)
func (ctl *AuthController) signupHandler(request *restful.Request, response *restful.Response) {
	input := new(services.SignupInput)
	if !readEntity(request, response, input) {
		return
	}

	user, err := ctl.userService.Signup(request.Request.Context(), input)
	if err != nil {
		handleServiceError(ctl.logger, request, response, err)
		return
	}

	writeJSON(response, http.StatusCreated, SignupResponse{
		Message: "You signed up successfully!",
		User:    mapUser(user),
	})
}

// signinHandler (Handles POST /api/signin)
func (ctl *AuthController) signinHandler(request *restful.Request, response *restful.Response) {
	input := new(services.SigninInput)
	if !readEntity(request, response, input) {
		return
	}

	token, user, err := ctl.userService.Signin(request.Request.Context(), input)
	if err != nil {
		handleServiceError(ctl.logger, request, response, err)
		return
	}

	ctl.logger.Debug("User signed in", zap.Uint("user_id", user.ID))
	writeJSON(response, http.StatusOK, SigninResponse{Message: "Signed in successfully!", Token: token})
}
