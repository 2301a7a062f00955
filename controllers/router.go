package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"pinboard/config"
	"pinboard/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"go.uber.org/zap"
)

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Users    services.UserService
	Pins     services.PinService
	Comments services.CommentService
	Likes    services.LikeService
	Boards   services.BoardService

	Uploads     config.UploadsConfig
	CORS        config.CORSConfig
	ServiceName string
	Logger      *zap.Logger

	// Ping reports database reachability for /health; nil skips the check.
	Ping func(ctx context.Context) error
}

// NewContainer assembles the go-restful container serving the whole API.
func NewContainer(deps Deps) *restful.Container {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	container := restful.NewContainer()
	container.DoNotRecover(false)
	container.RecoverHandler(func(reason interface{}, w http.ResponseWriter) {
		logger.Error("Recovered from panic", zap.Any("reason", reason), zap.Stack("stack"))
		w.Header().Set("Content-Type", restful.MIME_JSON)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Something went wrong. Please try again later."}`))
	})
	container.ServiceErrorHandler(func(serr restful.ServiceError, _ *restful.Request, response *restful.Response) {
		writeMessage(response, serr.Code, serr.Message)
	})

	cors := restful.CrossOriginResourceSharing{
		AllowedDomains: deps.CORS.AllowedDomains,
		AllowedHeaders: []string{"Content-Type", "Accept", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		ExposeHeaders:  []string{"Content-Type"},
		CookiesAllowed: false,
		Container:      container,
	}
	container.Filter(requestLogger(logger.Named("http")))
	container.Filter(cors.Filter)
	container.Filter(container.OPTIONSFilter)

	api := new(restful.WebService)
	api.Path("/api").Produces(restful.MIME_JSON)
	NewAuthController(deps.Users, logger).RegisterRoutes(api)
	NewPinController(deps.Pins, deps.Comments, deps.Likes, deps.Uploads.MaxBytes, logger).RegisterRoutes(api)
	NewBoardController(deps.Boards, logger).RegisterRoutes(api)
	container.Add(api)

	container.Add(healthService(deps.Ping))

	// Disk-backed images are served from the URL prefix they are stored under.
	if deps.Uploads.Backend == "disk" && strings.HasPrefix(deps.Uploads.URLPrefix, "/") {
		prefix := deps.Uploads.URLPrefix
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		container.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(deps.Uploads.Dir))))
	}

	serviceName := deps.ServiceName
	if serviceName == "" {
		serviceName = "pinboard"
	}
	container.Add(restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices: container.RegisteredWebServices(),
		APIPath:     "/apidocs.json",
		PostBuildSwaggerObjectHandler: func(swo *spec.Swagger) {
			enrichSwaggerObject(swo, serviceName)
		},
	}))

	return container
}

func healthService(ping func(ctx context.Context) error) *restful.WebService {
	ws := new(restful.WebService)
	ws.Path("/health").Produces(restful.MIME_JSON)
	ws.Route(ws.GET("").To(func(request *restful.Request, response *restful.Response) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(request.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				writeJSON(response, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
				return
			}
		}
		writeJSON(response, http.StatusOK, map[string]string{"status": "ok"})
	}).
		Doc("Liveness and database reachability").
		Metadata(restfulspec.KeyOpenAPITags, []string{"health"}))
	return ws
}

// requestLogger writes one structured line per request once it has been handled.
func requestLogger(logger *zap.Logger) restful.FilterFunction {
	return func(request *restful.Request, response *restful.Response, chain *restful.FilterChain) {
		startTime := time.Now()

		chain.ProcessFilter(request, response)

		latency := time.Since(startTime)
		status := response.StatusCode()
		fields := []zap.Field{
			zap.String("client_ip", clientIP(request.Request)),
			zap.String("method", request.Request.Method),
			zap.Int("status_code", status),
			zap.Duration("latency", latency),
			zap.String("user_agent", request.Request.UserAgent()),
			zap.String("path", request.Request.URL.Path),
		}
		if status >= http.StatusInternalServerError {
			logger.Warn("Request", fields...)
			return
		}
		logger.Info("Request", fields...)
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ip, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(ip)
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}

func enrichSwaggerObject(swo *spec.Swagger, serviceName string) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       serviceName,
			Description: "Pin sharing API: accounts, pins with images, comments, likes and boards.",
			Version:     "1.0.0",
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "auth", Description: "Accounts and tokens"}},
		{TagProps: spec.TagProps{Name: "pins", Description: "Pin feed and management"}},
		{TagProps: spec.TagProps{Name: "comments", Description: "Comments on pins"}},
		{TagProps: spec.TagProps{Name: "likes", Description: "Pin likes"}},
		{TagProps: spec.TagProps{Name: "boards", Description: "Boards of saved pins"}},
	}
	swo.SecurityDefinitions = spec.SecurityDefinitions{
		"bearer": spec.APIKeyAuth("Authorization", "header"),
	}
	swo.Schemes = []string{"http", "https"}
}
