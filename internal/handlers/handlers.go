package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Nikocoro/prubas123/internal/config"
	"github.com/Nikocoro/prubas123/internal/middleware"
	"github.com/Nikocoro/prubas123/internal/models"
	"github.com/Nikocoro/prubas123/internal/service"
)

// Services bundles the domain services the handlers delegate to.
type Services struct {
	Auth     *service.AuthService
	Profiles *service.ProfileService
	Photos   *service.PhotoService
}

type HandlerSet struct {
	log            zerolog.Logger
	cfg            *config.AppConfig
	configErr      error
	authService    *service.AuthService
	profileService *service.ProfileService
	photoService   *service.PhotoService
	db             *pgxpool.Pool
	cache          *redis.Client
}

// NewHandlerSet wires the HTTP layer. db and cache may be nil when the
// memory driver is used or redis is disabled; configErr, when set, makes
// every endpoint except the health check answer with a configuration error.
func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, configErr error, services Services, db *pgxpool.Pool, cache *redis.Client) HandlerSet {
	return HandlerSet{
		log:            log,
		cfg:            cfg,
		configErr:      configErr,
		authService:    services.Auth,
		profileService: services.Profiles,
		photoService:   services.Photos,
		db:             db,
		cache:          cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	api := router.Group("", middleware.RequireConfigured(h.configErr))
	api.POST("/login", h.Login)

	members := api.Group("", middleware.Auth(h.authService))
	members.GET("/getProfiles", h.ListProfiles)

	admin := members.Group("", middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/addProfile", h.AddProfile)
	admin.PUT("/editProfile", h.EditProfile)
	admin.DELETE("/deleteProfile", h.DeleteProfile)
	admin.POST("/addUser", h.AddUser)
	admin.POST("/uploadPhoto", h.UploadPhoto)
}

func (h HandlerSet) respondError(c *gin.Context, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", middleware.RequestIDFrom(c)).
			Msg("request failed")
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrMissingCredentials),
		errors.Is(err, service.ErrIncompleteData),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrProfileIDRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidPhoto):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, errInvalidBody.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrProfileNotFound):
		return http.StatusNotFound, service.ErrProfileNotFound.Error()
	case errors.Is(err, service.ErrUserExists):
		return http.StatusConflict, service.ErrUserExists.Error()
	case errors.Is(err, service.ErrStorageDisabled):
		return http.StatusServiceUnavailable, service.ErrStorageDisabled.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

var errInvalidBody = errors.New("invalid request body")

type messageResponse struct {
	Message string `json:"message"`
}
