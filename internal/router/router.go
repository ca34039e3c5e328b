package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yukikurage/cse-council-api/internal/constants"
	"github.com/yukikurage/cse-council-api/internal/handlers"
	"github.com/yukikurage/cse-council-api/internal/mailer"
	"github.com/yukikurage/cse-council-api/internal/metrics"
	"github.com/yukikurage/cse-council-api/internal/middleware"
	"github.com/yukikurage/cse-council-api/internal/pdf"
	"github.com/yukikurage/cse-council-api/internal/permissions"
	"github.com/yukikurage/cse-council-api/internal/repository"
	"github.com/yukikurage/cse-council-api/internal/services"
	"gorm.io/gorm"
)

// Services groups every service the HTTP layer calls.
type Services struct {
	Auth         *services.AuthService
	Users        *services.UserService
	Meetings     *services.MeetingService
	Agenda       *services.AgendaService
	Feedbacks    *services.FeedbackService
	Minutes      *services.MinuteService
	Signatures   *services.SignatureService
	Convocations *services.ConvocationService
}

// ServiceOptions carries the settings services need beyond their repositories.
type ServiceOptions struct {
	Location         *time.Location
	OrganizationName string
	PublicURL        string
	MailConcurrency  int
	Now              func() time.Time
}

// NewServices builds the repositories and services over db.
func NewServices(db *gorm.DB, m mailer.Mailer, mx *metrics.Metrics, opts ServiceOptions) *Services {
	userRepo := repository.NewUserRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	agendaRepo := repository.NewAgendaItemRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	minuteRepo := repository.NewMinuteRepository(db)
	signatureRepo := repository.NewSignatureRepository(db)

	renderer := pdf.NewRenderer(opts.OrganizationName, opts.Location)

	return &Services{
		Auth:       services.NewAuthService(userRepo),
		Users:      services.NewUserService(userRepo),
		Meetings:   services.NewMeetingService(meetingRepo, userRepo, opts.Location),
		Agenda:     services.NewAgendaService(agendaRepo, meetingRepo),
		Feedbacks:  services.NewFeedbackService(feedbackRepo, meetingRepo, mx, opts.Now),
		Minutes:    services.NewMinuteService(minuteRepo, meetingRepo, signatureRepo, userRepo, renderer, mx),
		Signatures: services.NewSignatureService(signatureRepo, minuteRepo, userRepo, mx, opts.Now),
		Convocations: services.NewConvocationService(meetingRepo, m, renderer, mx, services.ConvocationOptions{
			PublicURL:   opts.PublicURL,
			Concurrency: opts.MailConcurrency,
			Now:         opts.Now,
		}),
	}
}

// Options configures the engine.
type Options struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	MetricsPath  string
	SessionStore sessions.Store
}

// New builds the gin engine with every route.
func New(svc *Services, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(opts.Logger, opts.Metrics))
	r.Use(sessions.Sessions(constants.SessionCookieName, opts.SessionStore))

	authHandler := handlers.NewAuthHandler(svc.Auth)
	userHandler := handlers.NewUserHandler(svc.Users)
	meetingHandler := handlers.NewMeetingHandler(svc.Meetings, svc.Agenda)
	feedbackHandler := handlers.NewFeedbackHandler(svc.Feedbacks)
	minuteHandler := handlers.NewMinuteHandler(svc.Minutes)
	signatureHandler := handlers.NewSignatureHandler(svc.Signatures)
	convocationHandler := handlers.NewConvocationHandler(svc.Convocations)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "CSE council API is running",
		})
	})

	if opts.Gatherer != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	authenticated := []gin.HandlerFunc{middleware.RequireAuth(), middleware.LoadCurrentUser(svc.Auth)}

	// API routes
	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", append(authenticated, authHandler.GetCurrentUser)...)
		}

		users := api.Group("/users")
		users.Use(authenticated...)
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeactivateUser)
		}

		meetings := api.Group("/meetings")
		meetings.Use(authenticated...)
		{
			meetings.GET("", meetingHandler.ListMeetings)
			meetings.POST("", meetingHandler.CreateMeeting)
			meetings.GET("/:id", meetingHandler.GetMeeting)
			meetings.PUT("/:id", meetingHandler.UpdateMeeting)
			meetings.DELETE("/:id", meetingHandler.DeleteMeeting)
			meetings.PUT("/:id/participants/:user_id", meetingHandler.UpdateParticipantStatus)
			meetings.GET("/:id/agenda-items", meetingHandler.ListAgendaItems)
			meetings.POST("/:id/agenda-items", meetingHandler.AddAgendaItem)
			meetings.PUT("/:id/agenda-items/order", meetingHandler.ReorderAgenda)
		}

		agenda := api.Group("/agenda-items")
		agenda.Use(authenticated...)
		{
			agenda.PUT("/:id", meetingHandler.UpdateAgendaItem)
			agenda.DELETE("/:id", meetingHandler.DeleteAgendaItem)
		}

		feedbacks := api.Group("/feedbacks")
		feedbacks.Use(authenticated...)
		{
			feedbacks.GET("", feedbackHandler.ListFeedbacks)
			feedbacks.POST("", feedbackHandler.CreateFeedback)
			feedbacks.GET("/:id", feedbackHandler.GetFeedback)
			feedbacks.PUT("/:id", feedbackHandler.UpdateFeedback)
			feedbacks.DELETE("/:id", feedbackHandler.DeleteFeedback)
		}

		minutes := api.Group("/minutes")
		minutes.Use(authenticated...)
		{
			minutes.GET("", minuteHandler.ListMinutes)
			minutes.POST("", minuteHandler.CreateMinute)
			minutes.GET("/:id", minuteHandler.GetMinute)
			minutes.PUT("/:id", minuteHandler.UpdateMinute)
			minutes.DELETE("/:id", minuteHandler.DeleteMinute)
			minutes.POST("/:id/submit", minuteHandler.SubmitMinute)
			minutes.POST("/:id/publish", minuteHandler.PublishMinute)
			minutes.GET("/:id/export", minuteHandler.ExportMinute)
		}

		signatures := api.Group("/signatures")
		signatures.Use(authenticated...)
		{
			signatures.GET("", signatureHandler.ListSignatures)
			signatures.POST("", signatureHandler.Sign)
			signatures.DELETE("/:id", signatureHandler.Unsign)
		}

		convocations := api.Group("/convocations")
		convocations.Use(authenticated...)
		convocations.Use(middleware.RequirePermission(permissions.SendConvocation))
		{
			convocations.GET("/:meeting_id/pdf", convocationHandler.DownloadPDF)
			convocations.POST("/:meeting_id/send", convocationHandler.Send)
		}
	}

	return r
}
