package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/arunjadaun2002/FlyPrep/internal/transport/ws"
	"github.com/arunjadaun2002/FlyPrep/pkg/httputil"
)

type Deps struct {
	Rooms          *Handler
	Feedback       *FeedbackHandlers
	Interview      *InterviewHandlers
	WS             *ws.Server
	AllowedOrigins []string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httputil.MiddlewareRequestID)
	r.Use(httputil.MiddlewareLogging)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// relay; the room id is the last path segment
	r.Get("/ws/room/{roomId}", d.WS.HandleWS)

	r.Get("/healthz", d.Rooms.Health)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(30 * time.Second))

		api.Get("/test", func(w http.ResponseWriter, r *http.Request) {
			httputil.JSON(w, http.StatusOK, MessageResponse{Message: "CORS is working"})
		})
		api.Get("/topics", d.Rooms.Topics)

		api.Route("/rooms", func(rm chi.Router) {
			rm.Get("/", d.Rooms.ListRooms)
			rm.Post("/create", d.Rooms.CreateRoom)
			rm.Post("/join/{roomId}", d.Rooms.JoinRoom)
			rm.Put("/participant/{roomId}/{participantId}", d.Rooms.UpdateParticipant)
			rm.Get("/{roomId}", d.Rooms.GetRoom)
		})

		if d.Feedback != nil {
			api.Post("/report-bug", d.Feedback.ReportBug)
			api.Post("/interview/schedule", d.Feedback.ScheduleInterview)
		}
		if d.Interview != nil {
			api.Post("/interview/start", d.Interview.Start)
			api.Post("/interview/analyze", d.Interview.Analyze)
			api.Post("/interview/summary", d.Interview.Summary)
		}
	})

	return r
}
