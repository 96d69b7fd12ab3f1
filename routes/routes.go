package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/tabcore/debate-tab/handlers"
	"github.com/tabcore/debate-tab/middleware"
)

type Handlers struct {
	Tournament *handlers.TournamentHandler
	Draw       *handlers.DrawHandler
	Room       *handlers.RoomHandler
	Ballot     *handlers.BallotHandler
	Standings  *handlers.StandingsHandler
	Break      *handlers.BreakHandler
	WebSocket  *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, jwtSecret string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	authenticate := middleware.Authenticate(jwtSecret)

	router.Route("/tournaments", func(r chi.Router) {
		// Создание турнира доступно только организаторам.
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.Authorize(middleware.RoleOrganizer))

			r.Post("/", h.Tournament.Create)
		})

		r.Route("/{tournamentID}", func(r chi.Router) {
			// Публичные маршруты для просмотра состояния турнира
			r.Get("/", h.Tournament.Get)
			r.Get("/rounds/{roundID}/draw", h.Draw.Get)
			r.Get("/rooms/{roomID}", h.Room.Get)
			r.Post("/rooms/{roomID}/advance", h.Room.Advance)
			r.Get("/rooms/{roomID}/ballots/status", h.Ballot.Status)
			r.Get("/standings", h.Standings.Get)
			r.Get("/bracket", h.Break.Bracket)
			r.Get("/ws", h.WebSocket.ServeWs)

			// Защищенные маршруты только для организаторов
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(middleware.Authorize(middleware.RoleOrganizer))

				r.Post("/teams", h.Tournament.AddTeam)
				r.Post("/teams/{teamID}/confirm", h.Tournament.ConfirmTeam)
				r.Post("/teams/{teamID}/withdraw", h.Tournament.WithdrawTeam)
				r.Post("/judges", h.Tournament.AddJudge)

				r.Post("/rounds/{roundNumber}/draw", h.Draw.Generate)
				r.Delete("/rounds/{roundID}/draw", h.Draw.Delete)
				r.Post("/rooms/{roomID}/judging", h.Room.MarkJudging)

				r.Post("/standings/export", h.Standings.Export)

				r.Post("/break", h.Break.Announce)
				r.Post("/break/quarterfinals", h.Break.Quarterfinals)
				r.Post("/break/semifinals/{priorRoundID}", h.Break.Semifinals)
				r.Post("/break/final/{priorRoundID}", h.Break.GrandFinal)
				r.Post("/complete", h.Break.Complete)
			})

			// Судьи подают бюллетени от собственного имени.
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(middleware.Authorize(middleware.RoleJudge))

				r.Post("/rooms/{roomID}/ballots", h.Ballot.Submit)
			})
		})
	})

	return router
}
