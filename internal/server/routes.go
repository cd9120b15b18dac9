package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/animequiz/internal/game"
)

func addRoutes(r chi.Router, logger *slog.Logger, svc *game.Service, broker *Broker) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("AnimeQuiz API", "/openapi.json", "/docs"))

	r.Route("/api/players/{userID}", func(r chi.Router) {
		r.Use(userIDMiddleware)
		r.Put("/", handlePutPlayer(logger, svc))
		r.Get("/", handleProfile(logger, svc))
		r.Post("/rounds", handleOpenRound(logger, svc))
		r.Post("/daily", handleClaimDaily(logger, svc, broker))
		r.Get("/achievements", handleAchievements(logger, svc))
		r.Get("/collection", handleCollection(logger, svc))
		r.Get("/events", handleEvents(broker))
	})

	r.Post("/api/rounds/{roundID}/answer", handleAnswer(logger, svc, broker))
	r.Get("/api/leaderboard", handleLeaderboard(logger, svc))
}
