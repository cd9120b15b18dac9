package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

type userPath struct {
	UserID int64 `path:"userID"`
}

type roundPath struct {
	RoundID string `path:"roundID"`
}

type putPlayerInput struct {
	userPath
	PlayerRequest
}

type openRoundInput struct {
	userPath
	OpenRoundRequest
}

type answerInput struct {
	roundPath
	AnswerRequest
}

type collectionInput struct {
	userPath
	Page int `query:"page" minimum:"1"`
}

type leaderboardInput struct {
	UserID int64 `query:"userId"`
	Limit  int   `query:"limit" minimum:"1" maximum:"50"`
}

type healthStatus struct {
	Status string `json:"status" enum:"ok,error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "AnimeQuiz API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Anime guessing rounds, player progression, achievements and leaderboard.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Reports the status of the database and, when configured, the leaderboard cache.")
	getHealthz.AddRespStructure(map[string]healthStatus{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(map[string]healthStatus{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// PUT /api/players/{userID}
	putPlayer, _ := r.NewOperationContext(http.MethodPut, "/api/players/{userID}")
	putPlayer.SetSummary("Register player")
	putPlayer.SetDescription("Creates the player on first contact and refreshes the display names otherwise.")
	putPlayer.AddReqStructure(putPlayerInput{})
	putPlayer.AddRespStructure(PlayerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	putPlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(putPlayer)

	// GET /api/players/{userID}
	getProfile, _ := r.NewOperationContext(http.MethodGet, "/api/players/{userID}")
	getProfile.SetSummary("Player profile")
	getProfile.SetDescription("Returns stats, rank, leaderboard position and collection progress.")
	getProfile.AddReqStructure(userPath{})
	getProfile.AddRespStructure(ProfileResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getProfile.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getProfile)

	// POST /api/players/{userID}/rounds
	postRound, _ := r.NewOperationContext(http.MethodPost, "/api/players/{userID}/rounds")
	postRound.SetSummary("Open round")
	postRound.SetDescription("Starts a new question. The correct option is never part of the response.")
	postRound.AddReqStructure(openRoundInput{})
	postRound.AddRespStructure(RoundResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postRound.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postRound.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postRound)

	// POST /api/rounds/{roundID}/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/rounds/{roundID}/answer")
	postAnswer.SetSummary("Answer round")
	postAnswer.SetDescription("Resolves the round exactly once and applies XP, streak, collection and achievements.")
	postAnswer.AddReqStructure(answerInput{})
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(postAnswer)

	// POST /api/players/{userID}/daily
	postDaily, _ := r.NewOperationContext(http.MethodPost, "/api/players/{userID}/daily")
	postDaily.SetSummary("Claim daily bonus")
	postDaily.SetDescription("Grants the daily XP bonus once per calendar day in the configured timezone.")
	postDaily.AddReqStructure(userPath{})
	postDaily.AddRespStructure(DailyResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postDaily.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postDaily)

	// GET /api/players/{userID}/achievements
	getAchievements, _ := r.NewOperationContext(http.MethodGet, "/api/players/{userID}/achievements")
	getAchievements.SetSummary("List achievements")
	getAchievements.SetDescription("Returns every achievement with the player's unlock state.")
	getAchievements.AddReqStructure(userPath{})
	getAchievements.AddRespStructure([]AchievementResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getAchievements)

	// GET /api/players/{userID}/collection
	getCollection, _ := r.NewOperationContext(http.MethodGet, "/api/players/{userID}/collection")
	getCollection.SetSummary("Collection page")
	getCollection.SetDescription("Pages through the catalog. Titles not yet guessed are hidden.")
	getCollection.AddReqStructure(collectionInput{})
	getCollection.AddRespStructure(CollectionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getCollection.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(getCollection)

	// GET /api/players/{userID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/players/{userID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events with round results, unlocked achievements and daily claims.")
	getEvents.AddReqStructure(userPath{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/leaderboard
	getLeaderboard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getLeaderboard.SetSummary("Leaderboard")
	getLeaderboard.SetDescription("Top players by XP. Pass userId to also get that player's position.")
	getLeaderboard.AddReqStructure(leaderboardInput{})
	getLeaderboard.AddRespStructure(LeaderboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getLeaderboard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(getLeaderboard)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
