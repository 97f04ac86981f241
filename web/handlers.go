package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"rocketbet/models"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps domain errors onto HTTP statuses: validation
// and balance failures are the caller's fault, missing entities are
// 404, lost races are conflicts, anything else is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, models.ErrInsufficientCredits):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrRoundNotFound),
		errors.Is(err, models.ErrBetNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrDuplicatePendingBet),
		errors.Is(err, models.ErrResultAlreadyPublished),
		errors.Is(err, models.ErrSettlementConflict),
		errors.Is(err, models.ErrNameTaken):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.WithError(err).Error("Request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func clientIP(r *http.Request) string {
	// middleware.RealIP already rewrote RemoteAddr from the forwarding
	// headers when present.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rawChoice accepts a choice as either a JSON number or a string, so
// {"choice": 3} and {"choice": "3"} name the same rocket.
type rawChoice struct {
	value string
}

func (c *rawChoice) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.value = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		c.value = n.String()
		return nil
	}
	return errors.New("choice must be a string or a number")
}

func userView(u *models.User) map[string]any {
	return map[string]any{
		"id":            u.ID,
		"name":          u.Name,
		"credits":       u.Credits,
		"currentRound":  u.CurrentRound,
		"totalWinnings": u.TotalWinnings,
	}
}

func betView(b *models.Bet) map[string]any {
	return map[string]any{
		"id":        b.ID,
		"round":     b.Round,
		"subRound":  b.SubRound,
		"amount":    b.Amount,
		"choice":    b.Choice,
		"status":    b.Status,
		"winAmount": b.WinAmount,
		"placedAt":  b.CreatedAt,
	}
}

// POST /api/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.Login(r.Context(), req.Name, clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	session := s.sessions.CreateUser(user.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"token": session.Token,
		"user":  userView(user),
	})
}

// POST /api/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)

	if err := s.users.Logout(r.Context(), session.UserID); err != nil {
		writeServiceError(w, err)
		return
	}

	s.sessions.DeleteForUser(session.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// POST /api/admin/login
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.cfg.AdminPassword)) != 1 {
		writeError(w, http.StatusUnauthorized, "wrong password")
		return
	}

	session := s.sessions.CreateAdmin()
	writeJSON(w, http.StatusOK, map[string]string{"token": session.Token})
}

// GET /api/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetUser(r.Context(), sessionFrom(r).UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userView(user))
}

// POST /api/me/advance
func (s *Server) handleAdvanceRound(w http.ResponseWriter, r *http.Request) {
	round, err := s.users.AdvanceRound(r.Context(), sessionFrom(r).UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"currentRound": round})
}

// GET /api/rounds
func (s *Server) handleGetRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := s.rounds.GetRounds(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]map[string]any, 0, len(rounds))
	for _, round := range rounds {
		views = append(views, map[string]any{
			"number":      round.Number,
			"name":        round.Name,
			"description": round.Description,
			"minBet":      round.MinBet,
			"maxBet":      round.MaxBet,
			"subRounds":   round.SubRounds,
			"isCompleted": round.IsCompleted,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// GET /api/rounds/{round}/results
func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	round, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid round number")
		return
	}

	results, err := s.rounds.GetResults(r.Context(), round)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]map[string]any, 0, len(results))
	for _, result := range results {
		views = append(views, map[string]any{
			"round":       result.Round,
			"subRound":    result.SubRound,
			"answer":      result.Answer,
			"publishedAt": result.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// GET /api/leaderboard
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := s.stats.Leaderboard(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// POST /api/bets
func (s *Server) handlePlaceBet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Round    int       `json:"round"`
		SubRound int       `json:"subRound"`
		Amount   int64     `json:"amount"`
		Choice   rawChoice `json:"choice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SubRound == 0 {
		req.SubRound = 1
	}

	choice, err := models.ParseChoice(req.Round, req.Choice.value)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	bet, err := s.betting.PlaceBet(r.Context(), sessionFrom(r).UserID, req.Round, req.Amount, choice, req.SubRound)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, betView(bet))
}

// GET /api/bets
func (s *Server) handleMyBets(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	bets, err := s.betting.GetUserBets(r.Context(), sessionFrom(r).UserID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]map[string]any, 0, len(bets))
	for _, bet := range bets {
		views = append(views, betView(bet))
	}
	writeJSON(w, http.StatusOK, views)
}

// POST /api/admin/rounds/{round}/settle
func (s *Server) handleSettleRound(w http.ResponseWriter, r *http.Request) {
	round, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid round number")
		return
	}

	var req struct {
		Answer   rawChoice `json:"answer"`
		SubRound int       `json:"subRound"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SubRound == 0 {
		req.SubRound = 1
	}

	result, err := s.settlement.SettleRound(r.Context(), round, req.Answer.value, req.SubRound)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// POST /api/admin/rounds/{round}/settle-all
//
// Settles every sub-round of a round in one request: one answer per
// sub-round, applied as sequential settlement calls. Used for the dog
// fight round, where the admin enters all 20 fight winners at once.
func (s *Server) handleSettleAll(w http.ResponseWriter, r *http.Request) {
	round, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid round number")
		return
	}

	var req struct {
		Answers []rawChoice `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	roundDef, err := s.rounds.GetRound(r.Context(), round)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if len(req.Answers) != roundDef.SubRounds {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("expected %d answers, got %d", roundDef.SubRounds, len(req.Answers)))
		return
	}

	results := make([]*models.SettlementResult, 0, len(req.Answers))
	for i, answer := range req.Answers {
		result, err := s.settlement.SettleRound(r.Context(), round, answer.value, i+1)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		results = append(results, result)
	}
	writeJSON(w, http.StatusOK, results)
}

// GET /api/admin/users
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]map[string]any, 0, len(users))
	for _, user := range users {
		view := userView(user)
		view["isActive"] = user.IsActive
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

// POST /api/admin/rounds/{round}/results
func (s *Server) handlePublishResult(w http.ResponseWriter, r *http.Request) {
	round, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid round number")
		return
	}

	var req struct {
		Answer   rawChoice `json:"answer"`
		SubRound int       `json:"subRound"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SubRound == 0 {
		req.SubRound = 1
	}

	if err := s.rounds.PublishResult(r.Context(), round, req.Answer.value, req.SubRound); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "published"})
}

// GET /api/admin/rounds/{round}/totals
func (s *Server) handleRoundTotals(w http.ResponseWriter, r *http.Request) {
	round, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid round number")
		return
	}
	subRound, _ := strconv.Atoi(r.URL.Query().Get("subRound"))
	if subRound == 0 {
		subRound = 1
	}

	totals, err := s.stats.RoundTotals(r.Context(), round, subRound)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// PUT /api/admin/users/{id}/credits
func (s *Server) handleSetCredits(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		Credits int64 `json:"credits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.SetCredits(r.Context(), userID, req.Credits)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userView(user))
}

// GET /api/admin/overview
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.stats.Overview(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// POST /api/admin/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.game.Reset(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
