package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"tabletennis-scoreboard/internal/history"
	"tabletennis-scoreboard/internal/hub"
	"tabletennis-scoreboard/internal/metrics"
	"tabletennis-scoreboard/internal/session"
)

type CreateMatchRequest struct {
	LeftName  string `json:"left_name"`
	RightName string `json:"right_name"`
}

type CreateMatchResponse struct {
	Code string `json:"code"`
}

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// CreateMatch starts a scoreboard session for two named players and
// returns the join code clients use on the websocket endpoint.
func CreateMatch(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateMatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		left := strings.TrimSpace(req.LeftName)
		right := strings.TrimSpace(req.RightName)
		if left == "" || right == "" {
			http.Error(w, "both player names are required", http.StatusBadRequest)
			return
		}

		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			reply := make(chan *session.Session, 1)
			h.Inbox() <- hub.GetSession{Code: c, Reply: reply}
			if <-reply == nil {
				code = c
				break
			}
			log.Debug("collision on code, regenerating")
		}

		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.CreateSession{
			Code:  code,
			State: history.NewMatchHistory(left, right),
			Reply: reply,
		}
		if <-reply == nil {
			http.Error(w, "failed to create match", http.StatusInternalServerError)
			return
		}

		metrics.MatchesCreated.Inc()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(CreateMatchResponse{Code: code})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
