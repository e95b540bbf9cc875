package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/fardannozami/leetcode-tracker/internal/app/usecase"
	"github.com/fardannozami/leetcode-tracker/internal/calendar"
	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

type Registrar interface {
	Execute(ctx context.Context, in usecase.RegisterUserInput) (*domain.User, error)
}

type AccountManager interface {
	Update(ctx context.Context, in usecase.UpdateAccountInput) (*domain.User, error)
	Delete(ctx context.Context, username string) error
}

type Refresher interface {
	Execute(ctx context.Context, ip, username string) (*usecase.RefreshResult, error)
}

type BatchUpdater interface {
	Execute(ctx context.Context) (*usecase.UpdateReport, error)
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	Signup      Registrar
	Accounts    AccountManager
	Stats       usecase.StatsQuery
	Refresh     Refresher
	Leaderboard usecase.LeaderboardQuery
	Batch       BatchUpdater
	DB          Pinger
	Calendar    *calendar.Calendar
	CronSecret  string
	Log         zerolog.Logger
}

type scoreSystem struct {
	Easy    int    `json:"easy"`
	Medium  int    `json:"medium"`
	Hard    int    `json:"hard"`
	Formula string `json:"formula"`
}

type leaderboardDate struct {
	Day         string `json:"day"`
	DisplayDate string `json:"displayDate"`
	Description string `json:"description"`
}

type leaderboardResponse struct {
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
	Timestamp   time.Time                 `json:"timestamp"`
	Date        leaderboardDate           `json:"date"`
	ScoreSystem scoreSystem               `json:"scoreSystem"`
}

type userResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	IsPublic    bool   `json:"isPublic"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, IsPublic: u.IsPublic}
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var in usecase.RegisterUserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := h.Signup.Execute(r.Context(), in)
	if err != nil {
		writeDomainError(w, h.Log, err, h.Calendar.Now())
		return
	}
	writeJSON(w, h.Log, http.StatusCreated, map[string]any{
		"success": true,
		"user":    toUserResponse(user),
	})
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	var in usecase.UpdateAccountInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := h.Accounts.Update(r.Context(), in)
	if err != nil {
		writeDomainError(w, h.Log, err, h.Calendar.Now())
		return
	}
	writeJSON(w, h.Log, http.StatusOK, map[string]any{
		"success": true,
		"user":    toUserResponse(user),
	})
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.Accounts.Delete(r.Context(), in.Username); err != nil {
		writeDomainError(w, h.Log, err, h.Calendar.Now())
		return
	}
	writeJSON(w, h.Log, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	view, err := h.Stats.Execute(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeDomainError(w, h.Log, err, h.Calendar.Now())
		return
	}
	writeJSON(w, h.Log, http.StatusOK, view)
}

// refresh answers 200 when new progress was stored and 429 when the counts were
// unchanged.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	res, err := h.Refresh.Execute(r.Context(), clientIP(r), username)
	if err != nil {
		writeDomainError(w, h.Log, err, h.Calendar.Now())
		return
	}

	if res.Outcome == usecase.RefreshUnchanged {
		writeJSON(w, h.Log, http.StatusTooManyRequests, ErrorResponse{
			Error:        http.StatusText(http.StatusTooManyRequests),
			Code:         http.StatusTooManyRequests,
			Message:      "Stats unchanged. Refresh banned for 5 minutes.",
			BanExpiresAt: res.BanExpiresAt,
		})
		return
	}
	writeJSON(w, h.Log, http.StatusOK, map[string]any{
		"success": true,
		"message": "Stats updated successfully",
		"stats":   res.Counts,
	})
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	entries, err := h.Leaderboard.Execute(r.Context(), day)
	if err != nil {
		writeDomainError(w, h.Log, err, h.Calendar.Now())
		return
	}
	if key, err := h.Calendar.ResolveDay(day); err == nil {
		day = key
	}

	display := day
	if t, err := h.Calendar.ParseDay(day); err == nil {
		display = t.Format("Monday, January 2, 2006")
	}

	writeJSON(w, h.Log, http.StatusOK, leaderboardResponse{
		Leaderboard: entries,
		Timestamp:   h.Calendar.Now().UTC(),
		Date: leaderboardDate{
			Day:         day,
			DisplayDate: display,
			Description: "Problems solved since yesterday's update",
		},
		ScoreSystem: scoreSystem{
			Easy:    domain.EasyWeight,
			Medium:  domain.MediumWeight,
			Hard:    domain.HardWeight,
			Formula: "2×Easy + 3×Medium + 4×Hard",
		},
	})
}

func (h *Handler) cronUpdate(w http.ResponseWriter, r *http.Request) {
	if h.CronSecret != "" {
		want := "Bearer " + h.CronSecret
		got := r.Header.Get("Authorization")
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			writeError(w, h.Log, http.StatusUnauthorized, "")
			return
		}
	}

	report, err := h.Batch.Execute(r.Context())
	if err != nil {
		writeDomainError(w, h.Log, err, h.Calendar.Now())
		return
	}
	writeJSON(w, h.Log, http.StatusOK, map[string]any{
		"success": true,
		"message": "Daily update completed",
		"results": report,
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code, message := "UP", http.StatusOK, "Service is healthy"
	if err := h.DB.PingContext(ctx); err != nil {
		status, code, message = "DOWN", http.StatusServiceUnavailable, "database unavailable: "+err.Error()
	}
	writeJSON(w, h.Log, code, map[string]any{
		"status":    status,
		"message":   message,
		"timestamp": h.Calendar.Now().UTC().Format(time.RFC3339),
	})
}

// clientIP prefers the first X-Forwarded-For hop, then the connection address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
