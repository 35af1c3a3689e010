package api

import (
	"slices"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/urnby/campbot/urnby/format"
)

type dashboardResponse struct {
	Session          string        `json:"session,omitempty"`
	SessionStart     *time.Time    `json:"session_start,omitempty"`
	Paused           bool          `json:"paused"`
	CountdownKnown   bool          `json:"countdown_known"`
	CountdownMinutes int64         `json:"countdown_minutes"`
	CampOpen         bool          `json:"camp_open"`
	Actives          []activeEntry `json:"actives"`
	Queue            []queueEntry  `json:"queue"`
	Leaders          []leaderEntry `json:"leaders"`
}

type activeEntry struct {
	Name         string  `json:"name"`
	Hours        float64 `json:"hours"`
	SessionHours float64 `json:"session_hours"`
}

type queueEntry struct {
	UserID      string `json:"user_id,omitempty"`
	Name        string `json:"name"`
	Since       int64  `json:"since,omitempty"`
	WaitMinutes int64  `json:"wait_minutes"`
}

type leaderEntry struct {
	Rank  int     `json:"rank"`
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

func newDashboardResponse(v format.View) dashboardResponse {
	res := dashboardResponse{
		Session:          v.Session,
		Paused:           v.Paused,
		CountdownKnown:   v.CountdownKnown,
		CountdownMinutes: v.CountdownMinutes,
		CampOpen:         v.CampOpen,
		Actives:          make([]activeEntry, 0, len(v.Actives)),
		Queue:            make([]queueEntry, 0, len(v.Queue)),
		Leaders:          make([]leaderEntry, 0, len(v.Leaders)),
	}
	if v.Session != "" && !v.SessionStart.IsZero() {
		start := v.SessionStart
		res.SessionStart = &start
	}
	for _, a := range v.Actives {
		res.Actives = append(res.Actives, activeEntry{Name: a.Name, Hours: a.Hours, SessionHours: a.SessionHours})
	}
	for _, q := range v.Queue {
		res.Queue = append(res.Queue, queueEntry{Name: q.Name, WaitMinutes: q.WaitMinutes})
	}
	for i, l := range v.Leaders {
		res.Leaders = append(res.Leaders, leaderEntry{Rank: i + 1, Name: l.Name, Hours: l.Hours})
	}
	return res
}

func (s *Server) health(c *fiber.Ctx) error {
	return sendSuccess(c, fiber.Map{
		"status":  "healthy",
		"version": s.version,
		"commit":  s.commit,
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
	}, "Health check successful")
}

// withGuild validates :id and rejects guilds without a config.
func (s *Server) withGuild(h func(c *fiber.Ctx, guildID snowflake.ID) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := snowflake.Parse(c.Params("id"))
		if err != nil || id == 0 {
			return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "guild id must be a snowflake")
		}
		guilds, err := s.guilds.Guilds()
		if err != nil {
			return sendError(c, fiber.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to read guild configuration")
		}
		if !slices.Contains(guilds, id) {
			return sendError(c, fiber.StatusNotFound, "NOT_FOUND", "guild is not configured")
		}
		return h(c, id)
	}
}

func (s *Server) dashboard(c *fiber.Ctx, guildID snowflake.ID) error {
	view, err := s.snapshots.Snapshot(c.UserContext(), guildID)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to compute dashboard")
	}
	return sendSuccess(c, newDashboardResponse(view), "")
}

func (s *Server) queue(c *fiber.Ctx, guildID snowflake.ID) error {
	entries, err := s.queues.List(c.UserContext(), guildID)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to read queue")
	}
	out := make([]queueEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, queueEntry{
			UserID:      e.UserID,
			Name:        e.UserName,
			Since:       e.InTimestamp,
			WaitMinutes: s.queues.WaitMinutes(e),
		})
	}
	return sendSuccess(c, out, "")
}
