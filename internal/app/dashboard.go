package app

import (
	"html/template"
	"log"
	"net/http"

	"migrator/bot/internal/request"
	"migrator/bot/internal/roster"
)

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Migration Dashboard</title>
<style>
	body { font-family: Helvetica, Arial, sans-serif; margin: 24px; color: #1a1a1a; background: #fafafa; }
	h1 { font-size: 22px; }
	h2 { font-size: 16px; margin-top: 28px; }
	table { width: 100%; border-collapse: collapse; background: #fff; }
	th { text-align: left; border-bottom: 2px solid #333; padding: 6px 10px; font-size: 13px; }
	td { border-bottom: 1px solid #e2e2e2; padding: 6px 10px; font-size: 13px; }
	.num { text-align: right; font-variant-numeric: tabular-nums; }
	.empty { color: #888; padding: 12px 0; }
	.badge { padding: 2px 8px; border-radius: 10px; font-size: 12px; background: #eee; }
	.badge.migrate { background: #d3f3dd; color: #1a7f37; }
	.badge.denied, .badge.do-not-migrate { background: #fde2dd; color: #b42318; }
	.badge.pending, .badge.approved { background: #fff1c2; color: #946800; }
</style>
</head>
<body>
<h1>Migration Dashboard</h1>

<h2>Pending requests</h2>
{{if .Requests}}
<table>
	<tr><th>User</th><th>Status</th><th>Language</th><th>Submitted</th></tr>
	{{range .Requests}}
	<tr>
		<td>{{.Username}}</td>
		<td><span class="badge {{.Status}}">{{.Status}}</span></td>
		<td>{{.Language}}</td>
		<td>{{.SubmittedAt.Format "2006-01-02 15:04"}}</td>
	</tr>
	{{end}}
</table>
{{else}}
<div class="empty">No requests in flight.</div>
{{end}}

<h2>Roster</h2>
{{if not .RosterEnabled}}
<div class="empty">Roster database not configured.</div>
{{else if .Players}}
<table>
	<tr><th>Nickname</th><th>Discord</th><th>Kingdom</th><th class="num">Power</th><th class="num">Kill Points</th><th class="num">Deaths</th><th class="num">Points</th><th>Status</th></tr>
	{{range .Players}}
	<tr>
		<td>{{.Nickname}}</td>
		<td>{{.DiscordName}}</td>
		<td>{{.Kingdom}}</td>
		<td class="num">{{.Power}}</td>
		<td class="num">{{.KP}}</td>
		<td class="num">{{.Deaths}}</td>
		<td class="num">{{.TotalPoints}}</td>
		<td><span class="badge {{.CanMigrate}}">{{.CanMigrate}}</span></td>
	</tr>
	{{end}}
</table>
{{else}}
<div class="empty">No players on the roster yet.</div>
{{end}}
</body>
</html>`))

type dashboardView struct {
	RosterEnabled bool
	Players       []roster.Player
	Requests      []request.Pending
}

func (s *HTTPServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view := dashboardView{
		RosterEnabled: s.service.RosterEnabled(),
		Requests:      s.service.PendingRequests(r.Context()),
	}
	if view.RosterEnabled {
		players, err := s.service.ListPlayers(r.Context())
		if err != nil {
			log.Printf("dashboard: list players: %v", err)
		} else {
			view.Players = players
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := dashboardTemplate.Execute(w, view); err != nil {
		log.Printf("dashboard: render: %v", err)
	}
}
