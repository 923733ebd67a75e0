package export

import "html/template"

var rosterTemplate = template.Must(template.New("roster").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
	body { font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; font-size: 12px; }
	h1 { font-size: 20px; margin-bottom: 2px; }
	.meta { color: #666; margin-bottom: 16px; }
	table { width: 100%; border-collapse: collapse; }
	th { text-align: left; border-bottom: 2px solid #333; padding: 6px 8px; }
	td { border-bottom: 1px solid #ddd; padding: 6px 8px; }
	tr:nth-child(even) td { background: #f7f7f7; }
	.num { text-align: right; font-variant-numeric: tabular-nums; }
	.status-migrate { color: #1a7f37; font-weight: bold; }
	.status-denied, .status-do-not-migrate { color: #b42318; font-weight: bold; }
	.status-pending { color: #946800; }
	.summary { margin-top: 20px; color: #444; }
</style>
</head>
<body>
<h1>Migration Roster</h1>
<div class="meta">Generated {{.GeneratedAt}}</div>
<table>
	<thead>
		<tr>
			<th>Nickname</th>
			<th>Discord</th>
			<th>Kingdom</th>
			<th class="num">Power</th>
			<th class="num">Kill Points</th>
			<th class="num">Deaths</th>
			<th class="num">Points</th>
			<th>Status</th>
		</tr>
	</thead>
	<tbody>
	{{range .Players}}
		<tr>
			<td>{{.Nickname}}</td>
			<td>{{.DiscordName}}</td>
			<td>{{.Kingdom}}</td>
			<td class="num">{{.Power}}</td>
			<td class="num">{{.KP}}</td>
			<td class="num">{{.Deaths}}</td>
			<td class="num">{{.TotalPoints}}</td>
			<td class="status-{{.CanMigrate}}">{{.CanMigrate}}</td>
		</tr>
	{{end}}
	</tbody>
</table>
<div class="summary">{{.Total}} players · avg power {{printf "%.0f" .AveragePower}} · avg kill points {{printf "%.0f" .AverageKP}}</div>
</body>
</html>`))
