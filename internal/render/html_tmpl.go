package render

const tmplMain = `
{{define "main"}}<div id="jobdash-main">
<div class="toolbar"><span id="task-count">{{.Page.CountText}}</span>{{if not .Page.RefreshedAt.IsZero}} <span class="dim">updated {{fmtTime .Page.RefreshedAt}}</span>{{end}}</div>
{{if .Page.Cards}}<div id="overview" class="cards">
{{range .Page.Cards}}<div class="card status-card {{.Class}}"><div class="val">{{.Count}}</div><div class="lbl">{{.Label}}</div></div>
{{end}}</div>
{{end}}<table id="task-table">
<thead><tr><th></th><th>Type</th><th>Status</th><th>Last run</th><th>Payload</th><th>Runs</th></tr></thead>
<tbody id="task-body">
{{if .Page.Error}}<tr><td colspan="6" class="load-error">{{.Page.Error}}</td></tr>
{{else}}{{range .Page.Groups}}{{$key := .Key}}<tr class="group-header" id="{{.Key}}-header">
<td colspan="6"><div class="group-line"><div><strong>{{.Name}}</strong>{{range .Badges}} <span class="status-badge {{.Class}}">{{.Label}} ({{.Count}})</span>{{end}}</div>
{{if $.Live}}<button type="button" data-on-click="@post('/groups/{{.Key}}/toggle')">{{.Glyph}}</button>{{else}}<span class="glyph">{{.Glyph}}</span>{{end}}</div></td>
</tr>
{{range .Rows}}<tr class="{{$key}}"{{if .Hidden}} style="display:none"{{end}}>
<td></td>
<td>{{.Type}}</td>
<td><span class="status {{.StatusClass}}">{{.StatusLabel}}</span></td>
<td>{{.LastRun}}</td>
<td><pre>{{.Payload}}</pre>{{if .Message}}<div class="error-message">⚠️ {{.Message}}</div>{{end}}</td>
<td>{{.ExecutionCount}}</td>
</tr>
{{end}}{{end}}{{end}}</tbody>
</table>
</div>{{end}}
`

const tmplDocument = `
{{define "document"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Title}}</title>
<style>
*{box-sizing:border-box}
body{font-family:system-ui,-apple-system,sans-serif;margin:0;background:#f7f7f7;color:#333;font-size:14px}
main{padding:16px}
.filter-bar{margin-bottom:1rem;display:flex;justify-content:space-between;align-items:center}
.filter-bar input{padding:.5rem;width:300px;font-size:1rem}
.toolbar{margin-bottom:8px;font-weight:600}
.dim{color:#777;font-weight:400}
.cards{display:flex;gap:12px;flex-wrap:wrap;margin-bottom:16px}
.card{background:#fff;border:1px solid #ddd;border-radius:6px;padding:10px 14px;min-width:110px}
.card .val{font-size:20px;font-weight:700}
.card .lbl{font-size:12px;color:#777}
table{width:100%;border-collapse:collapse;background:#fff}
th{text-align:left;padding:6px 10px;border-bottom:1px solid #ddd;font-size:12px;color:#777}
td{padding:5px 10px;border-bottom:1px solid #eee;vertical-align:top}
.group-header td{background:#f0f0f0}
.group-line{display:flex;justify-content:space-between;align-items:center}
.status-badge{display:inline-block;padding:1px 6px;border-radius:10px;font-size:11px;background:#eee;margin-left:4px}
.status-badge.failed,.status.failed{color:#a94442}
.status-badge.success,.status.success{color:#3c763d}
.error-message{color:#a94442;margin-top:4px}
.load-error{color:red}
pre{margin:0;white-space:pre-wrap;font-size:12px}
</style>
{{if .Live}}<script type="module" src="{{.DatastarURL}}"></script>{{end}}
</head>
<body>
<main{{if .Live}} data-signals="{{.Signals}}"{{end}}>
{{if .Live}}<div class="filter-bar">
<input id="filter-input" type="text" placeholder="Filter by name or type..." data-bind-filter data-on-input__debounce.300ms="@post('/filter')">
</div>
<div data-on-load="@get('/events')"></div>
{{end}}{{template "main" .}}
</main>
</body>
</html>{{end}}
`
