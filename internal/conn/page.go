package conn

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/minisql/minisql/pkg"
)

var page_template = template.Must(template.New("page").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<title>minisql shell</title>
	<style>
		body { font-family: Arial, sans-serif; margin: 2rem; display: grid; gap: 2rem; grid-template-columns: 2fr 1fr; }
		main { grid-column: 1; }
		aside { grid-column: 2; }
		textarea { width: 100%; height: 8rem; }
		pre { background: #f0f0f0; padding: 1rem; white-space: pre-wrap; }
		.schema-tree ul { list-style: none; padding-left: 1rem; }
		.schema-tree li { margin: 0.25rem 0; }
		.schema-tree strong { color: #1f5aa6; }
		.schema-tree .table-name { font-weight: 600; }
		.db-switcher { display: flex; gap: 0.5rem; align-items: center; margin-bottom: 1rem; }
		.db-switcher select { flex: 1; }
		.log-panel pre { max-height: 18rem; overflow-y: auto; }
		.log-panel { border: 1px solid #e0e0e0; padding: 1rem; border-radius: 0.5rem; background: #fafafa; }
	</style>
</head>
<body>
	<main>
		<h1>minisql shell</h1>
		<form method="POST">
			<textarea name="query" placeholder="SELECT * FROM users;">{{.Query}}</textarea>
			<br />
			<button type="submit">Run</button>
		</form>
		<h2>Result</h2>
		<pre>{{.Result}}</pre>
	</main>
	<aside>
		<h2>Databases</h2>
		<p>Active: <strong>{{.Active}}</strong></p>
		<form method="POST" class="db-switcher">
			<label for="use_database">Switch</label>
			<select name="use_database" id="use_database">
				{{range .Databases}}<option value="{{.}}"{{if eq . $.Active}} selected{{end}}>{{.}}</option>{{end}}
			</select>
			<button type="submit">Use</button>
		</form>
		<div class="schema-tree">
			{{if .Schema}}<ul>
			{{range $db, $tables := .Schema}}<li><strong>{{$db}}</strong>
				{{if $tables}}<ul>
				{{range $name, $info := $tables}}<li>
					<span class="table-name">{{$name}}</span>
					<br /><small>cols: {{if $info.Columns}}{{join $info.Columns ", "}}{{else}}(no columns){{end}}</small>
					<br /><small>rows: {{$info.RowCount}}, idx: {{if $info.Indexes}}{{join $info.Indexes ", "}}{{else}}none{{end}}</small>
				</li>{{end}}
				</ul>{{end}}
			</li>{{end}}
			</ul>{{else}}<p>No databases yet.</p>{{end}}
		</div>
		<section class="log-panel">
			<h2>Pending log</h2>
			{{if .LogLines}}<pre>{{join .LogLines "\n"}}</pre>{{else}}<p>No pending log entries.</p>{{end}}
		</section>
	</aside>
</body>
</html>
`))

type pageData struct {
	Query     string
	Result    string
	Active    string
	Databases []string
	Schema    map[string]map[string]tableView
	LogLines  []string
}

type tableView struct {
	Columns  []string
	RowCount int
	Indexes  []string
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		s.renderPage(w, "", "")
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var result string
	if use_db := r.PostFormValue("use_database"); use_db != "" {
		result = strings.Join(s.engine.Execute("USE "+use_db+";"), "\n")
	}
	query := r.PostFormValue("query")
	if query != "" {
		result = strings.Join(s.engine.Execute(query), "\n")
	}
	s.renderPage(w, query, result)
}

func (s *Server) renderPage(w http.ResponseWriter, query, result string) {
	if result == "" {
		result = "(no output)"
	}
	data := pageData{
		Query:     query,
		Result:    result,
		Active:    s.engine.ActiveDatabase(),
		Databases: s.engine.Databases(),
		Schema:    map[string]map[string]tableView{},
		LogLines:  s.logLines(),
	}
	for db, tables := range s.engine.Describe() {
		view := map[string]tableView{}
		for name, info := range tables {
			view[name] = tableView{Columns: info.Columns, RowCount: info.RowCount, Indexes: info.Indexes}
		}
		data.Schema[db] = view
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page_template.Execute(w, data); err != nil {
		pkg.ErrorLog("rendering page", err)
	}
}

// logLines renders each pending commit-log entry as indented JSON for
// the log panel.
func (s *Server) logLines() []string {
	lines := []string{}
	for _, entry := range s.engine.PendingEntries() {
		buf, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			pkg.ErrorLog("marshalling log entry", err)
			continue
		}
		lines = append(lines, string(buf))
	}
	return lines
}
