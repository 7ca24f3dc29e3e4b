package web

import "html/template"

const styleBlock = `<style>
body{background:#000;color:#0f0;font-family:monospace;padding:2rem;margin:0}
h1,h2{text-align:center;margin:2rem 0;color:#f00}
.c{background:#111;padding:1.5rem;margin:1rem 0;border-left:6px solid #f00;border-radius:8px}
a{color:#0ff;text-decoration:none}
p.center{text-align:center}
</style>`

// rankFuncs provides {{add}} for 1-based rank numbers in list templates.
var rankFuncs = template.FuncMap{"add": func(a, b int) int { return a + b }}

var homeTemplate = template.Must(template.New("home").Funcs(rankFuncs).Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>TIN FOIL TIMES</title>` + styleBlock + `</head><body>
<h1>&#128760; TIN FOIL TIMES &#128760;</h1>
<h2>Freshest Harvest</h2>
{{range .Latest}}
<div class="c"><b><a href="/theory/{{.Slug}}">{{.Title}}</a></b><br>
{{.SourceName}} &bull; {{.Score}}/100 <b>{{.RatingTier}}</b></div>
{{end}}
<h2>Current Schizo Kings</h2>
{{range $i, $t := .Top}}
<div class="c">#{{add $i 1}} <b><a href="/theory/{{$t.Slug}}">{{$t.Title}}</a></b> &mdash; {{$t.Score}}/100 {{$t.RatingTier}}</div>
{{end}}
<p class="center"><a href="/hall-of-fame">&rarr; ENTER HALL OF FAME &larr;</a></p>
</body></html>`))

var hallTemplate = template.Must(template.New("hall").Funcs(rankFuncs).Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Hall of Eternal Paranoia</title>` + styleBlock + `</head><body>
<h1>&#127942; HALL OF ETERNAL PARANOIA &#127942;</h1>
{{range $i, $t := .Theories}}
<div class="c">#{{add $i 1}} <b><a href="/theory/{{$t.Slug}}">{{$t.Title}}</a></b><br>
{{$t.SourceName}} &bull; {{$t.Score}}/100 <b>{{$t.RatingTier}}</b></div>
{{end}}
<p class="center"><a href="/">&larr; back</a></p>
</body></html>`))

var detailTemplate = template.Must(template.New("detail").Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Theory.Title}}</title>` + styleBlock + `</head><body>
<h1>{{.Theory.Title}}</h1>
<div class="c">
<p>{{if .Theory.Body}}{{.Theory.Body}}{{else}}(no text recovered){{end}}</p>
<p>{{.Theory.SourceName}} &bull; {{.Theory.Score}}/100 <b>{{.Theory.RatingTier}}</b></p>
<p><a href="{{.Theory.SourceURL}}">source</a> &bull; <a href="{{.Theory.ArchiveURL}}">archive</a></p>
<p>added {{.Theory.CreatedAt.Format "2006-01-02 15:04"}}</p>
</div>
<p class="center"><a href="/">&larr; back</a></p>
</body></html>`))

var emptyTemplate = template.Must(template.New("empty").Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8">
<title>TIN FOIL TIMES</title>` + styleBlock + `</head><body>
<h1>&#128760; TIN FOIL TIMES &#128760;</h1>
<div class="c">{{if .Harvesting}}Harvest in progress. The truth is being gathered; refresh shortly.{{else}}Nothing harvested yet. POST /refresh to wake the harvesters.{{end}}</div>
</body></html>`))

var unavailableTemplate = template.Must(template.New("unavailable").Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8">
<title>TIN FOIL TIMES</title>` + styleBlock + `</head><body>
<h1>TEMPORARILY UNAVAILABLE</h1>
<div class="c">The archive is unreachable. They got to it first. Try again in a minute.</div>
</body></html>`))
