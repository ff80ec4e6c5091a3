package webserver

import "html/template"

type indexEntry struct {
	Date  string
	Label string
}

type indexView struct {
	Name           string
	Entries        []indexEntry
	CanSubscribe   bool
	JustSubscribed bool
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Name}}</title>
<style>
  body { font-family: Georgia, serif; color: #1a1a1a; background: #fafaf8; margin: 0; }
  .wrap { max-width: 640px; margin: 0 auto; padding: 32px 16px; }
  h1 { font-size: 24px; margin-bottom: 4px; }
  .tagline { color: #777; margin-top: 0; }
  h2 { font-size: 15px; text-transform: uppercase; letter-spacing: 0.05em; color: #999; margin-top: 28px; }
  ul { list-style: none; padding: 0; }
  li { margin: 6px 0; }
  li a { display: block; padding: 10px 14px; background: #fff; border: 1px solid #e4e4e0; border-radius: 6px; color: #1a1a1a; text-decoration: none; }
  li a:hover { border-color: #1a6aa8; }
  form { display: flex; gap: 8px; margin: 16px 0; }
  input[type=email] { flex: 1; padding: 10px 12px; border: 1px solid #ccc; border-radius: 6px; font-size: 15px; }
  button { padding: 10px 18px; background: #1a6aa8; color: #fff; border: none; border-radius: 6px; cursor: pointer; }
  .notice { background: #e8f4e8; border: 1px solid #bfe0bf; border-radius: 6px; padding: 10px 14px; }
</style>
</head>
<body>
<div class="wrap">
<h1>{{.Name}}</h1>
<p class="tagline">Daily briefing on geopolitics, tech, and privacy. All sides. No fluff.</p>
{{- if .JustSubscribed}}
<p class="notice">You're subscribed. First digest lands tomorrow morning.</p>
{{- end}}
{{- if .CanSubscribe}}
<form method="post" action="/subscribe">
<input type="email" name="email" placeholder="you@example.com" required>
<button type="submit">Subscribe</button>
</form>
{{- end}}
<h2>Recent Digests</h2>
<ul>
{{- range .Entries}}
<li><a href="/{{.Date}}">{{.Label}}</a></li>
{{- end}}
</ul>
</div>
</body>
</html>
`))
