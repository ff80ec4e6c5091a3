package render

// digestTemplate is the full email/browser document. Styling is inlined
// and table-free so it survives email clients.
const digestTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Name}} — {{.Date}}</title>
<style>
  body { font-family: Georgia, serif; color: #1a1a1a; background: #fafaf8; margin: 0; padding: 0; }
  .wrap { max-width: 640px; margin: 0 auto; padding: 24px 16px; }
  h1 { font-size: 22px; margin-bottom: 2px; }
  .date { color: #777; font-size: 14px; margin-top: 0; }
  h2 { font-size: 17px; border-bottom: 2px solid #1a1a1a; padding-bottom: 4px; margin-top: 28px; }
  h3 { font-size: 16px; margin-bottom: 4px; }
  .story { margin-bottom: 18px; }
  .why { color: #555; font-style: italic; margin: 4px 0; }
  .sources { font-size: 13px; color: #777; }
  .sources a { color: #1a6aa8; }
  .varies { font-size: 13px; color: #555; margin: 4px 0 0 12px; }
  .region-summary { margin: 6px 0 10px; }
  .signal { margin: 3px 0; font-size: 14px; }
  .signal .sources { display: inline; }
  .footer { margin-top: 32px; padding-top: 12px; border-top: 1px solid #ddd; font-size: 13px; color: #777; }
  .footer a { color: #1a6aa8; }
</style>
</head>
<body>
<div class="wrap">
<h1>{{.Name}}</h1>
<p class="date">{{.Date}}</p>
{{- if .MustKnow}}
<h2>Must know</h2>
{{- range .MustKnow}}
{{template "story" .}}
{{- end}}
{{- end}}
{{- if .ShouldKnow}}
<h2>Should know</h2>
{{- range .ShouldKnow}}
{{template "story" .}}
{{- end}}
{{- end}}
{{- range .Regions}}
<h2>{{.Title}}</h2>
{{- if .Summary}}
<p class="region-summary">{{.Summary}}</p>
{{- end}}
{{- range .Signals}}
<p class="signal">{{.Headline}} <span class="sources">{{template "source" .Source}}</span></p>
{{- end}}
{{- end}}
<div class="footer">
{{- if .Feedback}}
{{.Feedback}}
{{- end}}
{{- if .BrowserURL}}
<p><a href="{{.BrowserURL}}">View in browser</a></p>
{{- end}}
</div>
</div>
</body>
</html>
{{- define "story"}}
<div class="story">
<h3>{{.Headline}}</h3>
<p>{{.Summary}}</p>
{{- if .WhyItMatters}}
<p class="why">Why it matters: {{.WhyItMatters}}</p>
{{- end}}
<p class="sources">
{{- range $i, $s := .Sources}}{{if $i}} &middot; {{end}}{{template "source" $s}}{{end -}}
</p>
{{- range .ReportingVaries}}
<p class="varies">{{.Source}} ({{.Bias}}): {{.Angle}}</p>
{{- end}}
</div>
{{- end}}
{{- define "source"}}
{{- if .Linked}}<a href="{{.URL}}">{{.Name}}</a>{{else}}{{.Name}}{{end}}{{if .Bias}} ({{.Bias}}){{end}}
{{- end}}`
