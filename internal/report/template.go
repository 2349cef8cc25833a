package report

// pageTemplate is the standalone HTML page for one analysis.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.5rem; margin-bottom: 4px; color: var(--accent); }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  p { margin: 6px 0; }
  .muted { color: var(--muted); font-size: 0.85rem; }

  .header {
    display: flex;
    justify-content: space-between;
    align-items: flex-start;
    border-bottom: 3px solid var(--accent);
    padding-bottom: 12px;
    margin-bottom: 16px;
  }
  .header-right { text-align: right; }

  .decision {
    padding: 16px;
    border-radius: 8px;
    margin: 12px 0;
    background: var(--section-bg);
    border-left: 6px solid var(--sev);
  }
  .decision .verdict { font-size: 1.5rem; font-weight: 700; color: var(--sev); }

  .veto {
    background: #fef2f2;
    border: 1px solid var(--red);
    color: var(--red);
    padding: 10px 14px;
    border-radius: 6px;
    margin: 12px 0;
    font-weight: 600;
  }
  .flat {
    background: #fefce8;
    border: 1px solid #eab308;
    padding: 8px 12px;
    border-radius: 6px;
    margin: 8px 0;
  }

  .grid {
    display: grid;
    grid-template-columns: repeat(auto-fill, minmax(160px, 1fr));
    gap: 8px;
    background: var(--section-bg);
    padding: 12px;
    border-radius: 8px;
  }
  .grid .item { text-align: center; }
  .grid .label { font-size: 0.75rem; color: var(--muted); text-transform: uppercase; }
  .grid .value { font-size: 1rem; font-weight: 600; }
  .positive { color: var(--green); }
  .negative { color: var(--red); }

  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.9rem; }
  th { background: var(--section-bg); text-align: left; padding: 8px; font-weight: 600; }
  td { padding: 8px; border-bottom: 1px solid var(--border); }

  .chart { margin: 12px 0; text-align: center; }
  .sentiment { display: flex; align-items: center; gap: 24px; }

  .news-card {
    border-left: 4px solid var(--border);
    padding: 6px 12px;
    margin: 8px 0;
  }
  .news-card a { color: var(--text); text-decoration: none; font-weight: 600; }
  .badge {
    display: inline-block;
    padding: 1px 8px;
    border-radius: 3px;
    font-size: 0.75rem;
    font-weight: 600;
    color: white;
  }

  .commentary {
    background: var(--section-bg);
    padding: 12px 16px;
    border-radius: 8px;
    font-style: italic;
  }
  .footer { margin-top: 32px; border-top: 1px solid var(--border); padding-top: 8px; }
</style>
</head>
<body>

<div class="header">
  <div>
    <h1>{{.Title}}</h1>
    <div class="muted">Current price {{.Price}}</div>
  </div>
  <div class="header-right muted">
    <div>{{.GeneratedAt}}</div>
    <div>Generated in {{.Duration}}</div>
  </div>
</div>

{{if .Veto}}
<div class="veto">Risky headline: {{.Veto}}<br><span class="muted">{{.VetoNote}}</span></div>
{{end}}

<div class="decision" style="--sev: {{.SeverityColor}}">
  <div class="verdict">{{.Verdict}}</div>
  <p>{{.Rationale}}</p>
  <div class="muted">Rule: {{.Rule}}</div>
</div>

<h2>Technical Indicators</h2>
<div class="grid">
  <div class="item"><div class="label">Volume</div><div class="value">{{.Volume}}</div></div>
  <div class="item"><div class="label">RSI</div><div class="value">{{.RSI}}</div></div>
  <div class="item"><div class="label">MACD / Signal</div><div class="value">{{.MACD}}</div></div>
  <div class="item"><div class="label">SMA 20</div><div class="value">{{.SMA20}}</div></div>
  <div class="item"><div class="label">Forecast Trend</div><div class="value">{{.Trend}}</div></div>
</div>

<h2>Forecast</h2>
{{if .Flat}}<div class="flat">Not enough history for the model; the forecast is held flat at the current price.</div>{{end}}
<div class="chart">{{.ForecastChart}}</div>
<table>
  <tr><th>Day</th><th>Date</th><th>Price</th><th>Change</th></tr>
  {{range .Forecast}}
  <tr>
    <td>{{.Day}}</td>
    <td>{{.Date}}</td>
    <td>{{.Price}}</td>
    <td class="{{if .Up}}positive{{else}}negative{{end}}">{{.ChangePct}}</td>
  </tr>
  {{end}}
</table>

<h2>News Sentiment</h2>
<div class="sentiment">
  <div>{{.SentimentGauge}}</div>
  <div>
    <p>Average score <strong style="color: {{.SentimentColor}}">{{.Sentiment}}</strong> ({{.SentimentLabel}})</p>
    <p class="muted">{{.Scored}} scored, {{.Failed}} failed</p>
  </div>
</div>
{{range .News}}
<div class="news-card" style="border-left-color: {{.Color}}">
  {{if .Link}}<a href="{{.Link}}">{{.Title}}</a>{{else}}<strong>{{.Title}}</strong>{{end}}
  <div class="muted">{{.Source}} · {{.Published}} <span class="badge" style="background: {{.Color}}">{{.Label}} {{.Score}}</span></div>
</div>
{{else}}
<p class="muted">No recent headlines.</p>
{{end}}

{{if .Commentary}}
<h2>AI Commentary</h2>
<div class="commentary">{{.Commentary}}</div>
{{end}}

<div class="footer muted">
  This report is generated automatically and is not financial advice.
</div>

</body>
</html>
`
