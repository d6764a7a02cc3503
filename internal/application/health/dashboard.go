package health

import (
	"fmt"
	"html"
	"strings"
)

// RenderDashboardHTML returns the status page served at GET /. The page polls
// /health/json and /health/errors itself; the initial values are rendered inline.
func RenderDashboardHTML(h CollectResult) string {
	headline := "All Systems Operational"
	if h.Status != "ok" {
		headline = "System Issues Detected"
	}

	lastReq := "-"
	if m, ok := h.Traffic.LastRequest.(map[string]interface{}); ok {
		lastReq = fmt.Sprintf("%v %v (%v)", m["method"], m["path"], m["ip"])
	}

	var deps strings.Builder
	for _, name := range []string{"database", "redis"} {
		d := h.Dependencies[name]
		class := "err"
		if d.Status == "connected" {
			class = "ok"
		}
		ping := "?"
		if d.PingMs != nil {
			ping = fmt.Sprint(*d.PingMs)
		}
		fmt.Fprintf(&deps, `<div class="row"><span>%s</span><span id="dep-%s" class="pill %s">%s · %s ms</span></div>`,
			name, name, class, html.EscapeString(d.Status), ping)
	}

	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>ETF Holdings API · Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    body { font-family: system-ui, sans-serif; background: #f6f7f9; color: #1f2933; margin: 0; display: flex; justify-content: center; }
    .wrap { max-width: 960px; width: 100%; padding: 40px 20px; }
    h1 { font-size: 40px; margin: 0 0 24px; }
    .grid { display: grid; grid-template-columns: repeat(3, 1fr); gap: 16px; }
    .card { background: #fff; border-radius: 16px; padding: 24px; box-shadow: 0 8px 30px rgba(0,0,0,0.05); }
    .label { text-transform: uppercase; font-size: 11px; letter-spacing: 2px; color: #7b8794; margin-bottom: 16px; }
    .big { font-size: 34px; font-weight: 800; margin-bottom: 8px; }
    .row { display: flex; justify-content: space-between; padding: 6px 0; font-size: 14px; }
    .pill { padding: 2px 10px; border-radius: 8px; font-size: 12px; font-weight: 700; }
    .ok { background: #e3f8f1; color: #147d64; }
    .err { background: #fde8e8; color: #c81e1e; }
    .foot { margin-top: 16px; font-family: monospace; font-size: 13px; color: #52606d; }
    @media (max-width: 800px) { .grid { grid-template-columns: 1fr; } }
  </style>
</head>
<body>
  <div class="wrap">
    <h1 id="headline">` + headline + `</h1>
    <div class="grid">
      <div class="card">
        <div class="label">Traffic</div>
        <div class="big" id="total-req">` + fmt.Sprint(h.Traffic.TotalRequests) + `</div>
        <div class="row"><span>Failed</span><span id="failed">` + fmt.Sprint(h.Traffic.FailedCount) + `</span></div>
        <div class="row"><span>Success Rate</span><span id="rate">` + h.Traffic.SuccessRate + `%</span></div>
        <div class="row"><span>Avg Latency</span><span id="avg">` + h.Traffic.AvgResponseTime + ` ms</span></div>
      </div>
      <div class="card">
        <div class="label">Runtime</div>
        <div class="big" id="uptime">` + fmt.Sprint(h.Runtime.UptimeSeconds) + `s</div>
        <div class="row"><span>Heap In Use</span><span id="heap">` + fmt.Sprint(h.Runtime.Memory.HeapInUseMB) + ` MB</span></div>
        <div class="row"><span>Goroutines</span><span id="goroutines">` + fmt.Sprint(h.Runtime.Goroutines) + `</span></div>
        <div class="row"><span>Go</span><span>` + h.Runtime.GoVersion + `</span></div>
      </div>
      <div class="card">
        <div class="label">Dependencies</div>
        ` + deps.String() + `
      </div>
    </div>
    <div class="foot">Last request: <span id="last-req">` + html.EscapeString(lastReq) + `</span></div>
    <div class="foot"><a href="/health/errors">Recent errors</a> · <a href="/metrics">Prometheus metrics</a></div>
  </div>
  <script>
    async function tick() {
      try {
        const d = await (await fetch('/health/json')).json();
        document.getElementById('headline').innerText = d.status === 'ok' ? 'All Systems Operational' : 'System Issues Detected';
        document.getElementById('total-req').innerText = d.traffic.totalRequests;
        document.getElementById('failed').innerText = d.traffic.failedCount;
        document.getElementById('rate').innerText = d.traffic.successRate + '%';
        document.getElementById('avg').innerText = d.traffic.avgResponseTime + ' ms';
        document.getElementById('uptime').innerText = d.runtime.uptimeSeconds + 's';
        document.getElementById('heap').innerText = d.runtime.memory.heapInUseMb + ' MB';
        document.getElementById('goroutines').innerText = d.runtime.goroutines;
        for (const name of ['database', 'redis']) {
          const dep = d.dependencies[name];
          const el = document.getElementById('dep-' + name);
          el.className = 'pill ' + (dep.status === 'connected' ? 'ok' : 'err');
          el.innerText = dep.status + ' · ' + (dep.pingMs ?? '?') + ' ms';
        }
      } catch (e) {}
    }
    setInterval(tick, 10000);
  </script>
</body>
</html>`
}
