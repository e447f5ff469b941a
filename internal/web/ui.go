package web

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

var uiTemplates = template.Must(template.New("home").Parse(`{{define "home"}}
<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>vidqueue</title>
  <style>
    body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Ubuntu,Cantarell,Noto Sans,sans-serif;max-width:880px;margin:32px auto;padding:0 16px;color:#0b0b0b;background:#fafafa}
    header{margin-bottom:24px}
    h1{font-size:22px;margin:0 0 8px}
    a{color:#0b63e5;text-decoration:none}
    a:hover{text-decoration:underline}
    .card{background:#fff;border:1px solid #e9e9e9;border-radius:10px;padding:16px;margin:12px 0}
    .row{display:flex;gap:12px;flex-wrap:wrap}
    .btn{display:inline-block;background:#0b63e5;color:#fff;border:none;padding:10px 14px;border-radius:8px;cursor:pointer}
    .btn.secondary{background:#444}
    input[type=text],textarea{padding:9px 10px;border:1px solid #dcdcdc;border-radius:8px;width:100%;box-sizing:border-box}
    textarea{min-height:90px;font-family:ui-monospace,SFMono-Regular,Menlo,Monaco,Consolas,monospace}
    .muted{color:#666}
    .mono{font-family:ui-monospace,SFMono-Regular,Menlo,Monaco,Consolas,monospace}
    .status{display:inline-block;padding:4px 8px;border-radius:6px;background:#efefef;font-size:12px}
    .status.running{background:#dcebff}
    .status.done{background:#d9f2dd}
    .status.error{background:#ffe1df}
    .error-banner{border-color:#f2b8b5;background:#fff6f6;color:#b3261e}
    .bar{height:8px;background:#efefef;border-radius:4px;overflow:hidden;margin-top:6px}
    .bar>div{height:100%;background:#0b63e5}
    img.thumb,video.preview{max-width:100%;border-radius:8px;margin-top:12px}
    ul.queue{margin:0;padding-left:0;list-style:none}
    ul.queue li{border-top:1px solid #eee;padding:10px 0}
    footer{margin-top:24px;color:#666;font-size:12px}
  </style>
</head>
<body>
  <header>
    <h1>vidqueue</h1>
    <div class="muted">Local video download queue</div>
  </header>

  <div id="error" class="card error-banner" style="display:none"></div>

  <div class="card">
    <h2>Single URL</h2>
    <input type="text" id="url" placeholder="https://…"/>
    <div class="row" style="margin-top:12px">
      <button class="btn" id="btn-thumbnail">Thumbnail</button>
      <button class="btn" id="btn-preview">Preview</button>
      <button class="btn" id="btn-download">Download</button>
      <button class="btn secondary" id="btn-cancel">Cancel</button>
    </div>
    <div id="media"></div>
  </div>

  <div class="card">
    <h2>Batch</h2>
    <textarea id="batch" placeholder="One URL per line"></textarea>
    <div style="margin-top:12px"><button class="btn" id="btn-queue-add">Add to queue</button></div>
  </div>

  <div class="card">
    <h2>Queue</h2>
    <ul class="queue" id="queue"><li class="muted">Empty</li></ul>
  </div>

  <footer><div>API base: <span class="mono">/api</span></div></footer>

<script>
const errorBox = document.getElementById('error');
const mediaBox = document.getElementById('media');
const urlInput = document.getElementById('url');
const batchInput = document.getElementById('batch');

function showError(msg) {
  errorBox.textContent = msg;
  errorBox.style.display = msg ? '' : 'none';
}

async function post(path, body, fallback) {
  showError('');
  let resp;
  try {
    resp = await fetch(path, {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify(body)
    });
  } catch (err) {
    throw new Error(err.message || fallback);
  }
  if (!resp.ok) {
    let detail = '';
    try { detail = (await resp.json()).detail; } catch (_) {}
    throw new Error(detail || ('Error ' + resp.status));
  }
  return resp.json();
}

document.getElementById('btn-thumbnail').onclick = async () => {
  mediaBox.innerHTML = '';
  try {
    const data = await post('/api/thumbnail', {url: urlInput.value}, 'Thumbnail request failed');
    if (!data.thumbnail) throw new Error('No thumbnail returned');
    mediaBox.innerHTML = '<img class="thumb" src="' + data.thumbnail + '"/>';
  } catch (err) { showError(err.message); }
};

document.getElementById('btn-preview').onclick = async () => {
  mediaBox.innerHTML = '';
  try {
    const data = await post('/api/preview', {url: urlInput.value}, 'Preview request failed');
    if (!data.stream_url) throw new Error('No stream URL returned');
    mediaBox.innerHTML = '<video class="preview" controls src="' + data.stream_url + '"></video>';
  } catch (err) { showError(err.message); }
};

document.getElementById('btn-download').onclick = async () => {
  try { await post('/api/download', {url: urlInput.value}, 'Download request failed'); }
  catch (err) { showError(err.message); }
};

document.getElementById('btn-cancel').onclick = () => {
  urlInput.value = '';
  mediaBox.innerHTML = '';
  showError('');
};

document.getElementById('btn-queue-add').onclick = async () => {
  const urls = batchInput.value.split('\n').map(l => l.trim()).filter(l => l !== '');
  if (urls.length === 0) return;
  try { await post('/api/queue/add', {urls: urls}, 'Queue request failed'); }
  catch (err) { showError(err.message); }
};

function renderItem(item) {
  let html = '<div><span class="mono">' + (item.title || item.url) + '</span> ' +
    '<span class="status ' + item.status + '">' + item.status + '</span></div>';
  if (item.status === 'running' && item.progress) {
    const pct = Math.round(item.progress.percent || 0);
    html += '<div class="bar"><div style="width:' + pct + '%"></div></div>' +
      '<div class="muted">' + pct + '%' +
      (item.progress.speed ? ' · ' + item.progress.speed : '') +
      (item.progress.eta_seconds ? ' · ' + item.progress.eta_seconds + 's left' : '') + '</div>';
  }
  if (item.status === 'done') {
    html += '<div><a href="/api/jobs/' + item.id + '/file">Save file</a></div>';
  }
  if (item.status === 'error' && item.error) {
    html += '<div class="muted">' + item.error + '</div>';
  }
  return '<li>' + html + '</li>';
}

async function pollQueue() {
  try {
    const resp = await fetch('/api/queue');
    if (!resp.ok) return;
    const data = await resp.json();
    if (!data || !Array.isArray(data.queue)) return;
    const list = document.getElementById('queue');
    list.innerHTML = data.queue.length
      ? data.queue.map(renderItem).join('')
      : '<li class="muted">Empty</li>';
  } catch (_) {
    // transient; keep the previous snapshot
  }
}

pollQueue();
setInterval(pollQueue, 2000);
</script>
</body>
</html>
{{end}}`))

// UI serves the single-page interface.
type UI struct{}

func NewUI() *UI { return &UI{} }

func (u *UI) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(uiTemplates)
	router.GET("/", u.Home)
}

func (u *UI) Home(c *gin.Context) { c.HTML(http.StatusOK, "home", gin.H{}) }
