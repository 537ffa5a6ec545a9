package api

// indexPage is the self-contained UI served at the root: a single form
// posting to the three API endpoints, saving download responses client-side.
const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Rhea</title>
<style>
  body { font-family: system-ui, sans-serif; background: #10141a; color: #e8e8e8;
         display: flex; justify-content: center; padding-top: 8vh; }
  main { width: min(560px, 92vw); }
  h1 { font-weight: 600; }
  input[type=text] { width: 100%; padding: 12px; border-radius: 6px; border: 1px solid #333;
         background: #1b212b; color: inherit; font-size: 1rem; box-sizing: border-box; }
  button { margin: 12px 8px 0 0; padding: 10px 18px; border: none; border-radius: 6px;
         background: #3b82f6; color: white; font-size: 0.95rem; cursor: pointer; }
  button:disabled { background: #333; cursor: wait; }
  #info { margin-top: 16px; padding: 12px; border-radius: 6px; background: #1b212b; display: none; }
  #error { margin-top: 16px; color: #f87171; }
</style>
</head>
<body>
<main>
  <h1>Rhea</h1>
  <p>Paste a video URL to inspect it, or download it as MP4 video / MP3 audio.</p>
  <input type="text" id="url" placeholder="https://www.youtube.com/watch?v=...">
  <div>
    <button onclick="fetchInfo()">Get info</button>
    <button onclick="fetchMedia('video', 'mp4')">Download MP4</button>
    <button onclick="fetchMedia('audio', 'mp3')">Download MP3</button>
  </div>
  <div id="info"></div>
  <div id="error"></div>
</main>
<script>
const buttons = () => document.querySelectorAll('button');
const setBusy = (busy) => buttons().forEach(b => b.disabled = busy);
const showError = (message) => { document.getElementById('error').textContent = message || ''; };

async function postJSON(path) {
  const url = document.getElementById('url').value.trim();
  const response = await fetch(path, {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({ url })
  });
  if (!response.ok) {
    const body = await response.json().catch(() => ({}));
    throw new Error(body.error || ('request failed with status ' + response.status));
  }
  return response;
}

async function fetchInfo() {
  showError('');
  setBusy(true);
  try {
    const response = await postJSON('/api/video-info');
    const info = await response.json();
    const panel = document.getElementById('info');
    const minutes = Math.floor(info.duration / 60);
    const seconds = String(info.duration % 60).padStart(2, '0');
    panel.textContent = info.title + ' — ' + info.uploader + ' (' + minutes + ':' + seconds + ')';
    panel.style.display = 'block';
  } catch (err) {
    showError(err.message);
  } finally {
    setBusy(false);
  }
}

async function fetchMedia(kind, ext) {
  showError('');
  setBusy(true);
  try {
    const response = await postJSON('/api/download/' + kind);
    const blob = await response.blob();
    const disposition = response.headers.get('Content-Disposition') || '';
    const match = disposition.match(/filename="(.+)"/);
    const filename = match ? match[1] : 'download.' + ext;

    const anchor = document.createElement('a');
    anchor.href = URL.createObjectURL(blob);
    anchor.download = filename;
    document.body.appendChild(anchor);
    anchor.click();
    anchor.remove();
    URL.revokeObjectURL(anchor.href);
  } catch (err) {
    showError(err.message);
  } finally {
    setBusy(false);
  }
}
</script>
</body>
</html>
`
