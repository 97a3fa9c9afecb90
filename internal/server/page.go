package server

// boardPage is the built-in fallback UI: a bare topic form that starts a run
// and tails its event stream over the WebSocket.
const boardPage = `<!DOCTYPE html>
<html><head><title>Conspiracy Board Agent</title></head>
<body style="font-family:sans-serif;max-width:600px;margin:40px auto;">
  <h1>Conspiracy Board Agent</h1>
  <form id="f">
    <input name="topic_a" placeholder="Topic A" required style="padding:8px;margin:4px;width:200px;">
    <input name="topic_b" placeholder="Topic B" required style="padding:8px;margin:4px;width:200px;">
    <button type="submit" style="padding:8px 16px;">Investigate</button>
  </form>
  <pre id="log" style="background:#111;color:#0f0;padding:16px;margin-top:16px;max-height:500px;overflow:auto;"></pre>
  <script>
    document.getElementById('f').onsubmit = async (e) => {
      e.preventDefault();
      const fd = new FormData(e.target);
      const res = await fetch('/run', {method:'POST', headers:{'Content-Type':'application/json'}, body: JSON.stringify({topic_a:fd.get('topic_a'),topic_b:fd.get('topic_b'),rounds:3})});
      const {run_id} = await res.json();
      const wsProto = location.protocol === 'https:' ? 'wss:' : 'ws:';
      const ws = new WebSocket(wsProto + '//' + location.host + '/ws/' + run_id);
      const log = document.getElementById('log');
      ws.onmessage = (e) => { log.textContent += e.data + '\n'; log.scrollTop = log.scrollHeight; };
    };
  </script>
</body></html>
`
