package web

// indexHTML is the single-page teleop dashboard. WASD drives, space
// stops, and the page sends heartbeats while a key is held.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>JetBot</title>
<style>
  body { font-family: monospace; background: #111; color: #ddd; margin: 2em; }
  #video { max-width: 640px; border: 1px solid #444; display: block; }
  #state { margin-top: 1em; white-space: pre; }
  .dead { color: #f66; }
  .alive { color: #6f6; }
</style>
</head>
<body>
<h2>JetBot</h2>
<img id="video" src="/video" alt="camera offline">
<div id="state">connecting...</div>
<p>drive: W/A/S/D &middot; stop: space</p>
<script>
const speed = 0.5;
let ws = null;
let held = null;
let beat = null;

function send(type, data) {
  if (!ws || ws.readyState !== WebSocket.OPEN) return;
  ws.send(JSON.stringify({type: type, ts: Date.now(), data: data}));
}

function drive(left, right) { send("drive", {left: left, right: right}); }

function connect() {
  ws = new WebSocket("ws://" + location.host + "/ws/drive");
  ws.onopen = function() {
    beat = setInterval(function() { send("heartbeat", {client_id: "dashboard"}); }, 200);
  };
  ws.onclose = function() {
    clearInterval(beat);
    setTimeout(connect, 1000);
  };
}
connect();

const keys = {
  "w": [speed, speed],
  "s": [-speed, -speed],
  "a": [-speed, speed],
  "d": [speed, -speed]
};

document.addEventListener("keydown", function(e) {
  const k = e.key.toLowerCase();
  if (k === " ") { held = null; send("stop", null); return; }
  if (keys[k] && held !== k) { held = k; drive(keys[k][0], keys[k][1]); }
});
document.addEventListener("keyup", function(e) {
  if (held === e.key.toLowerCase()) { held = null; send("stop", null); }
});

const stateBox = document.getElementById("state");
const stateWS = new WebSocket("ws://" + location.host + "/ws/state");
stateWS.onmessage = function(ev) {
  const msg = JSON.parse(ev.data);
  if (msg.type !== "state") return;
  const d = msg.data;
  stateBox.innerHTML = "controller: " + d.controller +
    "\ncamera:     " + (d.camera_backend || "none") +
    "\nheartbeat:  <span class='" + d.heartbeat + "'>" + d.heartbeat + "</span>" +
    "\ncommand:    L=" + d.command_left.toFixed(2) + " R=" + d.command_right.toFixed(2) +
    "\nframe:      " + d.frame_seq +
    "\nuptime:     " + d.uptime_sec + "s";
};
</script>
</body>
</html>
`
