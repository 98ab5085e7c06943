package server

import "fmt"

// indexPage renders the single-page viewer. The image element follows
// the MJPEG stream; key presses post control actions back.
func (s *Server) indexPage() string {
	toolbar := ""
	if !s.cfg.HideToolbar {
		toolbar = `<div class="bar">
space play/pause &middot; &larr;/&rarr; step &middot; [ ] speed &middot;
h hud &middot; f fill &middot; 1-5 size presets &middot; +/- resize
</div>`
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<title>Replay</title>
<style>
body { margin: 0; background: #1e1e1e; color: #ccc; font: 13px sans-serif; }
.bar { padding: 6px 10px; background: #2a2a2a; }
img { display: block; margin: 0 auto; }
</style>
</head>
<body>
%s
<img src="/stream" alt="replay">
<script>
const actions = {
  " ": {action: "play"},
  "ArrowRight": {action: "next"},
  "ArrowLeft": {action: "prev"},
  "[": {action: "slower"},
  "]": {action: "faster"},
  "h": {action: "hud"},
  "f": {action: "fill"},
  "+": {action: "grow"},
  "=": {action: "grow"},
  "-": {action: "shrink"},
};
for (let i = 1; i <= 5; i++) {
  actions[String(i)] = {action: "preset", value: i};
}
document.addEventListener("keydown", (e) => {
  const cmd = actions[e.key];
  if (!cmd) return;
  e.preventDefault();
  fetch("/control", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify(cmd),
  });
});
</script>
</body>
</html>
`, toolbar)
}
