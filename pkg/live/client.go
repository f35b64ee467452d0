package live

// thinClient keeps the form markup in sync with the server over /ws.
const thinClient = `(function () {
  var root = document.getElementById("subscribe-root");
  if (!root || !window.WebSocket) return;
  var proto = location.protocol === "https:" ? "wss:" : "ws:";
  var ws = new WebSocket(proto + "//" + location.host + "/ws");
  function send(msg) {
    if (ws.readyState === 1) ws.send(JSON.stringify(msg));
  }
  root.addEventListener("input", function (e) {
    var field = e.target.getAttribute("data-field");
    if (field) send({ type: "input", field: field, value: e.target.value });
  });
  root.addEventListener("submit", function (e) {
    if (ws.readyState !== 1) return;
    e.preventDefault();
    send({ type: "submit" });
  });
  ws.onmessage = function (e) {
    var msg = JSON.parse(e.data);
    if (msg.type !== "render") return;
    var active = document.activeElement;
    var id = active && root.contains(active) ? active.id : "";
    var pos = id ? active.selectionStart : null;
    root.innerHTML = msg.html;
    if (!id) return;
    var el = document.getElementById(id);
    if (!el) return;
    el.focus();
    try { el.setSelectionRange(pos, pos); } catch (_) {}
  };
})();`

const pageStyles = `body{font-family:system-ui,sans-serif;margin:0;display:flex;flex-direction:column;min-height:100vh}
main{flex:1;padding:2rem}
.site-footer{background:#f4f4f5;padding:2rem}
.field{display:flex;flex-direction:column;margin-bottom:1rem;max-width:24rem}
.field-error{color:#b91c1c;margin:.25rem 0 0}
.status-success{color:#15803d}
.status-error{color:#b91c1c}`
