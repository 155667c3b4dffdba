package server

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/vango-dev/mall/internal/errors"
	"github.com/vango-dev/mall/pkg/route"
)

// RouteInfo is one entry of GET /api/routes.
type RouteInfo struct {
	Path     string     `json:"path"`
	Name     string     `json:"name,omitempty"`
	Redirect string     `json:"redirect,omitempty"`
	Meta     route.Meta `json:"meta"`
	Lazy     bool       `json:"lazy"`
	Loaded   bool       `json:"loaded"`
}

// ResolutionInfo is the body of GET /api/resolve.
type ResolutionInfo struct {
	Name           string            `json:"name"`
	Path           string            `json:"path"`
	FullPath       string            `json:"fullPath"`
	Href           string            `json:"href"`
	Params         map[string]string `json:"params"`
	Query          url.Values        `json:"query,omitempty"`
	Meta           route.Meta        `json:"meta"`
	RedirectedFrom string            `json:"redirectedFrom,omitempty"`
}

func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := shellTemplate.Execute(w, shellData{
		Title:  s.config.Title,
		WSPath: "/ws",
	})
	if err != nil {
		s.logger.Error("shell render failed", "error", err)
	}
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	infos := make([]RouteInfo, 0, len(s.routes))
	for _, rt := range s.routes {
		infos = append(infos, RouteInfo{
			Path:     rt.Path,
			Name:     rt.Name,
			Redirect: rt.Redirect,
			Meta:     rt.Meta,
			Lazy:     rt.Component.IsLazy(),
			Loaded:   rt.Component.Loaded(),
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	res, err := s.resolver.Resolve(target(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ResolutionInfo{
		Name:           res.Name,
		Path:           res.Path,
		FullPath:       res.FullPath,
		Href:           s.resolver.History().Href(res.FullPath),
		Params:         res.Params,
		Query:          res.Query,
		Meta:           res.Meta,
		RedirectedFrom: res.RedirectedFrom,
	})
}

// handleView navigates a fresh router to the target and writes the
// rendered view.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	rt, err := s.newRouter(s.logger)
	if err != nil {
		s.writeError(w, err)
		return
	}

	nav, err := rt.Push(r.Context(), target(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := nav.View.Render(r.Context(), &buf, nav.To.ViewData(nav.Direction)); err != nil {
		s.writeError(w, apperrors.New("E302").Wrap(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Route-Name", nav.To.Name)
	w.Header().Set("X-Route-Index", strconv.Itoa(nav.To.Meta.Index))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// target reads the location from ?to=, defaulting to the root.
func target(r *http.Request) string {
	if to := r.URL.Query().Get("to"); to != "" {
		return to
	}
	return "/"
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, struct {
		Error *apperrors.MallError `json:"error"`
	}{apperrors.Classify(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type shellData struct {
	Title  string
	WSPath string
}

// shellTemplate is the hash-mode page shell. It keeps one WebSocket open
// and reports every fragment change; the server answers with the rendered
// view.
var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
#app { transition: transform .3s; }
#app[data-direction="forward"] { animation: slide-left .3s; }
#app[data-direction="back"] { animation: slide-right .3s; }
@keyframes slide-left { from { transform: translateX(100%); } }
@keyframes slide-right { from { transform: translateX(-100%); } }
</style>
</head>
<body>
<main id="app"></main>
<script>
(function () {
  var app = document.getElementById("app");
  var scheme = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(scheme + location.host + {{.WSPath}});
  function send(msg) { ws.send(JSON.stringify(msg)); }
  ws.onopen = function () {
    send({type: "replace", to: location.hash.slice(1) || "/"});
  };
  ws.onmessage = function (e) {
    var m = JSON.parse(e.data);
    if (m.type === "mounted") {
      app.dataset.direction = m.direction;
      app.innerHTML = m.html;
      if (location.hash !== "#" + m.location) {
        history.replaceState(null, "", m.href);
      }
    } else if (m.type === "unresolved") {
      app.dataset.direction = "none";
      app.innerHTML = "";
    } else if (m.type === "error") {
      console.error(m.error);
    }
  };
  window.addEventListener("hashchange", function () {
    send({type: "sync", to: location.href});
  });
})();
</script>
</body>
</html>
`))
