package api

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"steamcat/internal/catalog"
	"steamcat/internal/importer"
)

// Server exposes the import pipeline and the catalog over HTTP.
type Server struct {
	svc    *catalog.Service
	runner *importer.Runner
}

func NewServer(svc *catalog.Service, runner *importer.Runner) *Server {
	return &Server{svc: svc, runner: runner}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("GET /api/games", s.handleListGames)
	mux.HandleFunc("GET /api/games/{appid}", s.handleGameDetail)
	mux.HandleFunc("GET /games", s.handleGamesPage)
	return mux
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	report, err := s.runner.ImportAll(r.Context())
	switch {
	case errors.Is(err, importer.ErrCatalogNotEmpty):
		writeJSON(w, http.StatusConflict, report)
	case err != nil:
		slog.Error("import run failed", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, report)
	}
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := s.svc.ListGames(r.Context(), filter)
	if err != nil {
		slog.Error("list games failed", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGameDetail(w http.ResponseWriter, r *http.Request) {
	appID, err := strconv.ParseUint(r.PathValue("appid"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid app id", http.StatusBadRequest)
		return
	}

	detail, err := s.svc.GameDetail(r.Context(), appID)
	if errors.Is(err, catalog.ErrGameNotFound) {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("game detail failed", "app_id", appID, "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleGamesPage(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := s.svc.ListGames(r.Context(), filter)
	if err != nil {
		slog.Error("games page failed", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := gamesPage.Execute(w, page); err != nil {
		slog.Error("render games page", "err", err)
	}
}

func parseFilter(r *http.Request) (catalog.GameFilter, error) {
	q := r.URL.Query()
	filter := catalog.GameFilter{
		Title:     q.Get("title"),
		Genre:     q.Get("genre"),
		Developer: q.Get("developer"),
	}

	if v := q.Get("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, errors.New("invalid min_price")
		}
		filter.MinPrice = &d
	}
	if v := q.Get("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, errors.New("invalid max_price")
		}
		filter.MaxPrice = &d
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filter, errors.New("invalid page")
		}
		filter.Page = n
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filter, errors.New("invalid size")
		}
		filter.Size = n
	}
	return filter, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "err", err)
	}
}

var gamesPage = template.Must(template.New("games").Parse(`<!DOCTYPE html>
<html>
<head><title>Game Catalog</title></head>
<body>
<h1>Game Catalog</h1>
<p>{{.TotalItems}} games, page {{.Page}} of {{.TotalPages}}</p>
<table border="1" cellpadding="4">
<tr><th>App ID</th><th>Title</th><th>Release Date</th><th>Price</th><th>Genres</th></tr>
{{range .Items}}
<tr>
<td>{{.AppID}}</td>
<td><a href="/api/games/{{.AppID}}">{{.Title}}</a></td>
<td>{{.ReleaseDate.Format "2006-01-02"}}</td>
<td>{{.Price}}</td>
<td>{{range $i, $g := .Genres}}{{if $i}}, {{end}}{{$g.Name}}{{end}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))

// Start runs the HTTP server until ctx is canceled.
func Start(ctx context.Context, addr string, server *Server) error {
	srv := &http.Server{Addr: addr, Handler: server.Handler()}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	slog.Info("http server listening", "addr", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
