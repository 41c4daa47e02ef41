package feed

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"evfeed/eb"
	"evfeed/rdx"
	"evfeed/utils"

	"github.com/julienschmidt/httprouter"
)

// Handler serves the public feed routes. Rendered output is cached in redis
// per organization; the cache is a front on top of the pipeline, which stays
// correct when invoked fresh on every call.
type Handler struct {
	Client   *eb.Client
	Opts     Options
	CacheTTL time.Duration
}

func NewHandler(client *eb.Client, opts Options, cacheTTL time.Duration) *Handler {
	return &Handler{Client: client, Opts: opts, CacheTTL: cacheTTL}
}

// fetcher picks the upstream client for a request: a caller-supplied bearer
// token overrides the configured one.
func (h *Handler) fetcher(r *http.Request) Fetcher {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && auth[:7] == "Bearer " {
		return h.Client.WithToken(auth[7:])
	}
	return h.Client
}

// GET /api/feed/:orgid
func (h *Handler) ServeFeedJSON(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	org := ps.ByName("orgid")

	cacheKey := "feed:" + org
	if cached, err := rdx.RdxGet(cacheKey); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cached))
		return
	}

	res, err := Build(r.Context(), h.fetcher(r), org, time.Now(), h.Opts)
	if err != nil {
		log.Println("feed build failed:", err)
		utils.RespondWithError(w, http.StatusBadGateway, "event listing unavailable")
		return
	}

	payload, err := json.Marshal(res)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "encoding failed")
		return
	}
	if err := rdx.RdxSet(cacheKey, string(payload), h.CacheTTL); err != nil {
		log.Println("feed cache write failed:", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// GET /feed/:orgid
//
// A fetch failure renders the no-events placeholder page, never a raw error.
func (h *Handler) ServeFeedPage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	org := ps.ByName("orgid")

	cacheKey := "feedpage:" + org
	if cached, err := rdx.RdxGet(cacheKey); err == nil && cached != "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(cached))
		return
	}

	res, err := Build(r.Context(), h.fetcher(r), org, time.Now(), h.Opts)
	if err != nil {
		log.Println("feed build failed:", err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(Unavailable().Page()))
		return
	}

	page := res.Page()
	if err := rdx.RdxSet(cacheKey, page, h.CacheTTL); err != nil {
		log.Println("feed cache write failed:", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

// GET /api/feed/:orgid/calendar.ics
func (h *Handler) ServeCalendar(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	org := ps.ByName("orgid")

	cacheKey := "feedcal:" + org
	if cached, err := rdx.RdxGet(cacheKey); err == nil && cached != "" {
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Write([]byte(cached))
		return
	}

	events, err := h.fetcher(r).FetchEvents(r.Context(), org)
	if err != nil {
		log.Println("calendar build failed:", err)
		utils.RespondWithError(w, http.StatusBadGateway, "event listing unavailable")
		return
	}

	now := time.Now()
	visible, _ := Visible(events, now)
	cal := Calendar(visible, now)

	if err := rdx.RdxSet(cacheKey, cal, h.CacheTTL); err != nil {
		log.Println("feed cache write failed:", err)
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Write([]byte(cal))
}

// POST /api/admin/cache/:orgid (JWT-guarded)
func (h *Handler) PurgeCache(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	org := ps.ByName("orgid")
	if err := rdx.RdxDel("feed:"+org, "feedpage:"+org, "feedcal:"+org); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "cache purge failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"purged": org})
}
