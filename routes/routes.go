package routes

import (
	"evfeed/feed"
	"evfeed/feedws"
	"evfeed/middleware"
	"evfeed/ratelim"

	"github.com/julienschmidt/httprouter"
)

func AddFeedRoutes(router *httprouter.Router, h *feed.Handler, rl *ratelim.RateLimiter) {
	router.GET("/feed/:orgid", rl.Limit(h.ServeFeedPage))
	router.GET("/api/feed/:orgid", rl.Limit(h.ServeFeedJSON))
	router.GET("/api/feed/:orgid/calendar.ics", rl.Limit(h.ServeCalendar))
}

func AddFeedSocketRoutes(router *httprouter.Router, hub *feedws.Hub) {
	router.GET("/ws/feed/:orgid", hub.HandleConnection)
}

func AddAdminRoutes(router *httprouter.Router, h *feed.Handler) {
	router.POST("/api/admin/cache/:orgid", middleware.Authenticate(h.PurgeCache))
}
