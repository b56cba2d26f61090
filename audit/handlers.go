package audit

import (
	"log"
	"net/http"
	"strconv"

	"agroadmin/utils"

	"github.com/julienschmidt/httprouter"
)

// RecentHandler lists the newest entries, 50 by default or ?limit=n up to 500.
func RecentHandler(l Lister) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		limit := int64(50)
		if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil && v > 0 {
			limit = min(v, 500)
		}
		entries, err := l.Recent(r.Context(), limit)
		if err != nil {
			log.Printf("[audit] recent: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "server", "Failed to load activity", "retry")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"entries": entries, "count": len(entries)})
	}
}
