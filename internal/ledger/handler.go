// internal/ledger/handler.go
package ledger

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const defaultExportBatch = 100

// ExportHandler serves a cursor-based read over the whole ledger so
// downstream projections and audits can follow it incrementally.
func ExportHandler(l *Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fromSeq int64
		if raw := r.URL.Query().Get("from"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				http.Error(w, "invalid from cursor", http.StatusBadRequest)
				return
			}
			fromSeq = parsed
		}

		batch := defaultExportBatch
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			batch = parsed
		}

		entries, err := l.Stream(r.Context(), fromSeq, batch)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	}
}
