package server

import (
	"PriceTracker/internal/database"
	"PriceTracker/internal/models"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"strconv"
)

// productResponse is the JSON shape of one tracked product.
type productResponse struct {
	URL          string              `json:"url"`
	Title        string              `json:"title"`
	Price        *float64            `json:"price"`
	Availability models.Availability `json:"availability"`
	ImageURL     string              `json:"image_url,omitempty"`
	IsInvalid    bool                `json:"is_invalid"`
	LastUpdated  string              `json:"last_updated"`
}

type listResponse struct {
	Data       []productResponse `json:"data"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	Total      int               `json:"total"`
}

// Start serves a read-only view of the snapshot store.
func Start(store *database.SnapshotStore, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", productsHandler(store))

	log.Printf("Starting API server on port %s", port)
	return http.ListenAndServe(":"+port, mux)
}

func productsHandler(store *database.SnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queryParams := r.URL.Query()
		page, _ := strconv.Atoi(queryParams.Get("page"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(queryParams.Get("limit"))
		if limit < 1 {
			limit = 20
		}
		offset := (page - 1) * limit

		total, err := store.Count()
		if err != nil {
			http.Error(w, "Failed to count products", http.StatusInternalServerError)
			return
		}

		records, err := store.All(limit, offset)
		if err != nil {
			http.Error(w, "Failed to get products", http.StatusInternalServerError)
			return
		}

		response := listResponse{
			Data:       make([]productResponse, 0, len(records)),
			Page:       page,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
			Total:      total,
		}
		for _, rec := range records {
			response.Data = append(response.Data, productResponse{
				URL:          rec.URL,
				Title:        rec.Title,
				Price:        rec.Price,
				Availability: rec.Availability,
				ImageURL:     rec.ImageURL,
				IsInvalid:    rec.IsInvalid,
				LastUpdated:  rec.LastUpdated.UTC().Format("2006-01-02T15:04:05Z"),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Printf("Failed to encode products response: %v", err)
		}
	}
}
