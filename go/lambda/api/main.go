package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/joho/godotenv"

	"github.com/eventro/eventro/go/auth"
	"github.com/eventro/eventro/go/dynamo"
	"github.com/eventro/eventro/go/service"
)

// app carries the wired services. Everything is constructed once in main and
// passed down; handlers are methods so nothing reaches for globals.
type app struct {
	tokens   *auth.Issuer
	users    *service.UserService
	artists  *service.ArtistService
	events   *service.EventService
	venues   *service.VenueService
	shows    *service.ShowService
	bookings *service.BookingService
}

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	store, err := dynamo.New(context.Background())
	if err != nil {
		log.Fatalf("dynamo client: %v", err)
	}

	tokens := auth.NewIssuer(secret, 24*time.Hour)
	artists := service.NewArtistService(store)
	a := &app{
		tokens:   tokens,
		users:    service.NewUserService(store, tokens),
		artists:  artists,
		events:   service.NewEventService(store, artists),
		venues:   service.NewVenueService(store),
		shows:    service.NewShowService(store),
		bookings: service.NewBookingService(store),
	}

	mux := http.NewServeMux()

	// Users
	mux.HandleFunc("POST /api/users/signup", a.handleSignup)
	mux.HandleFunc("POST /api/users/login", a.handleLogin)
	mux.HandleFunc("GET /api/users/me", a.handleProfile)
	mux.HandleFunc("PUT /api/users/{id}/block", a.handleBlockUser)

	// Artists
	mux.HandleFunc("POST /api/artists", a.handleCreateArtist)
	mux.HandleFunc("GET /api/artists/{id}", a.handleGetArtist)

	// Events
	mux.HandleFunc("POST /api/events", a.handleCreateEvent)
	mux.HandleFunc("GET /api/events", a.handleBrowseEvents)
	mux.HandleFunc("GET /api/events/{id}", a.handleGetEvent)
	mux.HandleFunc("GET /api/events/{id}/shows", a.handleEventShows)
	mux.HandleFunc("PUT /api/events/{id}/block", a.handleBlockEvent)
	mux.HandleFunc("GET /api/host/events", a.handleHostEvents)

	// Venues
	mux.HandleFunc("POST /api/venues", a.handleCreateVenue)
	mux.HandleFunc("GET /api/venues/{id}", a.handleGetVenue)
	mux.HandleFunc("PUT /api/venues/{id}/block", a.handleBlockVenue)
	mux.HandleFunc("DELETE /api/venues/{id}", a.handleDeleteVenue)
	mux.HandleFunc("POST /api/venues/{id}/layout-url", a.handleLayoutUploadURL)
	mux.HandleFunc("GET /api/host/venues", a.handleHostVenues)

	// Shows
	mux.HandleFunc("POST /api/shows", a.handleCreateShow)
	mux.HandleFunc("GET /api/shows/{id}", a.handleGetShow)
	mux.HandleFunc("PUT /api/shows/{id}/block", a.handleBlockShow)

	// Bookings
	mux.HandleFunc("POST /api/bookings", a.handleBookSeats)
	mux.HandleFunc("GET /api/bookings", a.handleMyBookings)

	handler := cors(mux)

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		adapter := httpadapter.NewV2(handler)
		lambda.Start(adapter.ProxyWithContext)
	} else {
		log.Println("API server listening on :8080")
		log.Fatal(http.ListenAndServe(":8080", handler))
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
