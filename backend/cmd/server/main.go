// Copyright (C) 2025 Mukon Labs <dev@mukon.chat>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"database/sql"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mukonchat/graph/backend/circuit"
	"github.com/mukonchat/graph/backend/graph"
	"github.com/mukonchat/graph/backend/handlers"
	"github.com/mukonchat/graph/backend/middleware"
	"github.com/mukonchat/graph/backend/storage/postgres"
	redisstore "github.com/mukonchat/graph/backend/storage/redis"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	// Database connection
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "postgres://localhost/mukon_graph?sslmode=disable"
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Redis connection
	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	// Initialize storage
	store := postgres.NewStore(db, log)

	// Run migrations
	if err := store.Migrate(); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	events := redisstore.NewEventBus(rdb)
	service := graph.NewService(store, graph.FullPolicy, log)

	// Computation cluster for oblivious queries
	parties := 3
	if v := os.Getenv("MPC_PARTIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.WithError(err).Fatal("Invalid MPC_PARTIES")
		}
		parties = n
	}
	cluster, err := circuit.NewCluster(parties)
	if err != nil {
		log.WithError(err).Fatal("Failed to start computation cluster")
	}

	// Initialize handlers
	contactHandler := handlers.NewContactHandler(service, events, log)
	profileHandler := handlers.NewProfileHandler(service)
	groupHandler := handlers.NewGroupHandler(service, events, log)
	keyHandler := handlers.NewKeyHandler(service)
	circuitHandler := handlers.NewCircuitHandler(cluster, log)

	// Get JWT configuration from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "mukon"
	}

	// Create auth middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtSecret, jwtIssuer)

	// Setup router
	r := mux.NewRouter()

	// Apply CORS and request logging
	r.Use(middleware.CORS)
	r.Use(middleware.RequestLogging(log))

	// API routes
	api := r.PathPrefix("/api/graph").Subrouter()
	api.Use(authMiddleware)

	// Profile endpoints
	api.HandleFunc("/profile", profileHandler.Register).Methods("POST")
	api.HandleFunc("/profile", profileHandler.Update).Methods("PATCH")
	api.HandleFunc("/profile", profileHandler.Close).Methods("DELETE")
	api.HandleFunc("/profile/{identity}", profileHandler.Get).Methods("GET")

	// Contact endpoints
	api.HandleFunc("/contacts", contactHandler.List).Methods("GET")
	api.HandleFunc("/contacts/invite", contactHandler.Invite).Methods("POST")
	api.HandleFunc("/contacts/accept", contactHandler.Accept).Methods("POST")
	api.HandleFunc("/contacts/reject", contactHandler.Reject).Methods("POST")
	api.HandleFunc("/contacts/block", contactHandler.Block).Methods("POST")
	api.HandleFunc("/contacts/unblock", contactHandler.Unblock).Methods("POST")
	api.HandleFunc("/conversation/{chatId}", contactHandler.GetConversation).Methods("GET")

	// Group endpoints
	api.HandleFunc("/group/create", groupHandler.Create).Methods("POST")
	api.HandleFunc("/group/{groupId}", groupHandler.Get).Methods("GET")
	api.HandleFunc("/group/{groupId}", groupHandler.Update).Methods("PATCH")
	api.HandleFunc("/group/{groupId}", groupHandler.Close).Methods("DELETE")
	api.HandleFunc("/group/{groupId}/invite", groupHandler.Invite).Methods("POST")
	api.HandleFunc("/group/{groupId}/accept", groupHandler.AcceptInvite).Methods("POST")
	api.HandleFunc("/group/{groupId}/reject", groupHandler.RejectInvite).Methods("POST")
	api.HandleFunc("/group/{groupId}/leave", groupHandler.Leave).Methods("POST")
	api.HandleFunc("/group/{groupId}/kick", groupHandler.Kick).Methods("POST")

	// Group key shares
	api.HandleFunc("/group/{groupId}/key", keyHandler.Store).Methods("PUT")
	api.HandleFunc("/group/{groupId}/key", keyHandler.Get).Methods("GET")
	api.HandleFunc("/group/{groupId}/key", keyHandler.Close).Methods("DELETE")

	// Oblivious queries over encrypted contact lists
	api.HandleFunc("/private/contains", circuitHandler.Contains).Methods("POST")
	api.HandleFunc("/private/count", circuitHandler.Count).Methods("POST")

	// Health check (no auth required)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		// Check database connection
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Database unavailable"))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	log.WithFields(logrus.Fields{"port": port, "issuer": jwtIssuer}).Info("Graph server starting")

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.WithError(err).Fatal("Server failed to start")
	}
}
