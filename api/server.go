package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/openrp/fuel-stations/game/refuel"
	"github.com/openrp/fuel-stations/game/service"
	"github.com/openrp/fuel-stations/game/world"
	"github.com/openrp/fuel-stations/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.FuelService
	hub     *websocket.Hub
	router  *mux.Router
	log     zerolog.Logger
}

// NewServer creates a new API server
func NewServer(fuelService service.FuelService, hub *websocket.Hub, log zerolog.Logger) *Server {
	s := &Server{
		service: fuelService,
		hub:     hub,
		router:  mux.NewRouter(),
		log:     log.With().Str("component", "api").Logger(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Vehicle management
	api.HandleFunc("/vehicles", s.handleSpawnVehicle).Methods("POST")
	api.HandleFunc("/vehicles", s.handleListVehicles).Methods("GET")
	api.HandleFunc("/vehicles/{id}", s.handleGetVehicle).Methods("GET")
	api.HandleFunc("/vehicles/{id}", s.handleRemoveVehicle).Methods("DELETE")
	api.HandleFunc("/vehicles/{id}/move", s.handleMoveVehicle).Methods("POST")
	api.HandleFunc("/vehicles/{id}/engine/start", s.handleStartEngine).Methods("POST")
	api.HandleFunc("/vehicles/{id}/engine/stop", s.handleStopEngine).Methods("POST")
	api.HandleFunc("/vehicles/{id}/fuel", s.handleSetFuel).Methods("POST")

	// Player management
	api.HandleFunc("/players", s.handleSpawnPlayer).Methods("POST")
	api.HandleFunc("/players/{id}", s.handleGetPlayer).Methods("GET")
	api.HandleFunc("/players/{id}", s.handleRemovePlayer).Methods("DELETE")
	api.HandleFunc("/players/{id}/move", s.handleMovePlayer).Methods("POST")
	api.HandleFunc("/players/{id}/enter", s.handleEnterVehicle).Methods("POST")
	api.HandleFunc("/players/{id}/exit", s.handleExitVehicle).Methods("POST")
	api.HandleFunc("/players/{id}/interact", s.handleInteract).Methods("POST")
	api.HandleFunc("/players/{id}/deposit", s.handleDeposit).Methods("POST")

	// Refueling
	api.HandleFunc("/refuel/request", s.handleRequestRefuel).Methods("POST")
	api.HandleFunc("/refuel/accept", s.handleAcceptOffer).Methods("POST")
	api.HandleFunc("/refuel/decline", s.handleDeclineOffer).Methods("POST")
	api.HandleFunc("/refuel/cancel", s.handleCancelRefuel).Methods("POST")
	api.HandleFunc("/refuel/sessions/{player}", s.handleGetRefuelSession).Methods("GET")

	// Stations and profiles
	api.HandleFunc("/stations", s.handleListStations).Methods("GET")
	api.HandleFunc("/profiles", s.handleListProfiles).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps domain errors onto HTTP statuses: missing
// entities become 404s, player-ineligible states become 409s, caller
// mistakes become 400s.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, world.ErrVehicleNotFound),
		errors.Is(err, world.ErrPlayerNotFound),
		errors.Is(err, refuel.ErrNoSession):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, refuel.ErrInVehicle),
		errors.Is(err, refuel.ErrAlreadyRefueling),
		errors.Is(err, refuel.ErrNoVehicleNearby),
		errors.Is(err, refuel.ErrEngineOn),
		errors.Is(err, refuel.ErrTooFar),
		errors.Is(err, refuel.ErrTankFull),
		errors.Is(err, refuel.ErrCannotAfford):
		respondError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// Vehicle Handlers

func (s *Server) handleSpawnVehicle(w http.ResponseWriter, r *http.Request) {
	var req service.SpawnVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status, err := s.service.SpawnVehicle(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, status)
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.service.ListVehicles(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(vehicles),
		"vehicles": vehicles,
	})
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	status, err := s.service.GetVehicle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleRemoveVehicle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.service.RemoveVehicle(r.Context(), id); err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Vehicle " + id + " removed"})
}

func (s *Server) handleMoveVehicle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position world.Vec3 `json:"position"`
		Rotation world.Vec3 `json:"rotation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.MoveVehicle(r.Context(), mux.Vars(r)["id"], req.Position, req.Rotation); err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Vehicle moved"})
}

func (s *Server) handleStartEngine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"player_id"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := s.service.StartEngine(r.Context(), mux.Vars(r)["id"], req.PlayerID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleStopEngine(w http.ResponseWriter, r *http.Request) {
	if err := s.service.StopEngine(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Engine stopped"})
}

func (s *Server) handleSetFuel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fuel float64 `json:"fuel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status, err := s.service.SetFuel(r.Context(), mux.Vars(r)["id"], req.Fuel)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// Player Handlers

func (s *Server) handleSpawnPlayer(w http.ResponseWriter, r *http.Request) {
	var req service.SpawnPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status, err := s.service.SpawnPlayer(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, status)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	status, err := s.service.GetPlayer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.service.RemovePlayer(r.Context(), id); err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Player " + id + " removed"})
}

func (s *Server) handleMovePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position world.Vec3 `json:"position"`
		Rotation world.Vec3 `json:"rotation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.MovePlayer(r.Context(), mux.Vars(r)["id"], req.Position, req.Rotation); err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Player moved"})
}

func (s *Server) handleEnterVehicle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VehicleID string `json:"vehicle_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.EnterVehicle(r.Context(), mux.Vars(r)["id"], req.VehicleID); err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Entered vehicle"})
}

func (s *Server) handleExitVehicle(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ExitVehicle(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Exited vehicle"})
}

func (s *Server) handleInteract(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Interact(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	balance, err := s.service.Deposit(r.Context(), mux.Vars(r)["id"], req.Amount)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]float64{"balance": balance})
}

// Refueling Handlers

func (s *Server) handleRequestRefuel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	offer, err := s.service.RequestRefuel(r.Context(), req.PlayerID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, offer)
}

func (s *Server) handleAcceptOffer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"player_id"`
		Amount   int    `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.AcceptOffer(r.Context(), req.PlayerID, req.Amount); err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Refueling started"})
}

func (s *Server) handleDeclineOffer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.DeclineOffer(r.Context(), req.PlayerID); err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Offer declined"})
}

func (s *Server) handleCancelRefuel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.CancelRefuel(r.Context(), req.PlayerID); err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Refuel cancelled"})
}

func (s *Server) handleGetRefuelSession(w http.ResponseWriter, r *http.Request) {
	offer, err := s.service.GetRefuelSession(r.Context(), mux.Vars(r)["player"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, offer)
}

// Station and Profile Handlers

func (s *Server) handleListStations(w http.ResponseWriter, r *http.Request) {
	stations, err := s.service.ListStations(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stations)
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.service.ListProfiles(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profiles)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		http.Error(w, "player parameter required", http.StatusBadRequest)
		return
	}

	// Verify the player is connected to the simulation
	if _, err := s.service.GetPlayer(r.Context(), playerID); err != nil {
		http.Error(w, "Unknown player", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, world.PlayerID(playerID))
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
