// Package api provides the HTTP REST surface of the fuel station server.
//
// The api package implements:
//   - RESTful endpoints for vehicle and player management
//   - Refueling transaction endpoints (request, accept, decline, cancel)
//   - Station and profile listing
//   - WebSocket upgrade handling for the real-time channel
//
// Endpoints:
//
// Vehicles:
//   - POST /api/vehicles - Spawn a vehicle
//   - GET /api/vehicles - List all vehicles with fuel state
//   - GET /api/vehicles/{id} - Get one vehicle
//   - DELETE /api/vehicles/{id} - Remove a vehicle
//   - POST /api/vehicles/{id}/move - Reposition a vehicle
//   - POST /api/vehicles/{id}/engine/start - Request an engine start
//   - POST /api/vehicles/{id}/engine/stop - Stop the engine
//   - POST /api/vehicles/{id}/fuel - Set the tank level directly (admin)
//
// Players:
//   - POST /api/players - Connect a player
//   - GET /api/players/{id} - Get one player
//   - DELETE /api/players/{id} - Disconnect a player
//   - POST /api/players/{id}/move - Reposition a player
//   - POST /api/players/{id}/enter - Enter a vehicle
//   - POST /api/players/{id}/exit - Exit the current vehicle
//   - POST /api/players/{id}/interact - Trigger the nearest station zone
//   - POST /api/players/{id}/deposit - Credit the player's wallet (admin)
//
// Refueling:
//   - POST /api/refuel/request - Open a refuel offer at the pump
//   - POST /api/refuel/accept - Accept the offer with an amount
//   - POST /api/refuel/decline - Decline the offer
//   - POST /api/refuel/cancel - Cancel a pending session
//   - GET /api/refuel/sessions/{player} - Inspect a player's session
//
// Stations and Configuration:
//   - GET /api/stations - List configured stations
//   - GET /api/profiles - List available simulation profiles
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "No vehicle nearby."
//	}
//
// Missing entities map to 404, malformed requests to 400, and pump
// rejections (engine running, tank full, cannot afford, already
// refueling) to 409 so clients can distinguish retryable states.
package api
