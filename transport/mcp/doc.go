// Package mcp provides a Model Context Protocol interface to the fuel
// station server.
//
// The mcp package implements a thin proxy: every tool call is translated
// into a request against the REST API, so the MCP surface and the HTTP
// surface always agree on behavior. The proxy can be served over stdio
// for local agent integrations or mounted on the HTTP server.
//
// Tools:
//
// Inspection:
//   - list_stations - Configured fuel stations
//   - list_vehicles - Vehicles with engine and fuel state
//   - vehicle_state - One vehicle's detail
//   - player_state - One player's detail
//   - refuel_session - A player's pending or running refuel session
//   - list_profiles - Available simulation profiles
//   - pump_instructions - Refueling rules and rejection reasons
//
// Transactions:
//   - request_refuel - Open a refuel offer at the nearest pump
//   - accept_offer - Accept with a unit amount (debits immediately)
//   - decline_offer - Decline a pending offer
//   - cancel_refuel - Cancel a pending session
//
// Admin:
//   - set_fuel - Set a vehicle's tank level directly
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
