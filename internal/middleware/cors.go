package middleware

import "github.com/go-chi/cors"

// CORS lets browser clients on other origins reach the JSON API and the
// websocket upgrade endpoint.
var CORS = cors.Handler(cors.Options{
	AllowedOrigins: []string{"*"},
	AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	AllowedHeaders: []string{"Accept", "Content-Type"},
	MaxAge:         300,
})
