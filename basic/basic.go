// Package basic builds the services that only answer liveness probes: admin,
// kyc, notification and transaction.
package basic

import (
	"net/http"

	"github.com/sri-akshat/wealth-manager/api"
)

// New returns a service named name, whose root answers "<title> API".
func New(name, title string) *api.Service {
	return &api.Service{
		Name:        name + "-service",
		Title:       title,
		Description: title + " API for wealth manager platform.",
		Version:     "1.0.0",
		Tags:        []api.Tag{{Name: "system", Description: "Service status"}},
		Routes: []api.Route{
			{Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"system"},
				Response: api.HealthResponse{},
				Handler: func(w http.ResponseWriter, _ *http.Request) {
					api.WriteJSON(w, http.StatusOK, api.HealthResponse{Status: "healthy", Service: name})
				}},
			{Method: http.MethodGet, Path: "/", Summary: "Root", Tags: []string{"system"},
				Response: api.MessageResponse{},
				Handler: func(w http.ResponseWriter, _ *http.Request) {
					api.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: title + " API"})
				}},
		},
	}
}

func Admin() *api.Service        { return New("admin", "Admin Service") }
func KYC() *api.Service          { return New("kyc", "KYC Service") }
func Notification() *api.Service { return New("notification", "Notification Service") }
func Transaction() *api.Service  { return New("transaction", "Transaction Service") }
