package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMw)
	r.NotFoundHandler = s.loggingMw(s.notFoundHandler())

	api := r.PathPrefix("/api").Subrouter()

	productAPI := api.NewRoute().Subrouter()
	productAPI.Use(maxBytesMw(maxBodyBytes))
	productAPI.HandleFunc("/products", s.productList()).Methods(http.MethodGet)
	productAPI.HandleFunc("/products/{id}", s.productGet()).Methods(http.MethodGet)
	productAPI.HandleFunc("/products/{id}/explain", s.productExplain()).Methods(http.MethodGet)
	productAPI.HandleFunc("/search", s.productSearch()).Methods(http.MethodGet)

	identifyAPI := api.NewRoute().Subrouter()
	identifyAPI.Use(maxBytesMw(maxImageBytes))
	identifyAPI.HandleFunc("/identify", s.productIdentify()).Methods(http.MethodPost)

	userAPI := api.PathPrefix("/user").Subrouter()
	userAPI.Use(maxBytesMw(maxBodyBytes))
	userAPI.HandleFunc("", s.userGet()).Methods(http.MethodGet)
	userAPI.HandleFunc("/signup", s.userSignup()).Methods(http.MethodPost)
	userAPI.HandleFunc("/login", s.userLogin()).Methods(http.MethodPost)
	userAPI.HandleFunc("/guest", s.userGuest()).Methods(http.MethodPost)
	userAPI.HandleFunc("/logout", s.userLogout()).Methods(http.MethodPost)

	listAPI := api.PathPrefix("/list").Subrouter()
	listAPI.Use(maxBytesMw(maxBodyBytes))
	listAPI.HandleFunc("", s.listGet()).Methods(http.MethodGet)
	listAPI.HandleFunc("/groups", s.listGroups()).Methods(http.MethodGet)
	listAPI.HandleFunc("/contains", s.listContains()).Methods(http.MethodGet)
	listAPI.HandleFunc("/diagnostics", s.listDiagnostics()).Methods(http.MethodGet)
	listAPI.HandleFunc("/toggle", s.listToggle()).Methods(http.MethodPost)
	listAPI.HandleFunc("/remove", s.listRemove()).Methods(http.MethodPost)
	listAPI.HandleFunc("/check", s.listCheck()).Methods(http.MethodPost)
	listAPI.HandleFunc("/clear", s.listClear()).Methods(http.MethodPost)

	return r
}
