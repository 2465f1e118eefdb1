/* Copyright 2025 Circadian Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package controllers

import (
	"net/http"

	"github.com/circadianapp/circadian/pkg/server/app"
	mw "github.com/circadianapp/circadian/pkg/server/middleware"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// Route represents a single route
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	RateLimit bool
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Controllers *Controllers
	Routes      []Route
	// Limiter rate limits routes that ask for it. Nil disables limiting.
	Limiter *mw.RateLimiter
}

// NewRoutes returns the public routes
func NewRoutes(a *app.App, c *Controllers) []Route {
	return []Route{
		{"GET", "/", c.Health.Index, false},
		{"POST", "/add-user", c.Users.Create, true},
	}
}

func registerRoutes(router *mux.Router, app *app.App, limiter *mw.RateLimiter, routes []Route) {
	for _, route := range routes {
		h := mw.ApplyLimit(route.Handler, limiter, route.RateLimit)
		h = mw.Instrument(app.Metrics, route.Pattern, h)

		router.
			Handle(route.Pattern, h).
			Methods(route.Method)
	}
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, rc RouteConfig) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().StrictSlash(true)
	registerRoutes(router, app, rc.Limiter, rc.Routes)

	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	return mw.Global(router), nil
}
