package telegram

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/capitalmind/bot/core/telegram"
	"github.com/capitalmind/bot/core/telegram/middleware"
	"github.com/capitalmind/bot/core/telegram/router"
)

// Routes assembles the full route table: commands, callbacks, payment
// events, and text routing through the admin FSM and the dialog fallback.
func (h *Handlers) Routes(reg *tg.Registry) []tg.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: h.adminID,
	})

	routes = append(routes, router.TextRoutes(h.fsm, reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	routes = append(routes,
		tg.Route{
			Endpoint: tele.OnCheckout,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h.onCheckout)),
		},
		tg.Route{
			Endpoint: tele.OnPayment,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h.onPayment)),
		},
	)

	return routes
}
