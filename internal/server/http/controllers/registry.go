package controllers

import (
	"net/http"

	"github.com/rzbill/msgquery/internal/query"
	"github.com/rzbill/msgquery/internal/runtime"
	logpkg "github.com/rzbill/msgquery/pkg/log"
)

// ControllerRegistry manages all HTTP controllers.
type ControllerRegistry struct {
	general  *GeneralController
	messages *MessagesController
	query    *QueryController
}

// NewControllerRegistry creates a new controller registry.
func NewControllerRegistry(rt *runtime.Runtime, disp *query.Dispatcher, logger logpkg.Logger) *ControllerRegistry {
	return &ControllerRegistry{
		general:  NewGeneralController(rt, disp),
		messages: NewMessagesController(rt),
		query:    NewQueryController(disp, rt.Config().Query.Param, logger),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.messages.RegisterRoutes(mux)
	r.query.RegisterRoutes(mux)
}
