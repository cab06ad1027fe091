package cashsession

import (
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/cashsession/repository"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/cashsession/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cashsession.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
