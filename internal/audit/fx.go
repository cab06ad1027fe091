package audit

import (
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit/repository"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
