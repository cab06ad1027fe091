package reports

import (
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/reports/repository"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/reports/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reports.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
