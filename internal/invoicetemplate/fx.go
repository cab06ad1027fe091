package invoicetemplate

import (
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoicetemplate/repository"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoicetemplate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoicetemplate.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
