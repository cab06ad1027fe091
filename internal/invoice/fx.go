package invoice

import (
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/render"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/repository"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(render.NewRenderer),
	fx.Provide(render.NewDocumentService),
)
