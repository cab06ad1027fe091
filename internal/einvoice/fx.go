package einvoice

import (
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/einvoice/dataico"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/einvoice/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/einvoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("einvoice.service",
	fx.Provide(dataico.New),
	fx.Provide(newRegistry),
	fx.Provide(service.NewService),
)

func newRegistry(client *dataico.Client) *domain.Registry {
	return domain.NewRegistry(client)
}
