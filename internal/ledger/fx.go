package ledger

import (
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(service.NewService),
)
