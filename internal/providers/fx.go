package providers

import (
	"github.com/sunterra/sunplan/internal/providers/email"
	"github.com/sunterra/sunplan/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
