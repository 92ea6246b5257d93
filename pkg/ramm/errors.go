package ramm

import (
	cosmoserrors "cosmossdk.io/errors"

	"github.com/ramm-go/ramm/pkg/errs"
)

func errSizeMismatch() error {
	return cosmoserrors.Wrap(errs.ErrInvalidSize, "number of oracle readings must match pool size")
}
