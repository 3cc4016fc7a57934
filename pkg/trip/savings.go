package trip

import (
	"errors"

	"github.com/Sahilcoder4/greenroute-repo/pkg/emissions"
)

// ErrDivisionUndefined is returned when savings are requested against a zero baseline
var ErrDivisionUndefined = errors.New("savings undefined for a zero baseline")

// Savings returns the percentage reduction from baseline to optimized WTW.
// Negative values mean the optimized trip emits more.
func Savings(baselineWTW, optimizedWTW float64) (float64, error) {
	if baselineWTW == 0 {
		return 0, ErrDivisionUndefined
	}
	return emissions.Round2((baselineWTW - optimizedWTW) / baselineWTW * 100), nil
}
