package transfergo

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/shopspring/decimal"

	"go-currency-sync/domain"
)

// loggingService decorates a transfergo.Service with logging
type loggingService struct {
	next   Service
	logger log.Logger
}

// NewLoggingService returns a new instance of a logging Service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) FxRate(ctx context.Context, from, to domain.Currency, amount *decimal.Decimal) (quote domain.Quote, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "fx_rate",
			"from", from,
			"to", to,
			"rate", quote.Rate,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FxRate(ctx, from, to, amount)
}
